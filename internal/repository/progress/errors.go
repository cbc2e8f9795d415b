package progress

import "errors"

var ErrProgressNotFound = errors.New("progress not found")
