package progress

type SetProgressParams struct {
	Username    string
	Movie       string
	CurrentTime float64
}

type GetProgressParams struct {
	Username string
	Movie    string
}
