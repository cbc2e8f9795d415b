package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncinema/server/internal/repository/progress"
)

type repo struct {
	rc  *redis.Client
	exp time.Duration
}

func NewRepo(rc *redis.Client, exp time.Duration) *repo {
	return &repo{
		rc:  rc,
		exp: exp,
	}
}

func (r repo) getProgressKey(username string) string {
	return "progress:" + username
}

func (r repo) SetProgress(ctx context.Context, params *progress.SetProgressParams) error {
	key := r.getProgressKey(params.Username)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, key, params.Movie, params.CurrentTime)
	pipe.Expire(ctx, key, r.exp)

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return nil
}

func (r repo) GetProgress(ctx context.Context, params *progress.GetProgressParams) (float64, error) {
	field, err := r.rc.HGet(ctx, r.getProgressKey(params.Username), params.Movie).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, progress.ErrProgressNotFound
		}

		return 0, err
	}

	currentTime, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}

	return currentTime, nil
}
