package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncinema/server/internal/repository/progress"
)

func newTestRepo(t *testing.T) *repo {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	return NewRepo(rc, time.Hour)
}

func TestProgress(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetProgress(ctx, &progress.GetProgressParams{Username: "alice", Movie: "a.mp4"})
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)

	require.NoError(t, r.SetProgress(ctx, &progress.SetProgressParams{
		Username:    "alice",
		Movie:       "a.mp4",
		CurrentTime: 123.5,
	}))

	currentTime, err := r.GetProgress(ctx, &progress.GetProgressParams{Username: "alice", Movie: "a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, 123.5, currentTime)

	// later heartbeats overwrite
	require.NoError(t, r.SetProgress(ctx, &progress.SetProgressParams{
		Username:    "alice",
		Movie:       "a.mp4",
		CurrentTime: 200,
	}))
	currentTime, err = r.GetProgress(ctx, &progress.GetProgressParams{Username: "alice", Movie: "a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, 200.0, currentTime)

	// progress is per movie
	_, err = r.GetProgress(ctx, &progress.GetProgressParams{Username: "alice", Movie: "b.mp4"})
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
}
