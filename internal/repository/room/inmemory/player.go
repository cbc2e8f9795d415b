package inmemory

import (
	"context"

	"github.com/syncinema/server/internal/repository/room"
)

func (r *repo) GetPlayer(ctx context.Context) room.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.player
}

func (r *repo) UpdatePlayerState(ctx context.Context, params *room.UpdatePlayerStateParams) room.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.IsPlaying = params.IsPlaying
	r.player.CurrentTime = clampTime(params.CurrentTime)

	return r.player
}

func (r *repo) UpdatePlayerTime(ctx context.Context, currentTime float64) room.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.CurrentTime = clampTime(currentTime)

	return r.player
}

// UpdatePlayerMovie switches the movie and resets playback.
func (r *repo) UpdatePlayerMovie(ctx context.Context, movie *string) room.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.CurrentMovie = movie
	r.player.CurrentTime = 0
	r.player.IsPlaying = false

	return r.player
}

func clampTime(t float64) float64 {
	if t < 0 {
		return 0
	}

	return t
}
