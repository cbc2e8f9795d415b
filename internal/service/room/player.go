package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"

	"github.com/syncinema/server/internal/repository/room"
)

type PlayParams struct {
	Username    string
	CurrentTime float64
}

type PlayResponse struct {
	CurrentTime float64
	Users       UsersUpdate
	Conns       []*websocket.Conn
}

func (s service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	player := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		IsPlaying:   true,
		CurrentTime: params.CurrentTime,
	})

	if err := s.setWatching(ctx, params.Username, true, player.CurrentTime); err != nil {
		return PlayResponse{}, err
	}

	return PlayResponse{
		CurrentTime: player.CurrentTime,
		Users:       s.getUsersUpdate(ctx),
		Conns:       s.connRepo.GetConns(),
	}, nil
}

type PauseParams struct {
	Username    string
	CurrentTime float64
}

type PauseResponse struct {
	CurrentTime float64
	Users       UsersUpdate
	Conns       []*websocket.Conn
}

func (s service) Pause(ctx context.Context, params *PauseParams) (PauseResponse, error) {
	player := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		IsPlaying:   false,
		CurrentTime: params.CurrentTime,
	})

	if err := s.setWatching(ctx, params.Username, false, player.CurrentTime); err != nil {
		return PauseResponse{}, err
	}

	return PauseResponse{
		CurrentTime: player.CurrentTime,
		Users:       s.getUsersUpdate(ctx),
		Conns:       s.connRepo.GetConns(),
	}, nil
}

type SeekParams struct {
	Username    string
	CurrentTime float64
}

type SeekResponse struct {
	CurrentTime float64
	Conns       []*websocket.Conn
}

// Seek moves the shared position only. It never touches is_playing or
// anyone's watch status.
func (s service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	player := s.roomRepo.UpdatePlayerTime(ctx, params.CurrentTime)

	return SeekResponse{
		CurrentTime: player.CurrentTime,
		Conns:       s.connRepo.GetConns(),
	}, nil
}

type ChangeMovieParams struct {
	Username string
	Movie    *string
}

type ChangeMovieResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

func (s service) ChangeMovie(ctx context.Context, params *ChangeMovieParams) (ChangeMovieResponse, error) {
	if params.Movie != nil {
		movies, err := s.library.List()
		if err != nil {
			s.logger.WarnContext(ctx, "failed to list library", "error", err)
		} else if !slices.Contains(movies, *params.Movie) {
			// the change is still applied, the client decides what to load
			s.logger.WarnContext(ctx, "movie not in library", "movie", *params.Movie)
		}
	}

	player := s.roomRepo.UpdatePlayerMovie(ctx, params.Movie)

	return ChangeMovieResponse{
		Player: Player{
			IsPlaying:    player.IsPlaying,
			CurrentTime:  player.CurrentTime,
			CurrentMovie: player.CurrentMovie,
		},
		Conns: s.connRepo.GetConns(),
	}, nil
}

func (s service) setWatching(ctx context.Context, username string, isWatching bool, currentTime float64) error {
	if err := s.roomRepo.UpdateMemberStatus(ctx, &room.UpdateMemberStatusParams{
		Username:    username,
		IsWatching:  isWatching,
		CurrentTime: currentTime,
	}); err != nil && !errors.Is(err, room.ErrMemberNotFound) {
		return fmt.Errorf("failed to update member status: %w", err)
	}

	return nil
}
