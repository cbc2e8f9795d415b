package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncinema/server/internal/repository/progress"
	"github.com/syncinema/server/internal/repository/room"
)

type ConnectMemberParams struct {
	Conn     *websocket.Conn
	Username string
}

type ConnectMemberResponse struct {
	Username    string
	Avatar      string
	Timestamp   string
	Users       UsersUpdate
	Player      Player
	ChatHistory []Message
	Conns       []*websocket.Conn
}

func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) (ConnectMemberResponse, error) {
	avatar, avatarURL := s.avatar.Resolve(params.Username)

	if err := s.connRepo.Add(params.Conn, params.Username); err != nil {
		return ConnectMemberResponse{}, fmt.Errorf("failed to register connection: %w", err)
	}

	now := time.Now()
	if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
		Username:  params.Username,
		Avatar:    avatar,
		AvatarURL: avatarURL,
		JoinedAt:  timestamp(now),
	}); err != nil {
		return ConnectMemberResponse{}, fmt.Errorf("failed to set member: %w", err)
	}

	messages := s.roomRepo.GetMessages(ctx)
	chatHistory := make([]Message, 0, len(messages))
	for _, message := range messages {
		chatHistory = append(chatHistory, toMessage(message))
	}

	return ConnectMemberResponse{
		Username:    params.Username,
		Avatar:      avatar,
		Timestamp:   timestamp(now),
		Users:       s.getUsersUpdate(ctx),
		Player:      s.getPlayer(ctx),
		ChatHistory: chatHistory,
		Conns:       s.connRepo.GetConns(),
	}, nil
}

type DisconnectMemberParams struct {
	Conn *websocket.Conn
}

type DisconnectMemberResponse struct {
	Username  string
	WasTyping bool
	Timestamp string
	Users     UsersUpdate
	Conns     []*websocket.Conn
}

// DisconnectMember is idempotent: a connection or member that is already
// gone yields room.ErrMemberNotFound, which callers treat as a no-op.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	username, err := s.connRepo.RemoveByConn(params.Conn)
	if err != nil {
		return DisconnectMemberResponse{}, room.ErrMemberNotFound
	}

	wasTyping := s.roomRepo.RemoveTyping(ctx, username)

	if err := s.roomRepo.RemoveMember(ctx, username); err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return DisconnectMemberResponse{}, room.ErrMemberNotFound
		}
		return DisconnectMemberResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	return DisconnectMemberResponse{
		Username:  username,
		WasTyping: wasTyping,
		Timestamp: timestamp(time.Now()),
		Users:     s.getUsersUpdate(ctx),
		Conns:     s.connRepo.GetConns(),
	}, nil
}

type HeartbeatParams struct {
	Username    string
	IsWatching  bool
	CurrentTime float64
}

type HeartbeatResponse struct {
	Users UsersUpdate
	Conns []*websocket.Conn
}

func (s service) Heartbeat(ctx context.Context, params *HeartbeatParams) (HeartbeatResponse, error) {
	if err := s.roomRepo.UpdateMemberStatus(ctx, &room.UpdateMemberStatusParams{
		Username:    params.Username,
		IsWatching:  params.IsWatching,
		CurrentTime: params.CurrentTime,
	}); err != nil && !errors.Is(err, room.ErrMemberNotFound) {
		return HeartbeatResponse{}, fmt.Errorf("failed to update member status: %w", err)
	}

	s.saveProgress(ctx, params.Username, params.CurrentTime)

	return HeartbeatResponse{
		Users: s.getUsersUpdate(ctx),
		Conns: s.connRepo.GetConns(),
	}, nil
}

// saveProgress persists the watch position. Best-effort: failures are
// logged and never fail the heartbeat.
func (s service) saveProgress(ctx context.Context, username string, currentTime float64) {
	if currentTime < s.minSaveTime {
		return
	}

	player := s.roomRepo.GetPlayer(ctx)
	if player.CurrentMovie == nil {
		return
	}

	if err := s.progressRepo.SetProgress(ctx, &progress.SetProgressParams{
		Username:    username,
		Movie:       *player.CurrentMovie,
		CurrentTime: currentTime,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to save watch progress", "error", err)
	}
}

type GetProgressParams struct {
	Username string
	Movie    string
}

func (s service) GetProgress(ctx context.Context, params *GetProgressParams) (float64, error) {
	currentTime, err := s.progressRepo.GetProgress(ctx, &progress.GetProgressParams{
		Username: params.Username,
		Movie:    params.Movie,
	})
	if err != nil {
		return 0, err
	}

	return currentTime, nil
}
