package room

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncinema/server/internal/repository/room"
)

type SendMessageParams struct {
	Username string
	Message  string
	Spoiler  bool
}

type SendMessageResponse struct {
	Message Message
	Conns   []*websocket.Conn
}

// SendMessage stores the message and clears the author's typing state.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	avatar, avatarURL := s.avatar.Resolve(params.Username)

	now := time.Now()
	message := s.roomRepo.AppendMessage(ctx, &room.AppendMessageParams{
		Username:  params.Username,
		Avatar:    avatar,
		AvatarURL: avatarURL,
		Message:   params.Message,
		Timestamp: timestamp(now),
		SentAt:    now.UnixMilli(),
		Spoiler:   params.Spoiler,
	})

	s.roomRepo.RemoveTyping(ctx, params.Username)

	return SendMessageResponse{
		Message: toMessage(message),
		Conns:   s.connRepo.GetConns(),
	}, nil
}

type SendReactionParams struct {
	Username  string
	Emoji     string
	VideoTime float64
}

type SendReactionResponse struct {
	Reaction Reaction
	Conns    []*websocket.Conn
}

func (s service) SendReaction(ctx context.Context, params *SendReactionParams) (SendReactionResponse, error) {
	avatar, _ := s.avatar.Resolve(params.Username)

	reaction := s.roomRepo.AppendReaction(ctx, &room.AppendReactionParams{
		Username:  params.Username,
		Avatar:    avatar,
		Emoji:     params.Emoji,
		Timestamp: timestamp(time.Now()),
		VideoTime: params.VideoTime,
	})

	return SendReactionResponse{
		Reaction: Reaction{
			Username:  reaction.Username,
			Avatar:    reaction.Avatar,
			Emoji:     reaction.Emoji,
			Timestamp: reaction.Timestamp,
			VideoTime: reaction.VideoTime,
		},
		Conns: s.connRepo.GetConns(),
	}, nil
}

type ToggleMessageReactionParams struct {
	Username  string
	MessageId string
	Emoji     string
}

type ToggleMessageReactionResponse struct {
	MessageId string
	Reactions map[string][]string
	Username  string
	Conns     []*websocket.Conn
}

func (s service) ToggleMessageReaction(ctx context.Context, params *ToggleMessageReactionParams) (ToggleMessageReactionResponse, error) {
	if params.MessageId == "" || params.Emoji == "" {
		return ToggleMessageReactionResponse{}, room.ErrMessageNotFound
	}

	reactions, err := s.roomRepo.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{
		MessageId: params.MessageId,
		Emoji:     params.Emoji,
		Username:  params.Username,
	})
	if err != nil {
		return ToggleMessageReactionResponse{}, fmt.Errorf("failed to toggle message reaction: %w", err)
	}

	return ToggleMessageReactionResponse{
		MessageId: params.MessageId,
		Reactions: reactions,
		Username:  params.Username,
		Conns:     s.connRepo.GetConns(),
	}, nil
}

type TypingParams struct {
	Username string
}

type TypingResponse struct {
	Username string
	Avatar   string
	Users    UsersUpdate
	Conns    []*websocket.Conn
}

func (s service) Typing(ctx context.Context, params *TypingParams) (TypingResponse, error) {
	s.roomRepo.AddTyping(ctx, params.Username)

	avatar, _ := s.avatar.Resolve(params.Username)

	return TypingResponse{
		Username: params.Username,
		Avatar:   avatar,
		Users:    s.getUsersUpdate(ctx),
		Conns:    s.connRepo.GetConns(),
	}, nil
}

type StopTypingParams struct {
	Username string
}

type StopTypingResponse struct {
	Username string
	Users    UsersUpdate
	Conns    []*websocket.Conn
}

func (s service) StopTyping(ctx context.Context, params *StopTypingParams) (StopTypingResponse, error) {
	s.roomRepo.RemoveTyping(ctx, params.Username)

	return StopTypingResponse{
		Username: params.Username,
		Users:    s.getUsersUpdate(ctx),
		Conns:    s.connRepo.GetConns(),
	}, nil
}
