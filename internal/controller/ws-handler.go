package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	roomRepo "github.com/syncinema/server/internal/repository/room"
	"github.com/syncinema/server/internal/service/room"
	"github.com/syncinema/server/pkg/ctxlogger"
	"github.com/syncinema/server/pkg/wsrouter"
)

// HandleWS upgrades the connection and binds it to the room. A connection
// without a valid session is still accepted, but none of its events
// resolve an identity and all are dropped.
func (c *controller) HandleWS(w http.ResponseWriter, r *http.Request) {
	username := ""
	if token := c.sessionToken(r); token != "" {
		if name, err := c.authService.ValidateSession(token); err == nil {
			username = name
		}
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	c.registerConn(conn)
	defer c.unregisterConn(conn)

	ctx := withUsername(r.Context(), username)
	if username != "" {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("username", username))

		if err := c.openMember(ctx, conn, username); err != nil {
			c.logger.WarnContext(ctx, "failed to connect member", "error", err)
			return
		}
		defer c.closeMember(ctx, conn)
	}

	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c *controller) openMember(ctx context.Context, conn *websocket.Conn, username string) error {
	connectResp, err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		Conn:     conn,
		Username: username,
	})
	if err != nil {
		return fmt.Errorf("failed to connect member: %w", err)
	}

	c.logger.InfoContext(ctx, "user connected")

	c.broadcast(ctx, connectResp.Conns, &Output{
		Type: "user_joined",
		Payload: map[string]any{
			"username":  connectResp.Username,
			"avatar":    connectResp.Avatar,
			"timestamp": connectResp.Timestamp,
		},
	})
	c.broadcast(ctx, connectResp.Conns, &Output{
		Type:    "users_update",
		Payload: connectResp.Users,
	})

	// only the new connection gets the current state and history
	c.writeJSON(ctx, conn, &Output{
		Type:    "sync_state",
		Payload: connectResp.Player,
	})
	c.writeJSON(ctx, conn, &Output{
		Type:    "chat_history",
		Payload: connectResp.ChatHistory,
	})

	return nil
}

func (c *controller) closeMember(ctx context.Context, conn *websocket.Conn) {
	disconnectResp, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{Conn: conn})
	if err != nil {
		// already removed, disconnect is idempotent
		return
	}

	c.logger.InfoContext(ctx, "user disconnected")

	if disconnectResp.WasTyping {
		c.broadcast(ctx, disconnectResp.Conns, &Output{
			Type:    "user_stopped_typing",
			Payload: map[string]any{"username": disconnectResp.Username},
		})
	}

	c.broadcast(ctx, disconnectResp.Conns, &Output{
		Type: "user_left",
		Payload: map[string]any{
			"username":  disconnectResp.Username,
			"timestamp": disconnectResp.Timestamp,
		},
	})
	c.broadcast(ctx, disconnectResp.Conns, &Output{
		Type:    "users_update",
		Payload: disconnectResp.Users,
	})
}

// handleUnknownMessage answers unrecognized message types. The reply goes
// through writeJSON so it holds the connection's write lock like every
// other outbound frame.
func (c *controller) handleUnknownMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	messageType := wsrouter.GetMessageTypeFromCtx(ctx)
	c.logger.DebugContext(ctx, "unknown message type", "message_type", messageType)

	c.writeJSON(ctx, conn, &Output{
		Type:    "error",
		Payload: map[string]any{"message": "unknown message type"},
	})

	return nil
}

func (c *controller) unmarshalPayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

type playInput struct {
	Time float64 `json:"time"`
}

func (c *controller) handlePlay(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input playInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	username := c.getUsernameFromCtx(ctx)

	playResp, err := c.roomService.Play(ctx, &room.PlayParams{
		Username:    username,
		CurrentTime: input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcastExcept(ctx, playResp.Conns, conn, &Output{
		Type:    "play_video",
		Payload: map[string]any{"time": playResp.CurrentTime, "username": username},
	})
	c.broadcast(ctx, playResp.Conns, &Output{
		Type:    "users_update",
		Payload: playResp.Users,
	})

	return nil
}

type pauseInput struct {
	Time float64 `json:"time"`
}

func (c *controller) handlePause(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input pauseInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	username := c.getUsernameFromCtx(ctx)

	pauseResp, err := c.roomService.Pause(ctx, &room.PauseParams{
		Username:    username,
		CurrentTime: input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcastExcept(ctx, pauseResp.Conns, conn, &Output{
		Type:    "pause_video",
		Payload: map[string]any{"time": pauseResp.CurrentTime, "username": username},
	})
	c.broadcast(ctx, pauseResp.Conns, &Output{
		Type:    "users_update",
		Payload: pauseResp.Users,
	})

	return nil
}

type seekInput struct {
	Time float64 `json:"time"`
}

func (c *controller) handleSeek(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input seekInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	username := c.getUsernameFromCtx(ctx)

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		Username:    username,
		CurrentTime: input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	c.broadcastExcept(ctx, seekResp.Conns, conn, &Output{
		Type:    "seek_video",
		Payload: map[string]any{"time": seekResp.CurrentTime, "username": username},
	})

	return nil
}

type changeMovieInput struct {
	Movie *string `json:"movie"`
}

func (c *controller) handleChangeMovie(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input changeMovieInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	username := c.getUsernameFromCtx(ctx)

	changeResp, err := c.roomService.ChangeMovie(ctx, &room.ChangeMovieParams{
		Username: username,
		Movie:    input.Movie,
	})
	if err != nil {
		return fmt.Errorf("failed to change movie: %w", err)
	}

	// unlike play/pause/seek this echoes to the sender, whose player
	// must reset as well
	c.broadcast(ctx, changeResp.Conns, &Output{
		Type: "movie_changed",
		Payload: map[string]any{
			"movie":    changeResp.Player.CurrentMovie,
			"time":     changeResp.Player.CurrentTime,
			"username": username,
		},
	})

	return nil
}

type sendMessageInput struct {
	Message string `json:"message"`
	Spoiler bool   `json:"spoiler"`
}

func (c *controller) handleSendMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input sendMessageInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	username := c.getUsernameFromCtx(ctx)

	sendResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		Username: username,
		Message:  input.Message,
		Spoiler:  input.Spoiler,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.broadcast(ctx, sendResp.Conns, &Output{
		Type:    "user_stopped_typing",
		Payload: map[string]any{"username": username},
	})
	c.broadcast(ctx, sendResp.Conns, &Output{
		Type:    "new_message",
		Payload: sendResp.Message,
	})

	return nil
}

func (c *controller) handleTyping(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	username := c.getUsernameFromCtx(ctx)

	typingResp, err := c.roomService.Typing(ctx, &room.TypingParams{Username: username})
	if err != nil {
		return fmt.Errorf("failed to set typing: %w", err)
	}

	c.broadcastExcept(ctx, typingResp.Conns, conn, &Output{
		Type:    "user_typing",
		Payload: map[string]any{"username": typingResp.Username, "avatar": typingResp.Avatar},
	})
	c.broadcast(ctx, typingResp.Conns, &Output{
		Type:    "users_update",
		Payload: typingResp.Users,
	})

	return nil
}

func (c *controller) handleStopTyping(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	username := c.getUsernameFromCtx(ctx)

	stopResp, err := c.roomService.StopTyping(ctx, &room.StopTypingParams{Username: username})
	if err != nil {
		return fmt.Errorf("failed to clear typing: %w", err)
	}

	c.broadcast(ctx, stopResp.Conns, &Output{
		Type:    "user_stopped_typing",
		Payload: map[string]any{"username": stopResp.Username},
	})
	c.broadcast(ctx, stopResp.Conns, &Output{
		Type:    "users_update",
		Payload: stopResp.Users,
	})

	return nil
}

type heartbeatInput struct {
	Time       float64 `json:"time"`
	IsWatching bool    `json:"is_watching"`
}

func (c *controller) handleHeartbeat(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input heartbeatInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	heartbeatResp, err := c.roomService.Heartbeat(ctx, &room.HeartbeatParams{
		Username:    c.getUsernameFromCtx(ctx),
		IsWatching:  input.IsWatching,
		CurrentTime: input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to handle heartbeat: %w", err)
	}

	c.broadcast(ctx, heartbeatResp.Conns, &Output{
		Type:    "users_update",
		Payload: heartbeatResp.Users,
	})

	return nil
}

type sendReactionInput struct {
	Emoji     string  `json:"emoji"`
	VideoTime float64 `json:"video_time"`
}

func (c *controller) handleSendReaction(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input sendReactionInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	reactionResp, err := c.roomService.SendReaction(ctx, &room.SendReactionParams{
		Username:  c.getUsernameFromCtx(ctx),
		Emoji:     input.Emoji,
		VideoTime: input.VideoTime,
	})
	if err != nil {
		return fmt.Errorf("failed to send reaction: %w", err)
	}

	c.broadcast(ctx, reactionResp.Conns, &Output{
		Type:    "new_reaction",
		Payload: reactionResp.Reaction,
	})

	return nil
}

type reactToMessageInput struct {
	MessageId string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

func (c *controller) handleReactToMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input reactToMessageInput
	if err := c.unmarshalPayload(payload, &input); err != nil {
		return err
	}

	toggleResp, err := c.roomService.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{
		Username:  c.getUsernameFromCtx(ctx),
		MessageId: input.MessageId,
		Emoji:     input.Emoji,
	})
	if err != nil {
		// reacting to an unknown message is dropped silently
		if errors.Is(err, roomRepo.ErrMessageNotFound) {
			return nil
		}

		return fmt.Errorf("failed to toggle message reaction: %w", err)
	}

	c.broadcast(ctx, toggleResp.Conns, &Output{
		Type: "message_reaction_update",
		Payload: map[string]any{
			"message_id": toggleResp.MessageId,
			"reactions":  toggleResp.Reactions,
			"user":       toggleResp.Username,
		},
	})

	return nil
}
