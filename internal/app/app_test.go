package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/syncinema/server/internal/repository/connection/inmemory"
	progressRedis "github.com/syncinema/server/internal/repository/progress/redis"
	roomInmemory "github.com/syncinema/server/internal/repository/room/inmemory"
	"github.com/syncinema/server/internal/service/avatar"
	"github.com/syncinema/server/internal/service/library"
	"github.com/syncinema/server/internal/service/room"
)

func TestWatchSession(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	movieDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(movieDir, "movie.mp4"), []byte("x"), 0o644))

	s := miniredis.RunT(t)
	r := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	roomRepo := roomInmemory.NewRepo(&roomInmemory.Config{MaxChatMessages: 100, MaxReactions: 50})
	connRepo := connInmemory.NewRepo()
	progressRepo := progressRedis.NewRepo(r, time.Hour)
	avatarService := avatar.NewService(&avatar.Config{AvatarDir: t.TempDir(), DefaultGlyph: "👤"})
	libraryService := library.NewService(&library.Config{MovieDir: movieDir})
	service := room.NewService(roomRepo, connRepo, progressRepo, avatarService, libraryService, slog.Default(), &room.Config{MinSaveTime: 10})

	ctx := context.Background()

	// two members join
	conn1 := &websocket.Conn{}
	connect1Resp, err := service.ConnectMember(ctx, &room.ConnectMemberParams{Conn: conn1, Username: "user1"})
	require.NoError(t, err)
	assert.Equal(t, "user1", connect1Resp.Username)
	assert.Equal(t, 1, connect1Resp.Users.Count, "room must contain 1 user")
	assert.Empty(t, connect1Resp.ChatHistory, "chat history must be empty")

	conn2 := &websocket.Conn{}
	connect2Resp, err := service.ConnectMember(ctx, &room.ConnectMemberParams{Conn: conn2, Username: "user2"})
	require.NoError(t, err)
	assert.Equal(t, 2, connect2Resp.Users.Count, "room must contain 2 users")
	assert.Equal(t, []string{"user1", "user2"}, connect2Resp.Users.Users)
	assert.Equal(t, 2, len(connect2Resp.Conns), "conns must contain 2 conns")
	t.Log("members joined")

	// member 1 picks the movie and starts playback
	movie := "movie.mp4"
	changeResp, err := service.ChangeMovie(ctx, &room.ChangeMovieParams{Username: "user1", Movie: &movie})
	require.NoError(t, err)
	require.NotNil(t, changeResp.Player.CurrentMovie)
	assert.Equal(t, movie, *changeResp.Player.CurrentMovie)
	assert.Equal(t, float64(0), changeResp.Player.CurrentTime, "movie change must reset position")

	playResp, err := service.Play(ctx, &room.PlayParams{Username: "user1", CurrentTime: 12.5})
	require.NoError(t, err)
	assert.Equal(t, 12.5, playResp.CurrentTime)
	t.Log("playback started")

	// member 2 chats and member 1 reacts to the message
	sendResp, err := service.SendMessage(ctx, &room.SendMessageParams{Username: "user2", Message: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, sendResp.Message.Id)

	toggleResp, err := service.ToggleMessageReaction(ctx, &room.ToggleMessageReactionParams{
		Username:  "user1",
		MessageId: sendResp.Message.Id,
		Emoji:     "🔥",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user1"}, toggleResp.Reactions["🔥"])
	t.Log("message sent and reacted to")

	// heartbeat above the save threshold persists progress
	_, err = service.Heartbeat(ctx, &room.HeartbeatParams{Username: "user1", IsWatching: true, CurrentTime: 42})
	require.NoError(t, err)
	saved, err := service.GetProgress(ctx, &room.GetProgressParams{Username: "user1", Movie: movie})
	require.NoError(t, err)
	assert.Equal(t, float64(42), saved)
	t.Log("progress saved")

	// member 2 leaves
	disconnectResp, err := service.DisconnectMember(ctx, &room.DisconnectMemberParams{Conn: conn2})
	require.NoError(t, err)
	assert.Equal(t, "user2", disconnectResp.Username)
	assert.Equal(t, 1, disconnectResp.Users.Count, "room must contain 1 user")
	assert.Equal(t, []string{"user1"}, disconnectResp.Users.Users)
	t.Log("member 2 disconnected")
}
