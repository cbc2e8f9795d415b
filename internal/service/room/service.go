package room

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/syncinema/server/internal/repository/progress"
	"github.com/syncinema/server/internal/repository/room"
)

type iRoomRepo interface {
	// member
	SetMember(context.Context, *room.SetMemberParams) error
	RemoveMember(ctx context.Context, username string) error
	UpdateMemberStatus(context.Context, *room.UpdateMemberStatusParams) error
	GetMember(ctx context.Context, username string) (room.Member, error)
	GetMembers(context.Context) []room.Member
	// typing
	AddTyping(ctx context.Context, username string)
	RemoveTyping(ctx context.Context, username string) bool
	GetTyping(context.Context) []string
	// chat
	AppendMessage(context.Context, *room.AppendMessageParams) room.Message
	GetMessages(context.Context) []room.Message
	ToggleMessageReaction(context.Context, *room.ToggleMessageReactionParams) (map[string][]string, error)
	AppendReaction(context.Context, *room.AppendReactionParams) room.Reaction
	// player
	GetPlayer(context.Context) room.Player
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) room.Player
	UpdatePlayerTime(ctx context.Context, currentTime float64) room.Player
	UpdatePlayerMovie(ctx context.Context, movie *string) room.Player
}

type iConnRepo interface {
	Add(conn *websocket.Conn, username string) error
	RemoveByConn(conn *websocket.Conn) (string, error)
	GetConns() []*websocket.Conn
}

type iProgressRepo interface {
	SetProgress(context.Context, *progress.SetProgressParams) error
	GetProgress(context.Context, *progress.GetProgressParams) (float64, error)
}

type iAvatarResolver interface {
	Resolve(username string) (string, *string)
}

type iLibrary interface {
	List() ([]string, error)
}

type Config struct {
	// MinSaveTime is the playback position in seconds below which
	// heartbeats do not persist watch progress.
	MinSaveTime float64
}

type service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	progressRepo iProgressRepo
	avatar       iAvatarResolver
	library      iLibrary
	logger       *slog.Logger
	minSaveTime  float64
}

func NewService(
	roomRepo iRoomRepo,
	connRepo iConnRepo,
	progressRepo iProgressRepo,
	avatar iAvatarResolver,
	library iLibrary,
	logger *slog.Logger,
	cfg *Config,
) *service {
	return &service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		progressRepo: progressRepo,
		avatar:       avatar,
		library:      library,
		logger:       logger,
		minSaveTime:  cfg.MinSaveTime,
	}
}
