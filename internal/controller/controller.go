package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/syncinema/server/internal/service/auth"
	"github.com/syncinema/server/internal/service/room"
	"github.com/syncinema/server/pkg/validator"
	"github.com/syncinema/server/pkg/wsrouter"
)

type iRoomService interface {
	ConnectMember(context.Context, *room.ConnectMemberParams) (room.ConnectMemberResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	Play(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Pause(context.Context, *room.PauseParams) (room.PauseResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	ChangeMovie(context.Context, *room.ChangeMovieParams) (room.ChangeMovieResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	SendReaction(context.Context, *room.SendReactionParams) (room.SendReactionResponse, error)
	ToggleMessageReaction(context.Context, *room.ToggleMessageReactionParams) (room.ToggleMessageReactionResponse, error)
	Typing(context.Context, *room.TypingParams) (room.TypingResponse, error)
	StopTyping(context.Context, *room.StopTypingParams) (room.StopTypingResponse, error)
	Heartbeat(context.Context, *room.HeartbeatParams) (room.HeartbeatResponse, error)
	GetProgress(context.Context, *room.GetProgressParams) (float64, error)
}

type iAuthService interface {
	Login(context.Context, *auth.LoginParams) (auth.LoginResponse, error)
	ValidateSession(token string) (string, error)
	DeleteSession(token string)
}

type iLibraryService interface {
	List() ([]string, error)
	MimeType(filename string) string
	MoviePath(filename string) (string, error)
}

type iAvatarService interface {
	FilePath(username string) (string, error)
}

type controller struct {
	roomService    iRoomService
	authService    iAuthService
	libraryService iLibraryService
	avatarService  iAvatarService
	upgrader       websocket.Upgrader
	wsRouter       *wsrouter.WSRouter
	validate       *validator.Validator
	logger         *slog.Logger

	// per-connection write locks, gorilla conns do not allow
	// concurrent writers
	connMu     sync.RWMutex
	writeLocks map[*websocket.Conn]*sync.Mutex
}

func NewController(
	roomService iRoomService,
	authService iAuthService,
	libraryService iLibraryService,
	avatarService iAvatarService,
	logger *slog.Logger,
) *controller {
	c := &controller{
		roomService:    roomService,
		authService:    authService,
		libraryService: libraryService,
		avatarService:  avatarService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:   validator.NewValidator(),
		logger:     logger,
		writeLocks: make(map[*websocket.Conn]*sync.Mutex),
	}
	c.wsRouter = c.getWSRouter()

	return c
}
