package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncinema/server/internal/controller"
	connInmemory "github.com/syncinema/server/internal/repository/connection/inmemory"
	progressRedis "github.com/syncinema/server/internal/repository/progress/redis"
	roomInmemory "github.com/syncinema/server/internal/repository/room/inmemory"
	"github.com/syncinema/server/internal/service/auth"
	"github.com/syncinema/server/internal/service/avatar"
	"github.com/syncinema/server/internal/service/library"
	"github.com/syncinema/server/internal/service/room"
	"github.com/syncinema/server/pkg/ctxlogger"
	"github.com/syncinema/server/pkg/redisclient"
)

type AppConfig struct {
	Host            string  `json:"host"`
	Port            int     `json:"port"`
	LogLevel        string  `json:"log_level"`
	MovieDir        string  `json:"movie_dir"`
	AvatarDir       string  `json:"avatar_dir"`
	UsersFile       string  `json:"users_file"`
	MaxChatMessages int     `json:"max_chat_messages"`
	MaxReactions    int     `json:"max_reactions"`
	MinSaveTime     float64 `json:"min_save_time"`
	SessionExpHours int     `json:"session_exp_hours"`
	RedisHost       string  `json:"redis_host"`
	RedisPort       int     `json:"redis_port"`
	RedisPassword   string  `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.MaxChatMessages < 1 {
		return fmt.Errorf("max chat messages must be greater than 0")
	}
	if cfg.MaxReactions < 1 {
		return fmt.Errorf("max reactions must be greater than 0")
	}
	if cfg.SessionExpHours < 1 {
		return fmt.Errorf("session expiration must be greater than 0")
	}
	if cfg.MovieDir == "" {
		return fmt.Errorf("movie dir must not be empty")
	}
	if cfg.AvatarDir == "" {
		return fmt.Errorf("avatar dir must not be empty")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	for _, dir := range []string{cfg.MovieDir, cfg.AvatarDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dir: %w", err)
		}
	}

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomInmemory.NewRepo(&roomInmemory.Config{
		MaxChatMessages: cfg.MaxChatMessages,
		MaxReactions:    cfg.MaxReactions,
	})
	connectionRepo := connInmemory.NewRepo()
	progressRepo := progressRedis.NewRepo(rc, 24*30*time.Hour)

	avatarService := avatar.NewService(&avatar.Config{
		AvatarDir: cfg.AvatarDir,
		Glyphs: map[string]string{
			"admin":  "🎬",
			"tester": "🍿",
		},
		DefaultGlyph: "👤",
	})
	libraryService := library.NewService(&library.Config{MovieDir: cfg.MovieDir})
	authService, err := auth.NewService(logger, &auth.Config{
		UsersFile:  cfg.UsersFile,
		SessionExp: time.Duration(cfg.SessionExpHours) * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	roomService := room.NewService(roomRepo, connectionRepo, progressRepo, avatarService, libraryService, logger, &room.Config{
		MinSaveTime: cfg.MinSaveTime,
	})

	controller := controller.NewController(roomService, authService, libraryService, avatarService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
