package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncinema/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 5000,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	movieDir = configVar[string]{
		envKey:       "SERVER_MOVIE_DIR",
		flagKey:      "movie-dir",
		defaultValue: "movies",
	}
	avatarDir = configVar[string]{
		envKey:       "SERVER_AVATAR_DIR",
		flagKey:      "avatar-dir",
		defaultValue: "pfp",
	}
	usersFile = configVar[string]{
		envKey:       "SERVER_USERS_FILE",
		flagKey:      "users-file",
		defaultValue: "users.json",
	}
	maxChatMessages = configVar[int]{
		envKey:       "SERVER_MAX_CHAT_MESSAGES",
		flagKey:      "max-chat-messages",
		defaultValue: 100,
	}
	maxReactions = configVar[int]{
		envKey:       "SERVER_MAX_REACTIONS",
		flagKey:      "max-reactions",
		defaultValue: 50,
	}
	minSaveTime = configVar[float64]{
		envKey:       "SERVER_MIN_SAVE_TIME",
		flagKey:      "min-save-time",
		defaultValue: 10,
	}
	sessionExpHours = configVar[int]{
		envKey:       "SERVER_SESSION_EXP_HOURS",
		flagKey:      "session-exp-hours",
		defaultValue: 24 * 7,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(movieDir.flagKey, movieDir.defaultValue, "Directory with movie files")
	pflag.String(avatarDir.flagKey, avatarDir.defaultValue, "Directory with avatar images")
	pflag.String(usersFile.flagKey, usersFile.defaultValue, "Path to the users credentials file")
	pflag.Int(maxChatMessages.flagKey, maxChatMessages.defaultValue, "Maximum number of chat messages kept in the room")
	pflag.Int(maxReactions.flagKey, maxReactions.defaultValue, "Maximum number of reactions kept in the room")
	pflag.Float64(minSaveTime.flagKey, minSaveTime.defaultValue, "Playback position in seconds below which progress is not saved")
	pflag.Int(sessionExpHours.flagKey, sessionExpHours.defaultValue, "Session lifetime in hours")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(movieDir.flagKey, movieDir.envKey)
	viper.BindEnv(avatarDir.flagKey, avatarDir.envKey)
	viper.BindEnv(usersFile.flagKey, usersFile.envKey)
	viper.BindEnv(maxChatMessages.flagKey, maxChatMessages.envKey)
	viper.BindEnv(maxReactions.flagKey, maxReactions.envKey)
	viper.BindEnv(minSaveTime.flagKey, minSaveTime.envKey)
	viper.BindEnv(sessionExpHours.flagKey, sessionExpHours.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(movieDir.flagKey, movieDir.defaultValue)
	viper.SetDefault(avatarDir.flagKey, avatarDir.defaultValue)
	viper.SetDefault(usersFile.flagKey, usersFile.defaultValue)
	viper.SetDefault(maxChatMessages.flagKey, maxChatMessages.defaultValue)
	viper.SetDefault(maxReactions.flagKey, maxReactions.defaultValue)
	viper.SetDefault(minSaveTime.flagKey, minSaveTime.defaultValue)
	viper.SetDefault(sessionExpHours.flagKey, sessionExpHours.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		MovieDir:        viper.GetString(movieDir.flagKey),
		AvatarDir:       viper.GetString(avatarDir.flagKey),
		UsersFile:       viper.GetString(usersFile.flagKey),
		MaxChatMessages: viper.GetInt(maxChatMessages.flagKey),
		MaxReactions:    viper.GetInt(maxReactions.flagKey),
		MinSaveTime:     viper.GetFloat64(minSaveTime.flagKey),
		SessionExpHours: viper.GetInt(sessionExpHours.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
