package inmemory

import (
	"sync"

	"github.com/syncinema/server/internal/repository/room"
)

type Config struct {
	MaxChatMessages int
	MaxReactions    int
}

// repo is the single-room state store. One mutex serializes every mutation
// and snapshot; methods never perform I/O while holding it.
type repo struct {
	mu sync.Mutex

	members     map[string]*room.Member
	memberOrder []string
	typing      map[string]struct{}

	messages     []*room.Message
	messageIndex map[string]*room.Message
	messageSeq   int64

	reactions []room.Reaction

	player room.Player

	maxChatMessages int
	maxReactions    int
}

func NewRepo(cfg *Config) *repo {
	return &repo{
		members:         make(map[string]*room.Member),
		typing:          make(map[string]struct{}),
		messageIndex:    make(map[string]*room.Message),
		maxChatMessages: cfg.MaxChatMessages,
		maxReactions:    cfg.MaxReactions,
	}
}

func copyReactions(reactions map[string][]string) map[string][]string {
	copied := make(map[string][]string, len(reactions))
	for emoji, usernames := range reactions {
		copied[emoji] = append([]string(nil), usernames...)
	}

	return copied
}
