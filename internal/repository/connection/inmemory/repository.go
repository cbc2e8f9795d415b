package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/syncinema/server/internal/repository/connection"
)

// repo tracks every live connection and the identity it was opened with.
// A user may hold several connections at once (multiple tabs).
type repo struct {
	conns map[*websocket.Conn]string
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[*websocket.Conn]string),
	}
}

func (r *repo) Add(conn *websocket.Conn, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[conn] = username

	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.conns, conn)

	return username, nil
}

func (r *repo) GetConns() []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}

	return conns
}
