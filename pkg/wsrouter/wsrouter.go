package wsrouter

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
	unknown     HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

// Use registers a middleware applied to every handler. Must be called
// before Handle.
func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	r.routes[messageType] = handler
}

// HandleUnknown registers the handler invoked for message types with no
// registered route. Without one, unrecognized messages are dropped.
func (r *WSRouter) HandleUnknown(handler HandlerFunc) {
	r.unknown = handler
}

// ServeConn reads messages from the connection until the read fails and
// routes each one to the handler registered for its type. Handler errors
// do not terminate the loop. The router never writes to the connection
// itself; replies are the handlers' business.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			if r.unknown != nil {
				r.unknown(withMessageType(ctx, msg.Type), conn, msg.Payload)
			}
			continue
		}

		handler(withMessageType(ctx, msg.Type), conn, msg.Payload)
	}
}
