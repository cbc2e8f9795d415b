package controller

import (
	"github.com/syncinema/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.identityWSMw())
	mux.Use(c.loggerWSMw())

	mux.Handle("play", c.handlePlay)
	mux.Handle("pause", c.handlePause)
	mux.Handle("seek", c.handleSeek)
	mux.Handle("change_movie", c.handleChangeMovie)
	mux.Handle("send_message", c.handleSendMessage)
	mux.Handle("typing", c.handleTyping)
	mux.Handle("stop_typing", c.handleStopTyping)
	mux.Handle("heartbeat", c.handleHeartbeat)
	mux.Handle("send_reaction", c.handleSendReaction)
	mux.Handle("react_to_message", c.handleReactToMessage)

	mux.HandleUnknown(c.handleUnknownMessage)

	return mux
}
