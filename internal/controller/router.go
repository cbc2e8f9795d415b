package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Post("/api/login", c.Login)
	r.Post("/api/logout", c.Logout)
	r.Get("/api/movies", c.Movies)
	r.Get("/api/progress", c.Progress)

	r.Get("/movies/{filename}", c.ServeMovie)
	r.Get("/avatars/{username}", c.ServeAvatar)

	r.HandleFunc("/ws", c.HandleWS)

	return r
}
