package controller

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/syncinema/server/internal/repository/progress"
	"github.com/syncinema/server/internal/service/auth"
	"github.com/syncinema/server/internal/service/avatar"
	"github.com/syncinema/server/internal/service/library"
	"github.com/syncinema/server/internal/service/room"
	"github.com/syncinema/server/pkg/rest"
)

type loginInput struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required"`
}

func (c *controller) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"status": "error", "message": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"status": "error", "errors": validationErrors})
		return
	}

	loginResp, err := c.authService.Login(r.Context(), &auth.LoginParams{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed login attempt", "username", input.Username)
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"status": "error", "message": "invalid credentials"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    loginResp.Token,
		Path:     "/",
		HttpOnly: true,
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":   "success",
		"username": loginResp.Username,
		"token":    loginResp.Token,
	})
}

func (c *controller) Logout(w http.ResponseWriter, r *http.Request) {
	if token := c.sessionToken(r); token != "" {
		c.authService.DeleteSession(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "success"})
}

func (c *controller) Movies(w http.ResponseWriter, r *http.Request) {
	if _, err := c.authenticate(r); err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "unauthorized"})
		return
	}

	movies, err := c.libraryService.List()
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to list movies", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"movies": movies})
}

func (c *controller) Progress(w http.ResponseWriter, r *http.Request) {
	username, err := c.authenticate(r)
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "unauthorized"})
		return
	}

	movie := r.URL.Query().Get("movie")
	if movie == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "movie is required"})
		return
	}

	currentTime, err := c.roomService.GetProgress(r.Context(), &room.GetProgressParams{
		Username: username,
		Movie:    movie,
	})
	if err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "no saved progress"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get progress", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"movie": movie, "current_time": currentTime})
}

func (c *controller) ServeMovie(w http.ResponseWriter, r *http.Request) {
	username, err := c.authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filename := chi.URLParam(r, "filename")
	path, err := c.libraryService.MoviePath(filename)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrMovieNotFound):
			http.Error(w, "File not found", http.StatusNotFound)
		case errors.Is(err, library.ErrAccessDenied):
			c.logger.WarnContext(r.Context(), "path traversal attempt", "filename", filename, "username", username)
			http.Error(w, "Access denied", http.StatusForbidden)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	c.logger.InfoContext(r.Context(), "serving movie", "filename", filename, "username", username, "size", stat.Size())

	w.Header().Set("Content-Type", c.libraryService.MimeType(filename))
	w.Header().Set("Content-Disposition", "inline")
	// ServeContent handles Range requests and Accept-Ranges
	http.ServeContent(w, r, filename, stat.ModTime(), f)
}

func (c *controller) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	if _, err := c.authenticate(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	path, err := c.avatarService.FilePath(chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, avatar.ErrAvatarNotFound) {
			http.Error(w, "Avatar not found", http.StatusNotFound)
			return
		}

		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.ServeFile(w, r, path)
}
