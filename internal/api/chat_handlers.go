package api

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-gemini/internal/chat"
)

// ChatView carries what every chat handler needs to render the page.
type ChatView struct {
	Svc         *chat.Service
	Base        string // route of the page itself
	ServiceName string // provider name shown in the title
	Log         zerolog.Logger
}

func (v ChatView) render(c *gin.Context, status int, notice string) {
	data := gin.H{
		"service": v.ServiceName,
		"action":  v.Base,
		"clear":   path.Join(v.Base, "clear"),
		"error":   notice,
	}

	turns, err := v.Svc.Transcript(c.Request.Context())
	if err != nil {
		v.Log.Error().Err(err).Msg("failed to load transcript")
		data["error"] = "Could not load the chat history."
		c.HTML(http.StatusInternalServerError, "chat.html", data)
		return
	}
	data["turns"] = turns
	c.HTML(status, "chat.html", data)
}

// GET /
func ChatPageHandler(v ChatView) gin.HandlerFunc {
	return func(c *gin.Context) {
		v.render(c, http.StatusOK, "")
	}
}

// POST /  form field: message
func ChatSendHandler(v ChatView) gin.HandlerFunc {
	return func(c *gin.Context) {
		message := c.PostForm("message")

		if _, err := v.Svc.Send(c.Request.Context(), message); err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				v.render(c, http.StatusBadRequest, "Please enter a message.")
				return
			}
			v.Log.Error().Err(err).Msg("failed to record turn")
			v.render(c, http.StatusInternalServerError, "Could not save the answer.")
			return
		}
		v.render(c, http.StatusOK, "")
	}
}

// GET /clear
func ChatClearHandler(v ChatView) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.Svc.Clear(c.Request.Context()); err != nil {
			v.Log.Error().Err(err).Msg("failed to clear transcript")
			v.render(c, http.StatusInternalServerError, "Could not clear the chat history.")
			return
		}
		c.Redirect(http.StatusFound, v.Base)
	}
}
