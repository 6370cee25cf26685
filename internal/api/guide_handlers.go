package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-gemini/internal/guide"
)

// GET /
func GuidePageHandler(base string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "guide.html", gin.H{"action": base, "question": "", "answer": ""})
	}
}

// POST /  form field: question
// Model failures come back as answer text, so this always renders 200.
func GuideAskHandler(svc *guide.Service, base string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		question := c.PostForm("question")
		answer := svc.Ask(c.Request.Context(), question)

		log.Debug().Int("question_chars", len(question)).Int("answer_chars", len(answer)).Msg("answered question")
		c.HTML(http.StatusOK, "guide.html", gin.H{
			"action":   base,
			"question": question,
			"answer":   answer,
		})
	}
}
