package api

import (
	"embed"
	"html/template"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-gemini/internal/chat"
	"go-gemini/internal/config"
	"go-gemini/internal/guide"
	"go-gemini/internal/llm"
	"go-gemini/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// basePath turns the configured subpath into the route for the page itself,
// e.g. "" -> "/" and "/chat/" -> "/chat".
func basePath(subpath string) string {
	return path.Join("/", subpath)
}

func newEngine(logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(logger))
	r.SetHTMLTemplate(templates)
	return r
}

// SetupChatRouter mounts the chat page and its clear action under the subpath.
func SetupChatRouter(cfg *config.Config, svc *chat.Service, logger zerolog.Logger) *gin.Engine {
	r := newEngine(logger)
	v := ChatView{
		Svc:         svc,
		Base:        basePath(cfg.Server.Subpath),
		ServiceName: llm.ServiceName(cfg.LLM.Provider),
		Log:         logging.Component(logger, "chat"),
	}

	r.GET(v.Base, ChatPageHandler(v))
	r.POST(v.Base, ChatSendHandler(v))
	r.GET(path.Join(v.Base, "clear"), ChatClearHandler(v))
	return r
}

// SetupGuideRouter mounts the question form under the subpath.
func SetupGuideRouter(cfg *config.Config, svc *guide.Service, logger zerolog.Logger) *gin.Engine {
	r := newEngine(logger)
	base := basePath(cfg.Server.Subpath)
	log := logging.Component(logger, "guide")

	r.GET(base, GuidePageHandler(base))
	r.POST(base, GuideAskHandler(svc, base, log))
	return r
}
