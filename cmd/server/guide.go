package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-gemini/internal/api"
	"go-gemini/internal/config"
	"go-gemini/internal/guide"
	"go-gemini/internal/llm"
	"go-gemini/internal/logging"
)

var documentPath string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Serve the question form for a reference document",
	Long: `Serve a question form answered from a single reference document.

The document is read once at startup. Markdown and text files are used as-is;
HTML and PDF files are reduced to their readable text. Each distinct question
is sent to the model once and the answer is cached.`,
	Args: cobra.NoArgs,
	RunE: runGuide,
}

func init() {
	guideCmd.Flags().StringVarP(&documentPath, "document", "d", "", "reference document (overrides guide.document_path)")
	rootCmd.AddCommand(guideCmd)
}

func runGuide(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	path := a.cfg.Guide.DocumentPath
	if documentPath != "" {
		path = documentPath
	}
	doc, err := guide.LoadDocument(path)
	if err != nil {
		return err
	}
	a.log.Info().Str("path", doc.Path).Str("format", doc.Format).Int("chars", len(doc.Text)).Msg("loaded guide document")

	cache, err := guideCache(ctx, a)
	if err != nil {
		return err
	}

	opts := llm.GenerateOptions{
		MaxOutputTokens: a.cfg.Guide.MaxOutputTokens,
		Temperature:     llm.Temperature(a.cfg.Guide.Temperature),
	}
	svc := guide.NewService(doc, a.answerer(opts), cache, guide.Options{
		Instruction:   a.cfg.Guide.Instruction,
		CacheFailures: a.cfg.Guide.CacheFailures,
	}, logging.Component(a.log, "guide"))

	err = a.serve(ctx, api.SetupGuideRouter(a.cfg, svc, a.log))
	if stats, serr := svc.Stats(context.Background()); serr == nil {
		a.log.Info().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Int("entries", stats.Entries).Msg("answer cache stats")
	}
	return err
}

func guideCache(ctx context.Context, a *app) (guide.Cache, error) {
	switch a.cfg.Guide.Store {
	case config.StoreRedis:
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return guide.NewRedisCache(rdb, a.cfg.Redis.KeyPrefix), nil
	case config.StoreSQL:
		conn, err := a.database()
		if err != nil {
			return nil, err
		}
		return guide.NewSQLCache(conn), nil
	case config.StoreMemory, "":
		return guide.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown guide store %q", a.cfg.Guide.Store)
	}
}
