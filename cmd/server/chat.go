package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-gemini/internal/api"
	"go-gemini/internal/chat"
	"go-gemini/internal/config"
	"go-gemini/internal/llm"
	"go-gemini/internal/logging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Serve the chat page with a running transcript",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := chatStore(ctx, a)
	if err != nil {
		return err
	}

	svc := chat.NewService(store, a.answerer(llm.GenerateOptions{}), a.cfg.Chat.Instruction, logging.Component(a.log, "chat"))
	return a.serve(ctx, api.SetupChatRouter(a.cfg, svc, a.log))
}

func chatStore(ctx context.Context, a *app) (chat.Store, error) {
	switch a.cfg.Chat.Store {
	case config.StoreRedis:
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return chat.NewRedisStore(rdb, a.cfg.Redis.KeyPrefix), nil
	case config.StoreSQL:
		conn, err := a.database()
		if err != nil {
			return nil, err
		}
		return chat.NewSQLStore(conn), nil
	case config.StoreMemory, "":
		return chat.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown chat store %q", a.cfg.Chat.Store)
	}
}
