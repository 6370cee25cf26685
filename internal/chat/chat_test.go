package chat

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gemini/internal/answer"
	"go-gemini/internal/llm"
)

type scriptedGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (*llm.Reply, error)
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (*llm.Reply, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.reply(prompt)
}

func (g *scriptedGenerator) Close() error { return nil }

func replyWith(text string) func(string) (*llm.Reply, error) {
	return func(string) (*llm.Reply, error) { return &llm.Reply{Text: &text}, nil }
}

func newService(t *testing.T, store Store, gen llm.Generator) *Service {
	t.Helper()
	a := answer.New(gen, "Gemini AI", llm.GenerateOptions{}, zerolog.Nop())
	return NewService(store, a, "Please answer in two sentences or less.", zerolog.Nop())
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&Turn{}))
	return db
}

func TestService_SendAppendsTurn(t *testing.T) {
	gen := &scriptedGenerator{reply: replyWith("4.")}
	svc := newService(t, NewMemoryStore(), gen)
	ctx := context.Background()

	turn, err := svc.Send(ctx, "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "What is 2+2?", turn.Question)
	assert.Equal(t, "4.", turn.Answer)
	assert.False(t, turn.Failed)
	assert.Len(t, turn.UUID, 36)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "What is 2+2?. Please answer in two sentences or less.", gen.prompts[0])

	turns, err := svc.Transcript(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, turn.UUID, turns[0].UUID)
}

func TestService_FailureStillAppends(t *testing.T) {
	gen := &scriptedGenerator{reply: func(string) (*llm.Reply, error) {
		return nil, &llm.Error{Kind: llm.ErrQuota, Err: errors.New("429")}
	}}
	svc := newService(t, NewMemoryStore(), gen)

	turn, err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, turn.Failed)
	assert.Contains(t, turn.Answer, "Error")

	turns, _ := svc.Transcript(context.Background())
	assert.Len(t, turns, 1)
}

func TestService_EmptyMessage(t *testing.T) {
	gen := &scriptedGenerator{reply: replyWith("unused")}
	svc := newService(t, NewMemoryStore(), gen)

	_, err := svc.Send(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, gen.prompts)

	turns, _ := svc.Transcript(context.Background())
	assert.Empty(t, turns)
}

func TestService_Clear(t *testing.T) {
	svc := newService(t, NewMemoryStore(), &scriptedGenerator{reply: replyWith("ok")})
	ctx := context.Background()

	_, _ = svc.Send(ctx, "one")
	_, _ = svc.Send(ctx, "two")
	require.NoError(t, svc.Clear(ctx))

	turns, err := svc.Transcript(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

// storeContract checks the ordering and clear behaviour every backend must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, store.Append(ctx, Turn{UUID: q + "-id", Question: q, Answer: "a-" + q}))
	}
	turns, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].Question)
	assert.Equal(t, "third", turns[2].Question)
	assert.Equal(t, "a-second", turns[1].Answer)

	require.NoError(t, store.Clear(ctx))
	turns, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)

	require.NoError(t, store.Append(ctx, Turn{UUID: "after-clear", Question: "again"}))
	turns, _ = store.List(ctx)
	assert.Len(t, turns, 1)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ListIsCopy(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Append(context.Background(), Turn{Question: "q"})
	turns, _ := store.List(context.Background())
	turns[0].Question = "mutated"

	again, _ := store.List(context.Background())
	assert.Equal(t, "q", again[0].Question)
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	svc := newService(t, NewMemoryStore(), &scriptedGenerator{reply: replyWith("ok")})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Send(context.Background(), "same")
		}()
	}
	wg.Wait()

	turns, _ := svc.Transcript(context.Background())
	assert.Len(t, turns, 50)
}

func TestSQLStore(t *testing.T) {
	storeContract(t, NewSQLStore(openSQLite(t)))
}

func TestSQLStore_WithService(t *testing.T) {
	svc := newService(t, NewSQLStore(openSQLite(t)), &scriptedGenerator{reply: replyWith("4.")})
	turn, err := svc.Send(context.Background(), "What is 2+2?")
	require.NoError(t, err)

	turns, err := svc.Transcript(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, turn.UUID, turns[0].UUID)
	assert.Equal(t, "4.", turns[0].Answer)
}

// Only runs against a real redis; set TEST_REDIS_ADDR to enable.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis store test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer rdb.Close()

	store := NewRedisStore(rdb, "go-gemini-test")
	require.NoError(t, store.Clear(context.Background()))
	storeContract(t, store)
}

func TestSQLStore_CanceledRequestStillRecordsTurn(t *testing.T) {
	gen := &scriptedGenerator{reply: func(string) (*llm.Reply, error) {
		return nil, &llm.Error{Kind: llm.ErrNetwork, Err: context.Canceled}
	}}
	svc := newService(t, NewSQLStore(openSQLite(t)), gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	turn, err := svc.Send(ctx, "What is 2+2?")
	require.NoError(t, err)
	assert.True(t, turn.Failed)

	turns, err := svc.Transcript(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "What is 2+2?", turns[0].Question)
}
