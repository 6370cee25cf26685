package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gemini/internal/config"
)

type stubGenerator struct {
	calls  atomic.Int32
	fn     func(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error)
	closed bool
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error) {
	s.calls.Add(1)
	return s.fn(ctx, prompt, opts)
}

func (s *stubGenerator) Close() error {
	s.closed = true
	return nil
}

func TestClient_PassesThroughReply(t *testing.T) {
	stub := &stubGenerator{fn: func(_ context.Context, prompt string, opts GenerateOptions) (*Reply, error) {
		assert.Equal(t, "What is 2+2?. Be brief", prompt)
		assert.Equal(t, int32(256), opts.MaxOutputTokens)
		return &Reply{Text: strPtr("4.")}, nil
	}}
	c := NewClient(stub, nil, 0, zerolog.Nop())

	reply, err := c.Generate(context.Background(), "What is 2+2?. Be brief", GenerateOptions{MaxOutputTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "4.", Unwrap(reply))

	require.NoError(t, c.Close())
	assert.True(t, stub.closed)
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	stub := &stubGenerator{fn: func(ctx context.Context, _ string, _ GenerateOptions) (*Reply, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewClient(stub, nil, 20*time.Millisecond, zerolog.Nop())

	_, err := c.Generate(context.Background(), "slow", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_BreakerStopsCalls(t *testing.T) {
	stub := &stubGenerator{fn: func(context.Context, string, GenerateOptions) (*Reply, error) {
		return nil, tag(ErrUnavailable, errors.New("backend down"))
	}}
	breaker := NewCircuitBreaker(2, time.Minute, zerolog.Nop())
	c := NewClient(stub, breaker, 0, zerolog.Nop())

	for i := 0; i < 4; i++ {
		_, err := c.Generate(context.Background(), "q", GenerateOptions{})
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(2), stub.calls.Load())
	assert.Same(t, breaker, c.Breaker())
	assert.Equal(t, StateOpen, c.Breaker().State())
}

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"4.","done":true}` + "\n"))
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(srv.URL, "llama3.2", zerolog.Nop())
	require.NoError(t, err)

	reply, err := p.Generate(context.Background(), "What is 2+2?", GenerateOptions{MaxOutputTokens: 16, Temperature: Temperature(0.2)})
	require.NoError(t, err)
	require.NotNil(t, reply.Text)
	assert.Equal(t, "4.", *reply.Text)
	assert.Equal(t, "4.", Unwrap(reply))
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewFromConfig(context.Background(), config.LLMConfig{Provider: "openai"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewFromConfig_Ollama(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: config.ProviderOllama,
		Model:    "llama3.2",
		Timeout:  time.Second,
	}
	cfg.Ollama.Host = "http://127.0.0.1:11434"
	cfg.Breaker.Enabled = true
	cfg.Breaker.FailureThreshold = 3

	c, err := NewFromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, c.Breaker())
	assert.Equal(t, "Ollama", ServiceName(cfg.Provider))
	assert.Equal(t, "Gemini AI", ServiceName(config.ProviderGemini))
}

func TestClient_CallerCancelDoesNotOpenBreaker(t *testing.T) {
	healthy := false
	stub := &stubGenerator{fn: func(ctx context.Context, _ string, _ GenerateOptions) (*Reply, error) {
		if healthy {
			return &Reply{Text: strPtr("4.")}, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	breaker := NewCircuitBreaker(5, time.Minute, zerolog.Nop())
	c := NewClient(stub, breaker, time.Minute, zerolog.Nop())

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Generate(ctx, "q", GenerateOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	}

	healthy = true
	reply, err := c.Generate(context.Background(), "What is 2+2?", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "4.", Unwrap(reply))
	assert.Equal(t, StateClosed, breaker.State())
}
