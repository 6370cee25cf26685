package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Client wraps a provider with a per-call timeout and an optional circuit breaker.
type Client struct {
	gen     Generator
	breaker *CircuitBreaker
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient wraps gen. A zero timeout means no deadline beyond the caller's context;
// a nil breaker disables circuit breaking.
func NewClient(gen Generator, breaker *CircuitBreaker, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		gen:     gen,
		breaker: breaker,
		timeout: timeout,
		log:     logger,
	}
}

// Generate calls the provider. Returned errors are tagged with a failure category when known.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var reply *Reply
	call := func() error {
		var err error
		reply, err = c.gen.Generate(ctx, prompt, opts)
		return classifyCommon(err)
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Call(call)
	} else {
		err = call()
	}

	if err != nil {
		c.log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("generate failed")
		return nil, err
	}
	c.log.Debug().Dur("elapsed", time.Since(start)).Int("prompt_chars", len(prompt)).Msg("generate completed")
	return reply, nil
}

// Close releases the underlying provider.
func (c *Client) Close() error {
	return c.gen.Close()
}

// Breaker exposes the circuit breaker, nil when disabled.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

var _ Generator = (*Client)(nil)
