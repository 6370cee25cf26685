// Package guide answers questions about a single reference document, calling the
// model at most once per distinct question.
package guide

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"go-gemini/internal/answer"
	"go-gemini/internal/prompt"
)

type Options struct {
	Instruction string
	// CacheFailures keeps error answers too, so a failing question is not retried.
	CacheFailures bool
}

type Service struct {
	doc      Document
	answerer *answer.Answerer
	cache    Cache
	opts     Options
	log      zerolog.Logger

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness since the service was created.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

func NewService(doc Document, answerer *answer.Answerer, cache Cache, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		doc:      doc,
		answerer: answerer,
		cache:    cache,
		opts:     opts,
		log:      logger,
	}
}

// Ask returns the cached answer for question, computing it first if needed.
// An empty question yields an empty answer without calling the model.
func (s *Service) Ask(ctx context.Context, question string) string {
	if question == "" {
		return ""
	}

	if answer, ok := s.lookup(ctx, question); ok {
		s.hits.Add(1)
		return answer
	}

	// Identical in-flight questions share one model call. The shared call must not
	// be cut short when the first requester goes away.
	shared := context.WithoutCancel(ctx)
	leader := false
	v, _, _ := s.group.Do(question, func() (interface{}, error) {
		leader = true
		if answer, ok := s.lookup(shared, question); ok {
			s.hits.Add(1)
			return answer, nil
		}
		s.misses.Add(1)
		return s.compute(shared, question), nil
	})
	// Waiters on someone else's call got an answer without a model call of their own.
	if !leader {
		s.hits.Add(1)
	}
	return v.(string)
}

func (s *Service) lookup(ctx context.Context, question string) (string, bool) {
	answer, ok, err := s.cache.Get(ctx, question)
	if err != nil {
		s.log.Error().Err(err).Msg("answer cache lookup failed")
		return "", false
	}
	return answer, ok
}

func (s *Service) compute(ctx context.Context, question string) string {
	out := s.answerer.Answer(ctx, prompt.Guide(s.opts.Instruction, s.doc.Text, question))
	if out.Failed() && !s.opts.CacheFailures {
		return out.Text
	}

	stored, err := s.cache.PutIfAbsent(ctx, question, out.Text)
	if err != nil {
		s.log.Error().Err(err).Msg("answer cache store failed")
		return out.Text
	}
	s.log.Debug().Bool("failed", out.Failed()).Int("question_chars", len(question)).Msg("cached answer")
	return stored
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.cache.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Entries: n}, nil
}

// DocumentPath is the file the guide was loaded from.
func (s *Service) DocumentPath() string {
	return s.doc.Path
}
