package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go-gemini/internal/answer"
	"go-gemini/internal/prompt"
)

// ErrEmptyMessage is returned by Send when there is nothing to ask.
var ErrEmptyMessage = errors.New("message is required")

// Turn is one question and the answer shown for it. Failed answers are error texts.
type Turn struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UUID      string    `json:"id" gorm:"uniqueIndex;size:36"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Failed    bool      `json:"failed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store holds the transcript in insertion order. Implementations must be safe
// for concurrent use.
type Store interface {
	Append(ctx context.Context, turn Turn) error
	List(ctx context.Context) ([]Turn, error)
	Clear(ctx context.Context) error
}

// Service answers chat messages and records every exchange.
type Service struct {
	store       Store
	answerer    *answer.Answerer
	instruction string
	log         zerolog.Logger
}

func NewService(store Store, answerer *answer.Answerer, instruction string, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		answerer:    answerer,
		instruction: instruction,
		log:         logger,
	}
}

// Send asks the model about message and appends exactly one Turn, whether or not
// the model call succeeded.
func (s *Service) Send(ctx context.Context, message string) (Turn, error) {
	if message == "" {
		return Turn{}, ErrEmptyMessage
	}

	out := s.answerer.Answer(ctx, prompt.Chat(message, s.instruction))
	turn := Turn{
		UUID:      uuid.NewString(),
		Question:  message,
		Answer:    out.Text,
		Failed:    out.Failed(),
		CreatedAt: time.Now().UTC(),
	}
	// The exchange is recorded even if the requester has gone away.
	if err := s.store.Append(context.WithoutCancel(ctx), turn); err != nil {
		return Turn{}, err
	}

	s.log.Debug().Str("turn", turn.UUID).Bool("failed", turn.Failed).Msg("appended turn")
	return turn, nil
}

func (s *Service) Transcript(ctx context.Context) ([]Turn, error) {
	return s.store.List(ctx)
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("transcript cleared")
	return nil
}
