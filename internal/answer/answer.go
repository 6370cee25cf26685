// Package answer turns a prompt into the text shown to the user. Provider
// failures become readable error answers instead of propagating to handlers.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"go-gemini/internal/llm"
)

// Outcome is the text to display and, when the call failed, the underlying error.
type Outcome struct {
	Text string
	Err  error
}

// Failed reports whether the model could not be reached or refused the request.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

type Answerer struct {
	gen        llm.Generator
	service    string
	opts       llm.GenerateOptions
	extractors []llm.Extractor
	log        zerolog.Logger
}

// New returns an Answerer. service is the provider name used in error answers.
func New(gen llm.Generator, service string, opts llm.GenerateOptions, logger zerolog.Logger) *Answerer {
	return &Answerer{
		gen:        gen,
		service:    service,
		opts:       opts,
		extractors: llm.DefaultExtractors,
		log:        logger,
	}
}

// WithExtractors overrides the order in which reply shapes are tried.
func (a *Answerer) WithExtractors(extractors ...llm.Extractor) *Answerer {
	a.extractors = extractors
	return a
}

// Answer calls the model once. It never returns an empty Outcome on failure.
func (a *Answerer) Answer(ctx context.Context, prompt string) Outcome {
	reply, err := a.gen.Generate(ctx, prompt, a.opts)
	if err != nil {
		return Outcome{Text: a.errorText(err), Err: err}
	}

	text := llm.Unwrap(reply, a.extractors...)
	if text == llm.ParseErrorAnswer {
		a.log.Warn().Bool("nil_reply", reply == nil).Msg("could not extract text from model reply")
	}
	return Outcome{Text: text}
}

func (a *Answerer) errorText(err error) string {
	kind := llm.KindOf(err)
	event := a.log.Warn()
	if kind == nil {
		event = a.log.Error()
	}
	event.Err(err).Str("service", a.service).Msg("model call failed")

	switch {
	case errors.Is(kind, llm.ErrNetwork):
		return fmt.Sprintf("Error: Could not get a response from %s. Please try again. (%v)", a.service, err)
	case errors.Is(kind, llm.ErrQuota):
		return fmt.Sprintf("Error: %s quota exceeded. Please try again later. (%v)", a.service, err)
	case errors.Is(kind, llm.ErrInvalidArgument):
		return fmt.Sprintf("Error: %s rejected the request. (%v)", a.service, err)
	case errors.Is(kind, llm.ErrBlocked):
		return fmt.Sprintf("Error: %s declined to answer this question. (%v)", a.service, err)
	case errors.Is(kind, llm.ErrUnavailable):
		return fmt.Sprintf("Error: %s is unavailable right now. Please try again. (%v)", a.service, err)
	default:
		return fmt.Sprintf("Error: Something went wrong while answering. (%v)", err)
	}
}
