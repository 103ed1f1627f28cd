// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textgen calls generative-AI text APIs. Each Generator is bound to
// one model; Fallback tries an ordered list of them and moves on only when a
// model reports it is overloaded or unavailable.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/seo-engine/pkg/types"
)

var (
	// ErrUnavailable marks a temporary condition (rate limit, overload,
	// server error, network timeout) under which another model may succeed.
	ErrUnavailable = errors.New("model unavailable")

	// ErrAllModelsUnavailable is returned when every model in a Fallback
	// reported ErrUnavailable.
	ErrAllModelsUnavailable = errors.New("all models unavailable")

	// ErrEmptyResponse is returned when a model answers with no text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrNoJSON is returned by ExtractJSON when the text holds no object.
	ErrNoJSON = errors.New("no JSON object in response")
)

// Request is one prompt.
type Request struct {
	System string
	Prompt string
	// JSON asks the model to answer with a single JSON object.
	JSON bool
	// MaxTokens bounds the answer; 0 uses the generator's default.
	MaxTokens int
}

// Generator produces text for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// StatusError is an API failure classified by HTTP status.
type StatusError struct {
	Model  string
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %v", e.Model, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Is reports ErrUnavailable for retryable statuses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable && retryableStatus(e.Status)
}

// 529 is the Anthropic API's "overloaded" status.
const statusOverloaded = 529

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		statusOverloaded:
		return true
	}
	return false
}

// IsRetryable reports whether another model might succeed where err failed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Fallback tries Generators in order.
type Fallback struct {
	Generators []Generator

	// Retryable classifies errors; nil means IsRetryable.
	Retryable func(error) bool

	Logger *zap.Logger
}

// NewFallback returns a Fallback over gens.
func NewFallback(logger *zap.Logger, gens ...Generator) *Fallback {
	return &Fallback{Generators: gens, Logger: logger}
}

// Name lists the underlying generators.
func (f *Fallback) Name() string {
	names := make([]string, len(f.Generators))
	for i, g := range f.Generators {
		names[i] = g.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

// Generate returns the first successful answer. A non-retryable error or a
// done context ends the search immediately. When every generator fails
// with a retryable error the result wraps ErrAllModelsUnavailable.
func (f *Fallback) Generate(ctx context.Context, req Request) (string, error) {
	retryable := f.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for i, g := range f.Generators {
		out, err := g.Generate(ctx, req)
		if err == nil {
			if i > 0 {
				logger.Info("fallback model answered", zap.String("model", g.Name()), zap.Int("position", i))
			}
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", g.Name(), ctxErr)
		}
		if !retryable(err) {
			return "", fmt.Errorf("%s: %w", g.Name(), err)
		}
		logger.Warn("model unavailable, trying next", zap.String("model", g.Name()), zap.Error(err))
		lastErr = err
	}

	if lastErr == nil {
		return "", fmt.Errorf("%w: no models configured", ErrAllModelsUnavailable)
	}
	return "", fmt.Errorf("%w (last error: %v)", ErrAllModelsUnavailable, lastErr)
}

// New builds a Fallback over cfg.Models for cfg.Provider. httpClient may be
// nil.
func New(cfg types.AIConfig, httpClient *http.Client, logger *zap.Logger) (*Fallback, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key for provider %q", cfg.Provider)
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("no models configured")
	}

	gens := make([]Generator, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		switch cfg.Provider {
		case types.ProviderAnthropic, "":
			gens = append(gens, NewAnthropic(cfg, m, httpClient))
		case types.ProviderOpenAI:
			gens = append(gens, NewOpenAI(cfg, m, httpClient))
		default:
			return nil, fmt.Errorf("unknown AI provider %q (want anthropic or openai)", cfg.Provider)
		}
	}
	return NewFallback(logger, gens...), nil
}

// jsonInstruction is appended to the system prompt in JSON mode for APIs
// without a native JSON response format.
const jsonInstruction = "Respond with a single JSON object and nothing else."

func systemPrompt(req Request) string {
	if !req.JSON {
		return req.System
	}
	if req.System == "" {
		return jsonInstruction
	}
	return req.System + "\n\n" + jsonInstruction
}
