// Package oracle wraps the generative model that estimates nutrition and
// proposes workout schedules. Model output is validated and normalized
// here; callers only ever see complete results or ErrOracle.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

var (
	// ErrOracle covers every failed estimation: transport, quota and
	// unusable model output alike.
	ErrOracle = errors.New("oracle failure")
	// ErrInvalidImage is returned for uploads that cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
)

// Request is one structured-output call.
type Request struct {
	Prompt string
	// Image is sent ahead of the prompt when set.
	Image  *InlineImage
	Schema *genai.Schema
}

// InlineImage is image bytes sent with a request.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Model produces a JSON document for a request.
type Model interface {
	GenerateJSON(ctx context.Context, req Request) ([]byte, error)
}

// Options tune an Adapter. Zero values take the defaults.
type Options struct {
	Timeout           time.Duration
	MaxImageDimension int
}

const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxImageDimension = 800
)

// Adapter turns model calls into normalized planner values.
type Adapter struct {
	model   Model
	timeout time.Duration
	maxDim  int
	log     *slog.Logger
}

func New(model Model, opts Options, log *slog.Logger) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxImageDimension <= 0 {
		opts.MaxImageDimension = DefaultMaxImageDimension
	}
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{model: model, timeout: opts.Timeout, maxDim: opts.MaxImageDimension, log: log}
}

func (a *Adapter) generate(ctx context.Context, op string, req Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.model.GenerateJSON(ctx, req)
	if err != nil {
		a.log.Warn("oracle call failed", "op", op, "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrOracle, op, err)
	}
	a.log.Debug("oracle call", "op", op, "duration", time.Since(start), "bytes", len(raw))
	return raw, nil
}

// Unconfigured is the Model used when no API key is set. Every call fails.
type Unconfigured struct{}

func (Unconfigured) GenerateJSON(context.Context, Request) ([]byte, error) {
	return nil, errors.New("no model configured: set GEMINI_API_KEY")
}
