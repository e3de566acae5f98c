package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/hnsum/internal/inference"
	"github.com/dgallion1/hnsum/internal/metrics"
)

// Generator is the generative model capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (io.ReadCloser, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// GatewayConfig controls the retry loop.
type GatewayConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// Gateway builds prompts and invokes the model with bounded retry.
type Gateway struct {
	gen   Generator
	cfg   GatewayConfig
	stats *inference.LLMStats
	log   *slog.Logger
}

// NewGateway creates a Gateway. stats may be nil.
func NewGateway(gen Generator, cfg GatewayConfig, stats *inference.LLMStats, log *slog.Logger) *Gateway {
	return &Gateway{gen: gen, cfg: cfg, stats: stats, log: log}
}

// Complete runs the summary prompt in non-streaming mode.
func (g *Gateway) Complete(ctx context.Context, heading string, comments []string) (string, error) {
	prompt := inference.BuildSummaryPrompt(heading, comments)
	out := retry(ctx, g.cfg.MaxAttempts, g.cfg.RetryDelay, func(ctx context.Context) (string, error) {
		return timed(g, ctx, "text", func(ctx context.Context) (string, error) {
			return g.gen.Generate(ctx, prompt)
		})
	}, g.onFailure("text", g.cfg.MaxAttempts))
	return finish(g, "text", out)
}

// Stream runs the summary prompt in streaming mode and returns the raw
// token-event stream. Retries cover opening the stream only.
func (g *Gateway) Stream(ctx context.Context, heading string, comments []string) (io.ReadCloser, error) {
	prompt := inference.BuildSummaryPrompt(heading, comments)
	out := retry(ctx, g.cfg.MaxAttempts, g.cfg.RetryDelay, func(ctx context.Context) (io.ReadCloser, error) {
		return timed(g, ctx, "stream", func(ctx context.Context) (io.ReadCloser, error) {
			return g.gen.GenerateStream(ctx, prompt)
		})
	}, g.onFailure("stream", g.cfg.MaxAttempts))
	if out.Succeeded && out.Value == nil {
		g.log.Error("model returned no stream and no error")
		return nil, ErrInferenceUnavailable
	}
	return finish(g, "stream", out)
}

// Image runs the illustration prompt once; image generation is not retried.
func (g *Gateway) Image(ctx context.Context, heading string) ([]byte, error) {
	prompt := inference.BuildImagePrompt(heading)
	out := retry(ctx, 1, 0, func(ctx context.Context) ([]byte, error) {
		return timed(g, ctx, "image", func(ctx context.Context) ([]byte, error) {
			return g.gen.GenerateImage(ctx, prompt)
		})
	}, g.onFailure("image", 1))
	return finish(g, "image", out)
}

func (g *Gateway) onFailure(mode string, maxAttempts int) func(int, error) {
	return func(attempt int, err error) {
		attrs := []any{
			"mode", mode,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		}
		var se *inference.StatusError
		if errors.As(err, &se) {
			attrs = append(attrs, "status", se.StatusCode, "transient", se.Transient())
		}
		g.log.Warn("inference attempt failed", attrs...)
	}
}

func finish[T any](g *Gateway, mode string, out RetryOutcome[T]) (T, error) {
	v, err := out.Result()
	switch {
	case err != nil:
		g.log.Error("inference failed", "mode", mode, "attempts", out.Attempts, "error", err)
	case out.Attempts > 1:
		g.log.Info("inference succeeded after retry", "mode", mode, "attempts", out.Attempts)
	}
	return v, err
}

func timed[T any](g *Gateway, ctx context.Context, mode string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fn(ctx)
	d := time.Since(start)
	if g.stats != nil {
		g.stats.Record(d, err)
	}
	metrics.RecordInference(mode, d.Seconds(), err)
	return v, err
}
