package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/hnsum/internal/inference"
	"github.com/dgallion1/hnsum/internal/metrics"
	"github.com/dgallion1/hnsum/internal/parser"
	"github.com/dgallion1/hnsum/internal/stream"
)

// Fetcher retrieves the raw text of a discussion page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Orchestrator runs the fetch, extract, sanitize and inference stages for
// each entry point. It holds no per-request state.
type Orchestrator struct {
	fetcher   Fetcher
	sanitizer *parser.Sanitizer
	gateway   *Gateway
	topN      int
	log       *slog.Logger
}

// NewOrchestrator wires the pipeline. topN <= 0 uses the default of five.
func NewOrchestrator(fetcher Fetcher, gateway *Gateway, topN int, log *slog.Logger) *Orchestrator {
	if topN <= 0 {
		topN = inference.DefaultTopComments
	}
	return &Orchestrator{
		fetcher:   fetcher,
		sanitizer: parser.NewSanitizer(),
		gateway:   gateway,
		topN:      topN,
		log:       log,
	}
}

// Comments returns every sanitized comment on the page, without inference.
func (o *Orchestrator) Comments(ctx context.Context, url string) ([]string, error) {
	content, err := o.content(ctx, url)
	if err != nil {
		return nil, err
	}
	return content.Comments, nil
}

// Summarize returns a complete summary of the page's top comments.
func (o *Orchestrator) Summarize(ctx context.Context, url string) (string, error) {
	content, err := o.content(ctx, url)
	if err != nil {
		return "", err
	}
	return o.gateway.Complete(ctx, content.HeadingText(), inference.TopComments(content.Comments, o.topN))
}

// OpenSummaryStream runs the pipeline up to the model's raw token-event
// stream. The caller relays and closes it.
func (o *Orchestrator) OpenSummaryStream(ctx context.Context, url string) (io.ReadCloser, error) {
	content, err := o.content(ctx, url)
	if err != nil {
		return nil, err
	}
	return o.gateway.Stream(ctx, content.HeadingText(), inference.TopComments(content.Comments, o.topN))
}

// StreamSummary writes the summary text to dst as tokens arrive.
func (o *Orchestrator) StreamSummary(ctx context.Context, url string, dst io.Writer) error {
	src, err := o.OpenSummaryStream(ctx, url)
	if err != nil {
		return err
	}
	defer src.Close()

	n, err := stream.Relay(ctx, src, dst)
	metrics.RecordStreamedTokens(n)
	if err != nil {
		return fmt.Errorf("relay summary: %w", err)
	}
	return nil
}

// Image returns an illustration for the page title.
func (o *Orchestrator) Image(ctx context.Context, url string) ([]byte, error) {
	raw, err := o.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	heading, err := parser.ExtractHeading(raw)
	if err != nil {
		return nil, err
	}
	clean := parser.SanitizedContent{Heading: o.sanitizer.Sanitize(heading)}
	return o.gateway.Image(ctx, clean.HeadingText())
}

func (o *Orchestrator) content(ctx context.Context, url string) (parser.SanitizedContent, error) {
	raw, err := o.fetch(ctx, url)
	if err != nil {
		return parser.SanitizedContent{}, err
	}
	extracted, err := parser.Extract(raw)
	if err != nil {
		o.log.Info("content not found", "url", url, "missing", err.Error())
		return parser.SanitizedContent{}, err
	}
	content := o.sanitizer.SanitizeContent(extracted)
	o.log.Debug("extracted content", "url", url, "comments", len(content.Comments))
	return content, nil
}

func (o *Orchestrator) fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	raw, err := o.fetcher.Fetch(ctx, url)
	metrics.RecordFetch(time.Since(start).Seconds(), err)
	if err != nil {
		o.log.Warn("fetch failed", "url", url, "error", err)
		return "", err
	}
	return raw, nil
}
