package pipeline

import (
	"log/slog"

	"github.com/dgallion1/hnsum/internal/config"
	"github.com/dgallion1/hnsum/internal/fetch"
	"github.com/dgallion1/hnsum/internal/inference"
)

// Deps is a fully wired pipeline and the clients behind it.
type Deps struct {
	Orchestrator *Orchestrator
	Stats        *inference.LLMStats
	Client       *inference.WorkersAIClient
	Fetcher      *fetch.Fetcher
}

// NewFromConfig builds the production pipeline from cfg.
func NewFromConfig(cfg config.Config, log *slog.Logger) *Deps {
	client := inference.NewWorkersAIClient(cfg.AIBaseURL, cfg.AccountID, cfg.APIToken, cfg.TextModel, cfg.ImageModel, cfg.InferenceTimeout)
	fetcher := fetch.NewFetcher(cfg.FetchTimeout, cfg.FetchUserAgent, cfg.FetchMaxBytes)
	stats := inference.NewLLMStats(cfg.StatsWindow)

	gw := NewGateway(client, GatewayConfig{
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.InferenceRetryDelay,
	}, stats, log)

	return &Deps{
		Orchestrator: NewOrchestrator(fetcher, gw, cfg.TopComments, log),
		Stats:        stats,
		Client:       client,
		Fetcher:      fetcher,
	}
}

// Close releases idle connections held by the clients.
func (d *Deps) Close() {
	d.Client.Close()
	d.Fetcher.Close()
}
