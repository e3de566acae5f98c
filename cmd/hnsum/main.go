// Package main provides the hnsum command-line client. It runs the same
// pipeline as the server against a single discussion URL.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/hnsum/internal/api"
	"github.com/dgallion1/hnsum/internal/config"
	"github.com/dgallion1/hnsum/internal/pipeline"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "hnsum"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Summarize Hacker News discussions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(commentsCmd(&logLevel), summarizeCmd(&logLevel), imageCmd(&logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	return cmd
}

func commentsCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <url>",
		Short: "Print every sanitized comment as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(*logLevel, args[0], func(ctx context.Context, deps *pipeline.Deps, target string) error {
				comments, err := deps.Orchestrator.Comments(ctx, target)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]string{"comments": comments})
			})
		},
	}
}

func summarizeCmd(logLevel *string) *cobra.Command {
	var streaming bool
	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize the top comments of a discussion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(*logLevel, args[0], func(ctx context.Context, deps *pipeline.Deps, target string) error {
				out := cmd.OutOrStdout()
				if streaming {
					if err := deps.Orchestrator.StreamSummary(ctx, target, out); err != nil {
						return err
					}
					_, err := fmt.Fprintln(out)
					return err
				}
				text, err := deps.Orchestrator.Summarize(ctx, target)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, text)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&streaming, "stream", false, "Print tokens as the model produces them")
	return cmd
}

func imageCmd(logLevel *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "image <url>",
		Short: "Generate an illustration for the discussion title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(*logLevel, args[0], func(ctx context.Context, deps *pipeline.Deps, target string) error {
				img, err := deps.Orchestrator.Image(ctx, target)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, img, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(img), outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "image.png", "Output file")
	return cmd
}

// withPipeline loads configuration, validates the target and runs fn with
// a context cancelled on SIGINT or SIGTERM.
func withPipeline(logLevel, rawURL string, fn func(context.Context, *pipeline.Deps, string) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(logLevel)}))

	target, err := api.ValidateTargetURL(rawURL, cfg.AllowedURLPrefix)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := pipeline.NewFromConfig(cfg, log)
	defer deps.Close()
	return fn(ctx, deps, target)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
