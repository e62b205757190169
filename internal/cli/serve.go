package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/pipeline"
	"github.com/ppiankov/truthquest/internal/server"
)

var (
	serveAddr  string
	dailyQuota int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Truth Quest HTTP API",
	Long: `Serve exposes the pipeline over HTTP for the web frontend:
  GET  /api/health
  POST /api/transcription   {"youtubeUrl": "..."}
  POST /api/extract-facts   {"transcript": "..."}
  POST /api/analyze         {"transcript": "..." | "youtubeUrl": "...", "mode": "sample|full"}

Analyses are limited per X-User-ID header (or client IP) per day when
--daily-quota is set. Counts are kept in redis when cache.redis_url is
configured, otherwise in memory.

Example:
  truthquest serve --addr :3001
  truthquest serve --daily-quota 10`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().IntVar(&dailyQuota, "daily-quota", -1, "analyses per identity per day; 0 disables (overrides server.daily_quota)")
	serveCmd.Flags().StringVar(&transcriptsDir, "transcripts-dir", "", "directory of stored transcripts (overrides transcripts.dir)")
	addRunFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, p, err := buildPipeline()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if dailyQuota >= 0 {
		cfg.Server.DailyQuota = dailyQuota
	}

	quota, err := newQuotaGate(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !skipPreflight {
		for _, s := range p.Capabilities(ctx) {
			if !s.Available {
				fmt.Fprintf(os.Stderr, "Warning: %s model (%s) is not reachable\n", s.Role, s.Provider)
			}
		}
	}

	router := server.New(cfg.Server, p, quota, os.Stderr)

	fmt.Fprintf(os.Stderr, "Truth Quest API listening on %s\n", cfg.Server.Addr)
	if err := server.Serve(ctx, cfg.Server.Addr, router); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Server stopped\n")
	return nil
}

func newQuotaGate(cfg *model.Config) (pipeline.QuotaGate, error) {
	switch {
	case cfg.Server.DailyQuota <= 0:
		return pipeline.AllowAll{}, nil
	case cfg.Cache.RedisURL != "":
		q, err := pipeline.NewRedisQuota(cfg.Cache.RedisURL, cfg.Server.DailyQuota)
		if err != nil {
			return nil, fmt.Errorf("quota: %w", err)
		}
		return q, nil
	default:
		return pipeline.NewMemoryQuota(cfg.Server.DailyQuota), nil
	}
}
