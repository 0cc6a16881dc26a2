package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfit/internal/client"
	"github.com/amishk599/jobfit/internal/config"
	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/render"
	"github.com/amishk599/jobfit/internal/session"
	"github.com/amishk599/jobfit/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobfit",
	Short: "Job posting assistant",
	Long:  "jobfit analyzes job postings against your résumé, drafts cover letters and tailors your résumé.",
	// Default to the interactive session.
	RunE:          runSession,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBFIT_CONFIG env var or ./jobfit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(ctx context.Context, cfg config.StorageConfig) (model.CacheStore, error) {
	switch cfg.Backend {
	case "redis":
		return store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(cfg.Path)
	}
}

// app is everything a command needs to drive a session.
type app struct {
	cfg   *config.Config
	store model.CacheStore
	sess  *session.Session
}

func (a *app) Close() error {
	return a.store.Close()
}

// newApp loads config, opens the store and builds the session. progress may
// be nil.
func newApp(ctx context.Context, logger *slog.Logger, progress session.Progress) (*app, error) {
	cfg, err := config.LoadOrEnv(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("config loaded", "base_url", cfg.API.BaseURL, "storage", cfg.Storage.Backend, "output_dir", cfg.OutputDir)

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}

	c := client.New(client.Options{
		BaseURL:      cfg.API.BaseURL,
		ClientSecret: cfg.API.ClientSecret,
		HTTPClient:   &http.Client{Timeout: cfg.API.Timeout},
		Logger:       logger,
	})

	sess := session.New(session.Options{
		Store:      st,
		Backend:    c,
		Downloader: render.NewFileDownloader(cfg.OutputDir),
		Progress:   progress,
		Logger:     logger,
	})
	return &app{cfg: cfg, store: st, sess: sess}, nil
}

// newCLIApp builds an app for a one-shot command: logs go to stderr and the
// resulting screen is printed to stdout.
func newCLIApp(cmd *cobra.Command) (*app, error) {
	logger := setupLogger(os.Stderr, debug)
	return newApp(cmd.Context(), logger, render.NewLogRenderer(logger))
}

func printView(w io.Writer, v model.View) {
	fmt.Fprintln(w, render.Text(v, 100))
}
