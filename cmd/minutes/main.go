package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/minutes/internal/api"
	"github.com/MikeSquared-Agency/minutes/internal/config"
	"github.com/MikeSquared-Agency/minutes/internal/gdocs"
	"github.com/MikeSquared-Agency/minutes/internal/hermes"
	"github.com/MikeSquared-Agency/minutes/internal/matcher"
	"github.com/MikeSquared-Agency/minutes/internal/processor"
	"github.com/MikeSquared-Agency/minutes/internal/slack"
	"github.com/MikeSquared-Agency/minutes/internal/store"
)

const usage = `usage:
  minutes [meeting-url-or-code]   process notes once and print the results as JSON
  minutes serve                   run the API, periodic scan and NATS trigger`

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		fmt.Fprintln(os.Stderr, usage)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(args) > 0 && args[0] == "serve" {
		serve(ctx, cancel, cfg)
		return
	}

	meetingURL := ""
	if len(args) > 0 {
		meetingURL = args[0]
	}
	if err := runOnce(ctx, cfg, meetingURL); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runOnce processes one batch and writes the results to stdout. Events are
// only published by the daemon.
func runOnce(ctx context.Context, cfg config.Config, meetingURL string) error {
	db, docs, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	poster := newPoster(cfg)
	proc := newProcessor(cfg, db, docs, nil, poster)

	results, err := proc.Run(ctx, processor.RunRequest{MeetingURL: meetingURL})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func serve(ctx context.Context, cancel context.CancelFunc, cfg config.Config) {
	slog.Info("minutes starting", "port", cfg.Port)

	db, docs, err := connect(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	poster := newPoster(cfg)
	proc := newProcessor(cfg, db, docs, hermesClient, poster)

	// Remote scan trigger
	if err := hermesClient.Subscribe(hermes.SubjectScanRequested, func(subject string, data []byte) {
		var req hermes.ScanRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				slog.Error("failed to parse scan request", "error", err)
				return
			}
		}
		slog.Info("scan requested", "meeting_url", req.MeetingURL)
		if _, err := proc.Run(ctx, processor.RunRequest{MeetingURL: req.MeetingURL}); err != nil {
			slog.Error("requested scan failed", "error", err)
		}
	}); err != nil {
		slog.Error("failed to subscribe to scan requests", "error", err)
		os.Exit(1)
	}

	// Periodic scan
	if cfg.ScanInterval > 0 {
		go scanLoop(ctx, proc, cfg.ScanInterval)
	} else {
		slog.Warn("periodic scan disabled")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, db, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"port":          cfg.Port,
		"scan_interval": cfg.ScanInterval.String(),
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("minutes ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	if err := hermesClient.Drain(); err != nil {
		slog.Warn("NATS drain error", "error", err)
	}
	slog.Info("minutes stopped")
}

func scanLoop(ctx context.Context, proc *processor.Processor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := proc.Run(ctx, processor.RunRequest{}); err != nil {
			slog.Error("scheduled scan failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func connect(ctx context.Context, cfg config.Config) (*store.Store, *gdocs.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CredentialsFile == "" {
		return nil, nil, fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required")
	}

	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read google credentials: %w", err)
	}
	docs, err := gdocs.NewClient(ctx, credentials, cfg.ImpersonateUser)
	if err != nil {
		return nil, nil, err
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database connected")
	return db, docs, nil
}

func newPoster(cfg config.Config) *slack.Poster {
	poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
	if poster.Enabled() {
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, digests go to the log")
	}
	return poster
}

func newProcessor(cfg config.Config, db *store.Store, docs *gdocs.Client, h *hermes.Client, poster *slack.Poster) *processor.Processor {
	var pub processor.Publisher
	if h != nil {
		pub = h
	}
	return processor.New(docs, db, matcher.New(db), pub, poster, processor.Options{
		FolderID:        cfg.DriveFolderID,
		NameFilter:      cfg.NameFilter,
		Concurrency:     cfg.Concurrency,
		DocumentTimeout: cfg.DocumentTimeout,
	}, slog.Default())
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
