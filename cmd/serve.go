package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/matchday-notifier/internal/api"
	"github.com/shaharia-lab/matchday-notifier/internal/config"
	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/dispatch"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/logger"
	"github.com/shaharia-lab/matchday-notifier/internal/metrics"
	"github.com/shaharia-lab/matchday-notifier/internal/notification"
	"github.com/shaharia-lab/matchday-notifier/internal/pipeline"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
	"github.com/shaharia-lab/matchday-notifier/internal/server"
	"github.com/shaharia-lab/matchday-notifier/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP server exposing the event and relay dispatch endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	log := logger.New(os.Stdout, cfg.SlogLevel())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store storage.NotificationStore
	if cfg.DBPath != "" {
		db, err := storage.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		defer func() { _ = db.Close() }()
		store = storage.NewSQLiteNotificationStore(db)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	provider := notification.NewSMTPProvider(notification.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		FromAddr:   cfg.FromEmail,
		Encryption: cfg.SMTPEncryption,
	})

	eventsPipeline := pipeline.New(pipeline.Config{
		Entry:        "events",
		Parse:        event.ParseEnvelope,
		Resolver:     directory.NewClient(cfg.DirectoryAPIURL, cfg.HTTPTimeout, log),
		Renderer:     render.Long,
		Dispatcher:   dispatch.NewEmailDispatcher(provider, log),
		EmptyMessage: "No recipients found",
		Logger:       log,
		Metrics:      m,
		Store:        store,
	})

	relayPipeline := pipeline.New(pipeline.Config{
		Entry:        "relay",
		Parse:        event.ParseDirect,
		Resolver:     pipeline.PayloadResolver{},
		Renderer:     render.Short,
		Dispatcher:   dispatch.NewRelayDispatcher(cfg.NotifyServiceURL, cfg.NotifyToken, cfg.HTTPTimeout, log),
		EmptyMessage: "No recipients to notify",
		Logger:       log,
		Metrics:      m,
		Store:        store,
	})

	apiSrv := api.New(eventsPipeline, relayPipeline, store, log)
	srv := server.New(apiSrv, registry, cfg.Port, log)

	fmt.Fprintf(os.Stderr, "Matchday notifier running on http://localhost:%d\n", cfg.Port)
	fmt.Fprintf(os.Stderr, "  POST /events         → event envelope, email fan-out\n")
	fmt.Fprintf(os.Stderr, "  POST /relay          → caller-supplied recipients, SMS relay\n")
	fmt.Fprintf(os.Stderr, "  GET  /notifications  → dispatch audit log\n")
	fmt.Fprintf(os.Stderr, "  GET  /health         → health check\n")

	return srv.Run(ctx)
}
