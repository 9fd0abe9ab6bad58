package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	votingledger "parkpulse/contexts/governance/voting-ledger"
	postgresadapter "parkpulse/contexts/governance/voting-ledger/adapters/postgres"
	smtpadapter "parkpulse/contexts/governance/voting-ledger/adapters/smtp"
	workerapp "parkpulse/contexts/governance/voting-ledger/application/workers"
	"parkpulse/internal/platform/config"
	"parkpulse/internal/platform/db"
	"parkpulse/internal/platform/httpserver"
	"parkpulse/internal/platform/messaging"
	"parkpulse/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	ledger   votingledger.Module
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres       *db.Postgres
	outboxRelay    workerapp.OutboxRelay
	deadlineCloser workerapp.DeadlineCloser
	announcer      workerapp.ProposalAnnouncer
	relayInterval  time.Duration
	closerInterval time.Duration
	enableRelay    bool
	enableCloser   bool
	logger         *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	ledger, pg, err := buildLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.New(registry)

	server := httpserver.New(
		ledger,
		logger,
		normalizeAddr(cfg.HTTPPort),
		cfg.AdminAPIKey,
		ledgerMetrics,
		registry,
	)
	return &APIApp{
		server:   server,
		ledger:   ledger,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		// The worker shares ledger state with the API through the database.
		return nil, errors.New("POSTGRES_DSN is required")
	}

	ledger, pg, err := buildLedger(cfg, logger)
	if err != nil {
		return nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)
	bus := messaging.NewBus(logger)

	notifier := smtpadapter.NewNotifier(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SenderEmail,
		cfg.SenderPassword,
		cfg.NoticeEmails,
		cfg.AppURL,
		logger,
	)

	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxRelayBatchSize,
			Logger:    logger,
		},
		deadlineCloser: workerapp.DeadlineCloser{
			Proposals:   repo,
			Resolutions: ledger.Resolutions,
			Capability:  ledger.Capability,
			Clock:       postgresadapter.SystemClock{},
			Logger:      logger,
		},
		announcer: workerapp.ProposalAnnouncer{
			Subscriber:    bus,
			Dedup:         repo,
			Notifier:      notifier,
			Clock:         postgresadapter.SystemClock{},
			ConsumerGroup: cfg.AnnouncerConsumerGroup,
			DedupTTL:      cfg.AnnouncerDedupRetention,
			Disabled:      !cfg.EnableProposalAnnouncer,
			Logger:        logger,
		},
		relayInterval:  cfg.OutboxRelayInterval,
		closerInterval: cfg.DeadlineCloserInterval,
		enableRelay:    cfg.EnableOutboxRelay,
		enableCloser:   cfg.EnableDeadlineCloser,
		logger:         logger,
	}, nil
}

// buildLedger wires the ledger module over postgres when a DSN is configured
// and over the in-memory store otherwise.
func buildLedger(cfg config.Config, logger *slog.Logger) (votingledger.Module, *db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Info("no postgres dsn configured, using in-memory ledger",
			"event", "bootstrap_memory_ledger",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return votingledger.NewInMemoryModule(nil, logger), nil, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return votingledger.Module{}, nil, err
	}
	if err := pg.DB.AutoMigrate(postgresadapter.Models()...); err != nil {
		_ = pg.Close()
		return votingledger.Module{}, nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := votingledger.NewModule(votingledger.Dependencies{
		Proposals: repo,
		Ballots:   repo,
		Outbox:    repo,
		Clock:     postgresadapter.SystemClock{},
		IDGen:     postgresadapter.UUIDGenerator{},
		Logger:    logger,
	})
	return module, pg, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if err := a.ledger.Creates.AnnounceInitialized(ctx); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.announcer.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_interval", w.relayInterval.String(),
		"closer_interval", w.closerInterval.String(),
	)

	group, ctx := errgroup.WithContext(ctx)

	if w.enableRelay {
		group.Go(func() error {
			return runEvery(ctx, w.relayInterval, func(ctx context.Context) error {
				return w.outboxRelay.RunOnce(ctx)
			})
		})
	}
	if w.enableCloser {
		group.Go(func() error {
			return runEvery(ctx, w.closerInterval, func(ctx context.Context) error {
				_, err := w.deadlineCloser.RunOnce(ctx)
				return err
			})
		})
	}

	return group.Wait()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func runEvery(ctx context.Context, interval time.Duration, step func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := step(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
