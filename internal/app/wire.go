package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/tempowatch/sentinel/internal/blob/s3"
	"github.com/tempowatch/sentinel/internal/cache/redis"
	"github.com/tempowatch/sentinel/internal/config"
	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/monitor"
	"github.com/tempowatch/sentinel/internal/notify"
	"github.com/tempowatch/sentinel/internal/platform/tempo"
	"github.com/tempowatch/sentinel/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Orderbook sources
	Live     domain.BookSource
	Fallback domain.BookSource

	// Persistence and messaging
	Store  domain.MetricsStore
	Alerts domain.AlertStore
	Cache  domain.SnapshotCache
	Bus    domain.SignalBus

	// Report archival; nil when no S3 bucket is configured.
	Archive domain.ReportArchive

	// Notifications
	Notifier *notify.Notifier

	// Runtime-tunable alert thresholds, shared between the monitor loop and
	// the API layer.
	Thresholds *monitor.ThresholdManager
}

// needsChain returns true for modes that fetch live on-chain orderbooks.
func needsChain(mode string) bool {
	switch mode {
	case "monitor", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Thresholds: monitor.NewThresholdManager(cfg.Thresholds),
	}

	mode := strings.ToLower(cfg.Mode)

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	deps.Store = postgres.NewMetricsStore(pgClient)
	deps.Alerts = postgres.NewAlertStore(pgClient)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Cache = redis.NewSnapshotCache(redisClient)
	deps.Bus = redis.NewSignalBus(redisClient)

	// --- S3 report archive (optional) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		deps.Archive = s3blob.NewReportArchive(s3Client)
	}

	// --- Orderbook sources ---
	deps.Fallback = tempo.NewGenerator()
	if needsChain(mode) {
		live, err := tempo.NewClient(ctx, tempo.ClientConfig{
			RPCURL:           cfg.Chain.RPCURL,
			DexAddress:       cfg.Chain.DexAddress,
			MulticallAddress: cfg.Chain.MulticallAddress,
			TokenAddress:     cfg.Chain.TokenAddress,
			ScanMinTick:      cfg.Chain.ScanMinTick,
			ScanMaxTick:      cfg.Chain.ScanMaxTick,
			TickSpacing:      cfg.Chain.TickSpacing,
			FlipSampleSize:   cfg.Chain.FlipSampleSize,
			RetryMax:         cfg.Chain.RetryMax,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: chain client: %w", err)
		}
		closers = append(closers, live.Close)
		deps.Live = live
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Types, logger)

	return deps, cleanup, nil
}
