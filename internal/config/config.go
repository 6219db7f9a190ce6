// Package config defines the top-level configuration for the sentinel and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tempowatch/sentinel/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SENTINEL_* environment
// variables.
type Config struct {
	Chain      ChainConfig            `toml:"chain"`
	Monitor    MonitorConfig          `toml:"monitor"`
	Thresholds domain.AlertThresholds `toml:"thresholds"`
	Postgres   PostgresConfig         `toml:"postgres"`
	Redis      RedisConfig            `toml:"redis"`
	S3         S3Config               `toml:"s3"`
	Server     ServerConfig           `toml:"server"`
	Notify     NotifyConfig           `toml:"notify"`
	Mode       string                 `toml:"mode"`
	LogLevel   string                 `toml:"log_level"`
}

// ChainConfig holds RPC endpoint and on-chain contract parameters for the
// live orderbook source.
type ChainConfig struct {
	RPCURL           string `toml:"rpc_url"`
	DexAddress       string `toml:"dex_address"`
	MulticallAddress string `toml:"multicall_address"`
	TokenAddress     string `toml:"token_address"`
	ScanMinTick      int    `toml:"scan_min_tick"`
	ScanMaxTick      int    `toml:"scan_max_tick"`
	TickSpacing      int    `toml:"tick_spacing"`
	FlipSampleSize   int    `toml:"flip_sample_size"`
	RetryMax         uint64 `toml:"retry_max"`
}

// MonitorConfig holds the analysis loop parameters.
type MonitorConfig struct {
	Pair          string   `toml:"pair"`
	Interval      duration `toml:"interval"`
	CacheTTL      duration `toml:"cache_ttl"`
	FallbackAfter int      `toml:"fallback_after"`
	HistoryKeep   int      `toml:"history_keep"`
	ArchiveEvery  duration `toml:"archive_every"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Types             []string `toml:"types"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "3s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "3s" or "5m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:         "http://localhost:8545",
			ScanMinTick:    -500,
			ScanMaxTick:    500,
			TickSpacing:    10,
			FlipSampleSize: 30,
			RetryMax:       3,
		},
		Monitor: MonitorConfig{
			Pair:          "AlphaUSD-PathUSD",
			Interval:      duration{3 * time.Second},
			CacheTTL:      duration{2 * time.Second},
			FallbackAfter: 3,
			HistoryKeep:   10_000,
			ArchiveEvery:  duration{24 * time.Hour},
		},
		Thresholds: domain.DefaultThresholds(),
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "sentinel",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "sentinel-reports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Types: []string{"psi_critical", "liquidity_cliff", "peg_deviation", "spread_widening"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
	"mock":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full, mock)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Chain endpoints are only required when the live source is in play.
	needsChain := c.Mode == "monitor" || c.Mode == "full"
	if needsChain {
		if c.Chain.RPCURL == "" {
			errs = append(errs, "chain: rpc_url must not be empty for mode "+c.Mode)
		}
		if c.Chain.DexAddress == "" {
			errs = append(errs, "chain: dex_address must not be empty for mode "+c.Mode)
		}
		if c.Chain.MulticallAddress == "" {
			errs = append(errs, "chain: multicall_address must not be empty for mode "+c.Mode)
		}
		if c.Chain.TokenAddress == "" {
			errs = append(errs, "chain: token_address must not be empty for mode "+c.Mode)
		}
	}
	if c.Chain.ScanMinTick >= c.Chain.ScanMaxTick {
		errs = append(errs, fmt.Sprintf("chain: scan_min_tick (%d) must be less than scan_max_tick (%d)", c.Chain.ScanMinTick, c.Chain.ScanMaxTick))
	}
	if c.Chain.TickSpacing <= 0 {
		errs = append(errs, "chain: tick_spacing must be > 0")
	}
	if c.Chain.FlipSampleSize < 0 {
		errs = append(errs, "chain: flip_sample_size must be >= 0")
	}

	// Monitor
	if c.Monitor.Pair == "" {
		errs = append(errs, "monitor: pair must not be empty")
	}
	if c.Monitor.Interval.Duration <= 0 {
		errs = append(errs, "monitor: interval must be > 0")
	}
	if c.Monitor.FallbackAfter < 1 {
		errs = append(errs, "monitor: fallback_after must be >= 1")
	}
	if c.Monitor.HistoryKeep < 1 {
		errs = append(errs, "monitor: history_keep must be >= 1")
	}

	// Thresholds reuse the runtime validation so config files and the PUT
	// endpoint reject the same inputs.
	if err := domain.ValidateThresholds(c.Thresholds); err != nil {
		errs = append(errs, "thresholds: "+err.Error())
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is optional; when a bucket is named the endpoint must be too.
	if c.S3.Bucket != "" && c.S3.Endpoint == "" {
		errs = append(errs, "s3: endpoint must not be empty when bucket is set")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
