package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SENTINEL_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SENTINEL_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "SENTINEL_CHAIN_RPC_URL")
	setStr(&cfg.Chain.DexAddress, "SENTINEL_CHAIN_DEX_ADDRESS")
	setStr(&cfg.Chain.MulticallAddress, "SENTINEL_CHAIN_MULTICALL_ADDRESS")
	setStr(&cfg.Chain.TokenAddress, "SENTINEL_CHAIN_TOKEN_ADDRESS")
	setInt(&cfg.Chain.ScanMinTick, "SENTINEL_CHAIN_SCAN_MIN_TICK")
	setInt(&cfg.Chain.ScanMaxTick, "SENTINEL_CHAIN_SCAN_MAX_TICK")
	setInt(&cfg.Chain.TickSpacing, "SENTINEL_CHAIN_TICK_SPACING")
	setInt(&cfg.Chain.FlipSampleSize, "SENTINEL_CHAIN_FLIP_SAMPLE_SIZE")
	setUint64(&cfg.Chain.RetryMax, "SENTINEL_CHAIN_RETRY_MAX")

	// ── Monitor ──
	setStr(&cfg.Monitor.Pair, "SENTINEL_MONITOR_PAIR")
	setDuration(&cfg.Monitor.Interval, "SENTINEL_MONITOR_INTERVAL")
	setDuration(&cfg.Monitor.CacheTTL, "SENTINEL_MONITOR_CACHE_TTL")
	setInt(&cfg.Monitor.FallbackAfter, "SENTINEL_MONITOR_FALLBACK_AFTER")
	setInt(&cfg.Monitor.HistoryKeep, "SENTINEL_MONITOR_HISTORY_KEEP")
	setDuration(&cfg.Monitor.ArchiveEvery, "SENTINEL_MONITOR_ARCHIVE_EVERY")

	// ── Thresholds ──
	setFloat64(&cfg.Thresholds.PSIWarning, "SENTINEL_THRESHOLDS_PSI_WARNING")
	setFloat64(&cfg.Thresholds.PSICritical, "SENTINEL_THRESHOLDS_PSI_CRITICAL")
	setFloat64(&cfg.Thresholds.SpreadWarning, "SENTINEL_THRESHOLDS_SPREAD_WARNING")
	setFloat64(&cfg.Thresholds.SpreadCritical, "SENTINEL_THRESHOLDS_SPREAD_CRITICAL")
	setFloat64(&cfg.Thresholds.CliffDropPercent, "SENTINEL_THRESHOLDS_CLIFF_DROP_PERCENT")
	setFloat64(&cfg.Thresholds.WhalePercent, "SENTINEL_THRESHOLDS_WHALE_PERCENT")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SENTINEL_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SENTINEL_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SENTINEL_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SENTINEL_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SENTINEL_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SENTINEL_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SENTINEL_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SENTINEL_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SENTINEL_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SENTINEL_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SENTINEL_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SENTINEL_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SENTINEL_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SENTINEL_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SENTINEL_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SENTINEL_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SENTINEL_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SENTINEL_S3_REGION")
	setStr(&cfg.S3.Bucket, "SENTINEL_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SENTINEL_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SENTINEL_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SENTINEL_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SENTINEL_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SENTINEL_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SENTINEL_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "SENTINEL_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SENTINEL_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SENTINEL_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SENTINEL_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SENTINEL_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Types, "SENTINEL_NOTIFY_TYPES")

	// ── Top-level ──
	setStr(&cfg.Mode, "SENTINEL_MODE")
	setStr(&cfg.LogLevel, "SENTINEL_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
