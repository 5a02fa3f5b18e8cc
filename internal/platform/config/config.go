// Package config reads server configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "certledger/pkg/platform/strings"
)

// Ledger backends.
const (
	LedgerSui    = "sui"
	LedgerMemory = "memory"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

const (
	DefaultSuiRPCURL    = "https://fullnode.testnet.sui.io:443"
	DefaultSuiPackageID = "0x0de8f0a090b81b642d62f6ad9459f2e1cad737bf51d6a3584f5082a91ee3f90c"
	DefaultSuiModule    = "certificate"
	DefaultAuditTopic   = "certledger.audit.events"

	devSigningKey = "dev-secret-key-change-in-production"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string

	JWTSigningKey string
	AdminTokenTTL time.Duration

	Ledger   Ledger
	Issuers  Issuers
	Store    Store
	Kafka    Kafka
	Reminder Reminder
}

// Ledger configures the ledger backend and the Sui client.
type Ledger struct {
	Backend       string
	RPCURL        string
	PackageID     string
	Module        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	GasBudget     uint64
	SignerKey     string
}

// Issuers lists trusted issuer addresses inline and from an optional YAML file.
type Issuers struct {
	Addresses []string
	File      string
}

// Store selects where mint requests and notifications live.
type Store struct {
	Backend     string
	DatabaseURL string
	Redis       RedisConfig
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the audit outbox relay. Empty Brokers disables it.
type Kafka struct {
	Brokers    string
	AuditTopic string
}

// Reminder configures the pending request sweep.
type Reminder struct {
	Schedule string
	After    time.Duration
}

// Load reads .env when present and then the environment.
func Load() (Server, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	p := &parser{}
	cfg := Server{
		Addr:          getEnv("CERTLEDGER_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
		AdminTokenTTL: p.duration("ADMIN_TOKEN_TTL", time.Hour),
		Ledger: Ledger{
			Backend:       strings.ToLower(getEnv("LEDGER_BACKEND", LedgerSui)),
			RPCURL:        getEnv("SUI_RPC_URL", DefaultSuiRPCURL),
			PackageID:     getEnv("SUI_PACKAGE_ID", DefaultSuiPackageID),
			Module:        getEnv("SUI_MODULE_NAME", DefaultSuiModule),
			Timeout:       p.duration("SUI_RPC_TIMEOUT", 10*time.Second),
			RatePerSecond: p.float("SUI_RPC_RATE", 20),
			Burst:         p.int("SUI_RPC_BURST", 40),
			GasBudget:     p.uint("SUI_GAS_BUDGET", 10_000_000),
			SignerKey:     strings.TrimSpace(os.Getenv("SUI_SIGNER_KEY")),
		},
		Issuers: Issuers{
			Addresses: splitList(os.Getenv("TRUSTED_ISSUERS")),
			File:      strings.TrimSpace(os.Getenv("TRUSTED_ISSUERS_FILE")),
		},
		Store: Store{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Redis: RedisConfig{
				URL:          os.Getenv("REDIS_URL"),
				PoolSize:     10,
				MinIdleConns: 2,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
		Kafka: Kafka{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", DefaultAuditTopic),
		},
		Reminder: Reminder{
			Schedule: getEnv("REMINDER_SCHEDULE", "@every 1h"),
			After:    p.duration("REMINDER_AFTER", 24*time.Hour),
		},
	}
	if p.err != nil {
		return Server{}, p.err
	}
	return cfg, cfg.validate()
}

// DevSigningKey reports whether the JWT key was left at its development default.
func (s Server) DevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func (s Server) validate() error {
	switch s.Ledger.Backend {
	case LedgerSui, LedgerMemory:
	default:
		return fmt.Errorf("LEDGER_BACKEND: unknown backend %q", s.Ledger.Backend)
	}
	switch s.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if s.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case StoreRedis:
		if s.Store.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q", s.Store.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(raw, ","))
}

// parser keeps the first malformed value it sees.
type parser struct {
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return d
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) uint(key string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}
