package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Quote    QuoteConfig    `mapstructure:"quote"`
	Session  SessionConfig  `mapstructure:"session"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds the session store connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds Kafka configuration. An empty broker list disables
// trade event publishing.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether any broker is configured
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// QuoteConfig holds the market data provider settings
type QuoteConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SymbolPath string        `mapstructure:"symbol_path"`
	NamePath   string        `mapstructure:"name_path"`
	PricePath  string        `mapstructure:"price_path"`
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// LedgerConfig holds account settings
type LedgerConfig struct {
	InitialCash string `mapstructure:"initial_cash"`
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
}

// StartingCash parses InitialCash
func (l *LedgerConfig) StartingCash() (decimal.Decimal, error) {
	return decimal.NewFromString(l.InitialCash)
}

var keys = []string{
	"server.port", "server.host",
	"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode",
	"redis.addr", "redis.password", "redis.db",
	"kafka.brokers", "kafka.topic",
	"quote.base_url", "quote.api_key", "quote.timeout",
	"quote.symbol_path", "quote.name_path", "quote.price_path",
	"session.cookie", "session.ttl",
	"ledger.initial_cash", "ledger.bcrypt_cost",
}

// Load reads configuration from an optional .env file and environment
// variables. Keys map to variables by upper-casing and replacing dots, so
// quote.api_key is QUOTE_API_KEY.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "papertrader")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "trade-events")

	v.SetDefault("quote.base_url", "https://cloud.iexapis.com/stable")
	v.SetDefault("quote.api_key", "")
	v.SetDefault("quote.timeout", 5*time.Second)
	v.SetDefault("quote.symbol_path", "$.symbol")
	v.SetDefault("quote.name_path", "$.companyName")
	v.SetDefault("quote.price_path", "$.latestPrice")

	v.SetDefault("session.cookie", "session")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("ledger.initial_cash", "10000.00")
	v.SetDefault("ledger.bcrypt_cost", 10)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	// KAFKA_BROKERS is comma separated and may carry spaces
	cfg.Kafka.Brokers = splitList(strings.Join(cfg.Kafka.Brokers, ","))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Quote.BaseURL == "" {
		return fmt.Errorf("quote base url is required")
	}
	cash, err := c.Ledger.StartingCash()
	if err != nil {
		return fmt.Errorf("invalid initial cash %q: %w", c.Ledger.InitialCash, err)
	}
	if cash.IsNegative() {
		return fmt.Errorf("initial cash cannot be negative")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
