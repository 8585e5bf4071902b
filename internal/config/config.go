package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, loaded once at startup and
// passed to the components that need it — no package-level globals
// (spec.md §5's "no global singletons beyond configuration").
type Config struct {
	Server    ServerConfig
	Poller    PollerConfig
	Providers ProvidersConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AWS       AWSConfig
	JWT       JWTConfig
	Router    RouterConfig

	LogFile           string
	MetricsAddr       string
	OutputDir         string
	SubscriptionsPath string
}

type ServerConfig struct {
	Port string
}

type PollerConfig struct {
	Interval       time.Duration
	DefaultSymbols []string
}

type ProvidersConfig struct {
	Default string // PROVIDER: default equities adapter selector

	EquitiesBaseURL string
	EquitiesAPIKey  string

	ForexBaseURL string
	ForexAPIKey  string

	ExchangeBaseURL string

	BinanceAPIKey    string
	BinanceAPISecret string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	URL string
}

type AWSConfig struct {
	S3Bucket        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type JWTConfig struct {
	SecretKey []byte
	Required  bool
}

type RouterConfig struct {
	ConfigPath string
}

// Load returns application configuration loaded from environment variables,
// following the same getEnvWithDefault convention the original bootstrap
// used, extended with the keys spec.md §6 and SPEC_FULL.md §6 add.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvWithDefault("PORT", "8000"),
		},
		Poller: PollerConfig{
			Interval:       parseSecondsWithDefault("FETCH_INTERVAL", 60*time.Second),
			DefaultSymbols: parseCSVList(os.Getenv("FETCH_SYMBOLS")),
		},
		Providers: ProvidersConfig{
			Default:          getEnvWithDefault("PROVIDER", "equities"),
			EquitiesBaseURL:  getEnvWithDefault("EQUITIES_BASE_URL", "https://api.equities.example.com"),
			EquitiesAPIKey:   os.Getenv("EQUITIES_API_KEY"),
			ForexBaseURL:     getEnvWithDefault("FOREX_BASE_URL", "https://api.forex.example.com"),
			ForexAPIKey:      os.Getenv("FOREX_API_KEY"),
			ExchangeBaseURL:  getEnvWithDefault("EXCHANGE_BASE_URL", "https://api.exchange.example.com"),
			BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
			BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AWS: AWSConfig{
			S3Bucket:        os.Getenv("AWS_S3_BUCKET"),
			Region:          getEnvWithDefault("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		JWT: JWTConfig{
			SecretKey: []byte(getEnvWithDefault("JWT_SECRET", "default_secret_key")),
			Required:  strings.EqualFold(os.Getenv("AUTH_REQUIRED"), "true"),
		},
		Router: RouterConfig{
			ConfigPath: getEnvWithDefault("ROUTER_CONFIG", "router.yaml"),
		},
		LogFile:           getEnvWithDefault("LOG_FILE", "logs/marketdata.log"),
		MetricsAddr:       getEnvWithDefault("METRICS_ADDR", ":9090"),
		OutputDir:         getEnvWithDefault("OPTION_CHAIN_DIR", "option_chain_data"),
		SubscriptionsPath: getEnvWithDefault("SUBSCRIPTIONS_PATH", "subscriptions.json"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseSecondsWithDefault(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

func parseCSVList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
