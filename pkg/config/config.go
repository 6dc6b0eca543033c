package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	AppName  string `envconfig:"APP_NAME" default:"Feed Catalog v1.0"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	ProductFeedURL string        `envconfig:"PRODUCT_FEED_URL" default:"https://feed.aosomcdn.com/390/200_feed/0/0/51/056920.txt"`
	StockFeedURL   string        `envconfig:"STOCK_FEED_URL" default:"https://feed.aosomcdn.com/390/200_feed/0/0/4e/c4857d.csv"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"60s"`
	AutoSync       bool          `envconfig:"AUTO_SYNC" default:"true"`
	SyncInterval   time.Duration `envconfig:"SYNC_INTERVAL" default:"0s"`

	// Empty keeps sync history in memory only
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`

	// Empty disables the product page cache
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Empty disables event publishing
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"catalog-events"`

	ImageFetchConcurrency int   `envconfig:"IMAGE_FETCH_CONCURRENCY" default:"4"`
	MaxUploadBytes        int64 `envconfig:"MAX_UPLOAD_BYTES" default:"209715200"`
}

// Load reads an optional .env file, then the process environment. It
// reports whether a .env file was found so callers can log it.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, dotenv, err
	}
	return &cfg, dotenv, nil
}

func (c *Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

func (c *Config) EventsEnabled() bool { return c.KafkaBrokers != "" }

func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }
