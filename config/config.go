package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the process reads from the environment. It is
// loaded once in main and handed to the client constructors, so nothing
// below the entry point touches os.Getenv.
type Config struct {
	Port             string
	Environment      string
	SentryDSN        string
	SentrySampleRate float64
	CloudinaryURL    string

	Providers Providers
	Mongo     Mongo
	Redis     Redis
	Kafka     Kafka
	Rabbit    Rabbit
}

// Providers holds the market-data vendor settings. Empty API keys disable
// the corresponding vendor and the fetch ladder falls through to scraping.
type Providers struct {
	TradierAPIKey  string
	TradierBaseURL string
	FMPAPIKey      string
	FMPBaseURL     string
	YahooBaseURL   string
	YahooQueryURL  string
	TickersBaseURL string
	Timeout        time.Duration
}

type Mongo struct {
	URI        string
	Database   string
	Collection string
}

// Redis configures the optional result cache. An empty Addr means the
// service runs without caching.
type Redis struct {
	Addr string
	DB   int
	TTL  time.Duration
}

type Kafka struct {
	BootstrapServers string
	Topic            string
}

type Rabbit struct {
	Server string
	Port   string
	User   string
	Pass   string
	Queue  string
}

func Load() Config {
	sampleRate, err := strconv.ParseFloat(os.Getenv("SENTRY_SAMPLE_RATE"), 64)
	if err != nil {
		sampleRate = 1.0
	}

	redisDB, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		redisDB = 0
	}

	return Config{
		Port:             getEnv("PORT", "4000"),
		Environment:      os.Getenv("ENVIRONMENT"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentrySampleRate: sampleRate,
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		Providers: Providers{
			TradierAPIKey:  os.Getenv("TRADIER_API_KEY"),
			TradierBaseURL: getEnv("TRADIER_BASE_URL", "https://sandbox.tradier.com/v1"),
			FMPAPIKey:      os.Getenv("FMP_API_KEY"),
			FMPBaseURL:     getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			YahooBaseURL:   getEnv("YAHOO_BASE_URL", "https://finance.yahoo.com"),
			YahooQueryURL:  getEnv("YAHOO_QUERY_URL", "https://query1.finance.yahoo.com"),
			TickersBaseURL: getEnv("TICKERS_BASE_URL", "https://raw.githubusercontent.com/rreichel3/US-Stock-Symbols/main"),
			Timeout:        15 * time.Second,
		},
		Mongo: Mongo{
			URI:        os.Getenv("MONGO_URI"),
			Database:   getEnv("DATABASE", "stockanalyzer"),
			Collection: getEnv("WATCHLIST_COLLECTION", "watchlist"),
		},
		Redis: Redis{
			Addr: os.Getenv("REDIS_ADDR"),
			DB:   redisDB,
			TTL:  5 * time.Minute,
		},
		Kafka: Kafka{
			BootstrapServers: os.Getenv("KAFKA_BOOTSTRAPSERVERS"),
			Topic:            getEnv("KAFKA_TOPIC", "stockanalyzer"),
		},
		Rabbit: Rabbit{
			Server: os.Getenv("RABBITMQ_SERVER"),
			Port:   getEnv("RABBITMQ_PORT", "5672"),
			User:   getEnv("RABBITMQ_USER", "guest"),
			Pass:   getEnv("RABBITMQ_PASS", "guest"),
			Queue:  getEnv("RABBITMQ_QUEUE", "stockanalyzer"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
