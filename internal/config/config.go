package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "github.com/Skotchmaster/game_store/pkg/config"
)

var DefaultPlatforms = []string{"PC", "PlayStation 4", "PlayStation 5", "Xbox One", "Xbox Series X", "Nintendo Switch"}

type Config struct {
	ServiceName string
	LogLevel    string

	DatabaseURL   string
	DBBusyTimeout time.Duration
	TxTimeout     time.Duration

	TelegramToken string
	BotWorkers    int

	AdminAddr     string
	JWTSecret     []byte
	AdminTokenTTL time.Duration
	AdminUsername string
	AdminPassword string
	CSRFEnabled   bool
	CookieSecure  bool

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SeedFile  string
	ImagesDir string

	RestockOnCancel   bool
	Platforms         []string
	LowStockThreshold int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	return &Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "game_store"),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:   pkgconfig.EnvDefault("DATABASE_URL", "instance/data.db"),
		DBBusyTimeout: pkgconfig.EnvDurationDefault("DB_BUSY_TIMEOUT", 5*time.Second),
		TxTimeout:     pkgconfig.EnvDurationDefault("TX_TIMEOUT", 10*time.Second),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotWorkers:    pkgconfig.EnvIntDefault("BOT_WORKERS", 8),

		AdminAddr:     pkgconfig.EnvDefault("ADMIN_ADDR", ":5000"),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		AdminTokenTTL: pkgconfig.EnvDurationDefault("ADMIN_TOKEN_TTL", 12*time.Hour),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CSRFEnabled:   pkgconfig.EnvBoolDefault("CSRF_ENABLED", true),
		CookieSecure:  pkgconfig.EnvBoolDefault("COOKIE_SECURE", false),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "products"),

		SeedFile:  pkgconfig.EnvDefault("SEED_FILE", "products.json"),
		ImagesDir: pkgconfig.EnvDefault("IMAGES_DIR", "images"),

		RestockOnCancel:   pkgconfig.EnvBoolDefault("RESTOCK_ON_CANCEL", false),
		Platforms:         pkgconfig.EnvCSVDefault("PLATFORMS", DefaultPlatforms),
		LowStockThreshold: pkgconfig.EnvIntDefault("LOW_STOCK_THRESHOLD", 5),
	}
}

func (c *Config) RequireBot() error {
	return pkgconfig.NonEmpty(c.TelegramToken, "TELEGRAM_BOT_TOKEN")
}

func (c *Config) RequireAdmin() error {
	return pkgconfig.NonEmptyBytes(c.JWTSecret, "JWT_SECRET")
}
