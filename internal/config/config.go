package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"bodega-pos/internal/ledger"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBLogLevel  string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	StockMode     ledger.StockMode
	StockCheck    bool
	Transactional bool

	LoginRate         string
	LowStockThreshold int
	Location          *time.Location

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       databaseURL(),
		DBLogLevel:        strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:            time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		CartTTL:           time.Duration(getInt("CART_TTL_MINUTES", 120)) * time.Minute,
		StockMode:         ledger.StockMode(strings.ToLower(getEnv("LEDGER_STOCK_MODE", string(ledger.StockAtomic)))),
		StockCheck:        getBool("LEDGER_STOCK_CHECK", true),
		Transactional:     getBool("LEDGER_TRANSACTIONAL", false),
		LoginRate:         getEnv("LOGIN_RATE", "10-M"),
		LowStockThreshold: getInt("LOW_STOCK_THRESHOLD", 10),
		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if !cfg.StockMode.Valid() {
		return nil, fmt.Errorf("LEDGER_STOCK_MODE must be %q or %q, got %q", ledger.StockAtomic, ledger.StockNaive, cfg.StockMode)
	}

	tz := getEnv("TIMEZONE", "America/Lima")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// LedgerOptions turns the LEDGER_* settings into ledger options.
func (c *Config) LedgerOptions() []ledger.Option {
	return []ledger.Option{
		ledger.WithStockMode(c.StockMode),
		ledger.WithStockCheck(c.StockCheck),
		ledger.WithTransactions(c.Transactional),
	}
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "bodega"),
		getEnv("DB_PORT", "5432"),
		getEnv("TIMEZONE", "America/Lima"),
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
