package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBDriver   string
	DBURL      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret   string
	CORSOrigins []string

	TaxRate          float64
	InvoiceSweepCron string

	Twilio  TwilioConfig
	Metrics MetricsConfig
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// Enabled reports whether SMS receipts can be sent.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.PhoneNumber != ""
}

type MetricsConfig struct {
	Enabled  bool
	Endpoint string
	Protocol string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getenv("PORT", "8080"),
		Environment: getenv("APP_ENV", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DBURL:      strings.TrimSpace(os.Getenv("DB_URL")),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "salonspa"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		SQLitePath: getenv("SQLITE_PATH", "salonspa.db"),

		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins: splitList(getenv("CORS_ORIGINS",
			"http://localhost:3000,https://salon.zenithive.digital")),

		TaxRate:          getenvFloat("TAX_RATE", 0.08),
		InvoiceSweepCron: strings.TrimSpace(getenv("INVOICE_SWEEP_CRON", "*/15 * * * *")),

		Twilio: TwilioConfig{
			AccountSID:  strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
			AuthToken:   strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
			PhoneNumber: strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
		},
		Metrics: MetricsConfig{
			Enabled:  getenvBool("METRICS_ENABLED", false),
			Endpoint: strings.TrimSpace(os.Getenv("OTLP_ENDPOINT")),
			Protocol: strings.ToLower(getenv("OTLP_PROTOCOL", "grpc")),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
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
