package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TAX_RATE", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "")

	cfg := Load()
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 0.08, cfg.TaxRate)
	assert.Equal(t, "*/15 * * * *", cfg.InvoiceSweepCron)
	assert.NotEmpty(t, cfg.CORSOrigins)
	assert.False(t, cfg.Twilio.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("METRICS_ENABLED", "yes")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 0.1, cfg.TaxRate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidTaxRateFallsBack(t *testing.T) {
	t.Setenv("TAX_RATE", "-3")
	assert.Equal(t, 0.08, Load().TaxRate)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "salon", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=salon sslmode=disable", postgresDSN(cfg))

	cfg.DBURL = "postgres://u:p@db/salon"
	assert.Equal(t, "postgres://u:p@db/salon", postgresDSN(cfg))
}

func TestOpenSQLite_Migrates(t *testing.T) {
	db, err := OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable("invoices"))
	assert.True(t, db.Migrator().HasTable("stock_movements"))
}
