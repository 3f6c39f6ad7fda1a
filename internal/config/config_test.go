package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 9090

[database]
host = "db"
port = 5432
user = "postgres"
password = "secret"
dbname = "salon_booking"

[salon_service]
url = "http://salons"
timeout = 3

[client_service]
url = "http://clients"
timeout = 3

[kafka]
brokers = "k1:9092, k2:9092,"

[outbox]
enabled = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout) // значение по умолчанию
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, "salon.appointments", cfg.Kafka.Topic)
	assert.Equal(t, 14, cfg.Slots.MaxRangeDays)
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=salon_booking sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SMC_DB_HOST", "pg.internal")
	t.Setenv("SMC_DB_PORT", "6432")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := Load(writeConfig(t, `
[database]
host = "db"
dbname = "x"

[outbox]
enabled = true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salon_service.url is required")
	assert.Contains(t, err.Error(), "kafka.brokers is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
