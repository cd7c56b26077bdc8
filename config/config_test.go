package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/menu-admin/config"
	"github.com/niksmo/menu-admin/internal/core/domain"
)

const testConfig = `
log_level: debug
http_server_addr: ":9090"
api:
  base_url: "http://backend:8000/api"
  timeout: 3s
upload:
  max_image_bytes: 1048576
broker:
  seed_brokers: ["kafka-0:9092", "kafka-1:9092"]
  schema_registry_urls: ["http://registry:8081"]
  topics:
    menu_changes: "menu-changes"
  consumers:
    menu_changes_group: "menu-changes-group"
tables:
  - id: 1
    number: "T1"
    name: "Window"
    capacity: 4
    location: "Main hall"
    status: "available"
    created_at: "2024-03-01T10:00:00Z"
  - id: 2
    number: "T2"
    name: "Corner"
    capacity: 2
    location: "Terrace"
    status: "occupied"
    current_order_id: 17
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		cfg, err := config.LoadFile(writeConfig(t, testConfig))
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, ":9090", cfg.HTTPServerAddr)
		assert.Equal(t, "http://backend:8000/api", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, int64(1<<20), cfg.Upload.MaxImageBytes)
		assert.True(t, cfg.Broker.Enabled())
		assert.Len(t, cfg.Broker.SeedBrokers, 2)

		require.Len(t, cfg.Tables, 2)
		assert.Equal(t, "Window", cfg.Tables[0].Name)
		assert.Equal(t, 2024, cfg.Tables[0].CreatedAt.Year())
		require.NotNil(t, cfg.Tables[1].CurrentOrderID)
		assert.Equal(t, int64(17), *cfg.Tables[1].CurrentOrderID)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)

		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageBytes)
		assert.False(t, cfg.Broker.Enabled())
		assert.Empty(t, cfg.Tables)
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("MENUADMIN_API_BASE_URL", "https://menu.example.com/api")
		t.Setenv("MENUADMIN_LOG_LEVEL", "warn")

		cfg, err := config.LoadFile(writeConfig(t, testConfig))
		require.NoError(t, err)
		assert.Equal(t, "https://menu.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := config.LoadFile(writeConfig(t, "unknown_key: 1\n"))
		require.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("BadBaseURL", func(t *testing.T) {
		cfg := valid()
		cfg.API.BaseURL = "localhost:8000"
		assert.Error(t, cfg.Validate())
	})

	t.Run("BrokerWithoutRegistry", func(t *testing.T) {
		cfg := valid()
		cfg.Broker.SeedBrokers = []string{"kafka:9092"}
		assert.ErrorContains(t, cfg.Validate(), "schema_registry_urls")
	})

	t.Run("DuplicateTable", func(t *testing.T) {
		cfg := valid()
		cfg.Tables = []config.Table{{ID: 1}, {ID: 1}}
		assert.ErrorContains(t, cfg.Validate(), "duplicate table id 1")
	})
}

func TestDomainTables(t *testing.T) {
	cfg, err := config.LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	tables := cfg.DomainTables()
	require.Len(t, tables, 2)
	assert.Equal(t, domain.TableAvailable, tables[0].Status)
	assert.Equal(t, "Main hall", tables[0].Location)
	assert.Equal(t, domain.TableOccupied, tables[1].Status)
	require.NotNil(t, tables[1].CurrentOrderID)
}
