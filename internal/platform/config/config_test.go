package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetriage/internal/jurisdiction"
	"casetriage/internal/triage"
	dErrors "casetriage/pkg/domain-errors"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CASETRIAGE_STORE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "casetriage.audit", cfg.Kafka.Topic)
	assert.Equal(t, time.Second, cfg.Kafka.RelayInterval)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CASETRIAGE_STORE", "Postgres")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("OUTBOX_RELAY_INTERVAL", "250ms")
	t.Setenv("HTTP_WRITE_TIMEOUT", "30s")

	cfg := FromEnv()
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.RelayInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
}

func TestLoadEngineWithoutFileUsesDefaults(t *testing.T) {
	e, err := LoadEngine("")
	require.NoError(t, err)
	assert.Equal(t, triage.DefaultPolicy(), e.Policy)
	assert.Equal(t, jurisdiction.DefaultConfig().Cascade, e.Jurisdiction.Cascade)
}

func TestLoadEngineOverlaysFile(t *testing.T) {
	path := writeFile(t, `
policy:
  elapsed_bands:
    - within: 12h
      weight: 50
    - within: 48h
      weight: 25
  thresholds:
    critical: 80
jurisdiction:
  cascade: [exact, all]
  regions:
    Zona Norte: [San Isidro, Tigre]
`)

	e, err := LoadEngine(path)
	require.NoError(t, err)

	assert.Equal(t, []triage.ElapsedBand{
		{Within: 12 * time.Hour, Weight: 50},
		{Within: 48 * time.Hour, Weight: 25},
	}, e.Policy.ElapsedBands)
	assert.Equal(t, 80.0, e.Policy.Thresholds.Critical)
	assert.Equal(t, triage.DefaultPolicy().Thresholds.Urgent, e.Policy.Thresholds.Urgent)
	assert.Equal(t, triage.DefaultPolicy().AgeBands, e.Policy.AgeBands)
	assert.Equal(t, []jurisdiction.Level{jurisdiction.LevelExact, jurisdiction.LevelAll}, e.Jurisdiction.Cascade)
	assert.Len(t, e.Jurisdiction.Regions, 1)
}

func TestLoadEngineEnvOverride(t *testing.T) {
	t.Setenv("CASETRIAGE_POLICY_TOP_ALERTS", "5")

	e, err := LoadEngine("")
	require.NoError(t, err)
	assert.Equal(t, 5, e.Policy.TopAlerts)
}

func TestLoadEngineRejectsInvalidPolicy(t *testing.T) {
	path := writeFile(t, `
policy:
  thresholds:
    critical: 30
    urgent: 40
`)

	_, err := LoadEngine(path)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestLoadEngineRejectsZeroTopAlerts(t *testing.T) {
	path := writeFile(t, "policy:\n  top_alerts: 0\n")

	_, err := LoadEngine(path)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestLoadEngineRejectsUnknownCascadeLevel(t *testing.T) {
	path := writeFile(t, "jurisdiction:\n  cascade: [exact, county]\n")

	_, err := LoadEngine(path)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestLoadEngineMissingFile(t *testing.T) {
	_, err := LoadEngine(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
