// internal/pkg/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCallGroupDurationParsing(t *testing.T) {
	raw := `
failureRatio: 0.4
windowSize: 20
openCooldown: 30s
maxAttempts: 5
backoffBase: 250ms
attemptTimeout: 2s
`
	var cg CallGroup
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cg))

	assert.Equal(t, 0.4, cg.FailureRatio)
	assert.Equal(t, 20, cg.WindowSize)
	assert.Equal(t, 30*time.Second, cg.OpenCooldown.Std())
	assert.Equal(t, 250*time.Millisecond, cg.BackoffBase.Std())
	assert.Equal(t, 2*time.Second, cg.AttemptTimeout.Std())
}

func TestDurationRejectsGarbage(t *testing.T) {
	var cg CallGroup
	err := yaml.Unmarshal([]byte("openCooldown: not-a-duration"), &cg)
	assert.Error(t, err)
}

func TestDefaultsCoverLocalRun(t *testing.T) {
	c := defaults()

	assert.NotEmpty(t, c.Infra.Jaeger.Endpoint)
	assert.NotEmpty(t, c.Infra.Kafka.OrderPlacedTopic)
	assert.NotEmpty(t, c.Infra.Kafka.LowStockTopic)
	assert.Contains(t, c.Services, "inventory-service")
	assert.NotEmpty(t, c.Inventory.LowStockRule)
}
