package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ricecast/pkg/contracts"
)

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func TestHealthService(t *testing.T) {
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		hs := NewHealthService(fixedCounter(0), 10, quietLogger())
		status := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, contracts.Version, status.Version)
	})

	t.Run("ready", func(t *testing.T) {
		hs := NewHealthService(fixedCounter(3), 10, quietLogger())
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, ServiceHealth{Status: "ready"}, status.Services["sessions"])
	})

	t.Run("not ready without store", func(t *testing.T) {
		hs := NewHealthService(nil, 10, quietLogger())
		assert.Equal(t, "not_ready", hs.ReadinessCheck(ctx).Status)
	})

	t.Run("not ready over capacity", func(t *testing.T) {
		hs := NewHealthService(fixedCounter(11), 10, quietLogger())
		assert.Equal(t, "not_ready", hs.ReadinessCheck(ctx).Status)
	})

	t.Run("live", func(t *testing.T) {
		hs := NewHealthService(fixedCounter(0), 0, quietLogger())
		status := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", status.Status)
		assert.Contains(t, status.Runtime, "goroutines")
	})

	t.Run("version", func(t *testing.T) {
		hs := NewHealthService(fixedCounter(0), 0, quietLogger())
		v := hs.Version()
		assert.Equal(t, contracts.Version, v["version"])
		assert.Equal(t, contracts.APIVersion, v["api_version"])
	})
}
