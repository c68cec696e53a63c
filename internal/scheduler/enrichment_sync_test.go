package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfn101/book-manager/internal/tasks"
)

func newTestQueue(t *testing.T) *tasks.Client {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(dbPath, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func TestScheduler_DisabledDoesNotStart(t *testing.T) {
	s := NewEnrichmentSyncScheduler(newTestQueue(t), Config{Enabled: false})

	err := s.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewEnrichmentSyncScheduler(newTestQueue(t), Config{
		Enabled:  true,
		Schedule: "0 3 * * *",
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.GetNextRunTime())

	// Starting twice is a no-op.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewEnrichmentSyncScheduler(newTestQueue(t), Config{
		Enabled:  true,
		Schedule: "not a schedule",
	})

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewEnrichmentSyncScheduler(newTestQueue(t), Config{
		Enabled:  true,
		Schedule: "0 3 * * *",
	})

	// Enqueueing works without the cron loop running.
	assert.NoError(t, s.RunNow())
}
