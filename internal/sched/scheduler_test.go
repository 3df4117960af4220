package sched

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New(func(ctx context.Context) error { return nil }, discardLogger())

	err := s.Start("not a cron spec")
	require.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	var calls atomic.Int64
	s := New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, discardLogger())

	// @every fires on a fixed interval without waiting for a minute boundary
	require.NoError(t, s.Start("@every 10ms"))

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "job fired after Stop")
}
