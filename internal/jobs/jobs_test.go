package jobs

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

type countingSender struct {
	calls atomic.Int32
}

func (s *countingSender) SendShowtimeReminders(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 0, nil
}

func TestScheduler_RunsReminderSweep(t *testing.T) {
	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sender := &countingSender{}
	require.NoError(t, s.RegisterReminders(sender, 50*time.Millisecond))
	s.Start()
	defer func() { assert.NoError(t, s.Shutdown()) }()

	assert.Eventually(t, func() bool { return sender.calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Error(t, s.RegisterReminders(&countingSender{}, 0))
}
