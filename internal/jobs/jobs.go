package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ReminderSender is satisfied by services.ReminderService.
type ReminderSender interface {
	SendShowtimeReminders(ctx context.Context) (int, error)
}

type Scheduler struct {
	inner   gocron.Scheduler
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		inner:   sched,
		ctx:     ctx,
		cancel:  cancel,
		timeout: 5 * time.Minute,
		logger:  logger,
	}, nil
}

// RegisterReminders runs the showtime reminder sweep every interval. A sweep that
// is still running when the next one is due pushes the next run back.
func (s *Scheduler) RegisterReminders(sender ReminderSender, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("reminder interval must be positive, got %s", interval)
	}
	job, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
			defer cancel()
			if _, err := sender.SendShowtimeReminders(ctx); err != nil {
				s.logger.Error("Showtime reminder sweep failed", "error", err)
			}
		}),
		gocron.WithName("showtime-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}
	s.logger.Info("Reminder job registered", "job_id", job.ID().String(), "interval", interval)
	return nil
}

func (s *Scheduler) Start() {
	s.inner.Start()
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.inner.Shutdown()
}
