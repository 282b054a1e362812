package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"blitzit/internal/model"
)

const DefaultInterval = 60 * time.Second

// TaskSource lists the tasks that have reminders switched on, with their
// owners loaded.
type TaskSource interface {
	ListWithReminders(ctx context.Context) ([]model.Task, error)
}

type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Poller sweeps the task set on a fixed interval.
type Poller struct {
	source    TaskSource
	notifiers []Notifier
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state NotificationState
}

func NewPoller(source TaskSource, interval time.Duration, logger *slog.Logger, notifiers ...Notifier) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:    source,
		notifiers: notifiers,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		state:     NewNotificationState(),
	}
}

// Run checks once immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("reminder poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Check(ctx); err != nil {
			p.logger.Error("reminder sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// Check runs a single sweep and dispatches what is due. Tasks no longer in
// the reminder set are dropped from the notified state first.
func (p *Poller) Check(ctx context.Context) error {
	tasks, err := p.source.ListWithReminders(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	due, next := Sweep(tasks, p.now(), p.state.retain(tasks))
	p.state = next
	p.mu.Unlock()

	for _, r := range due {
		for _, n := range p.notifiers {
			if err := n.Notify(ctx, r); err != nil {
				p.logger.Warn("reminder delivery failed",
					"task_id", r.Task.ID, "notifier", n, "error", err)
			}
		}
	}
	return nil
}

// Reload forgets every announced task, e.g. after the task set was replaced.
func (p *Poller) Reload() {
	p.mu.Lock()
	p.state = NewNotificationState()
	p.mu.Unlock()
}

// Forget lets the given tasks be announced again, e.g. after their due date
// or reminder offset changed.
func (p *Poller) Forget(ids ...uuid.UUID) {
	p.mu.Lock()
	p.state = p.state.Forget(ids...)
	p.mu.Unlock()
}
