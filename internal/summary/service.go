package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Notifier delivers one digest message per user. The user ID doubles as the
// DM channel, matching the chat provider's convention.
type Notifier interface {
	Notify(ctx context.Context, channel, text string) error
}

// Service drains the score store on a cron schedule (weekly by default) and
// sends each user their average-score digest. It is started once at process
// initialization and never blocks the message-processing path.
type Service struct {
	store    *Store
	notifier Notifier
	schedule string
	logger   *slog.Logger
}

func New(store *Store, notifier Notifier, schedule string, logger *slog.Logger) *Service {
	if schedule == "" {
		schedule = "@weekly"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		schedule: schedule,
		logger:   logger,
	}
}

func (s *Service) Start(ctx context.Context) error {
	runner := cron.New()
	if _, err := runner.AddFunc(s.schedule, func() {
		s.RunDigest(ctx)
	}); err != nil {
		return fmt.Errorf("register summary schedule %q: %w", s.schedule, err)
	}
	runner.Start()
	s.logger.Info("summary service started", "schedule", s.schedule)

	<-ctx.Done()
	stopCtx := runner.Stop()
	<-stopCtx.Done()
	s.logger.Info("summary service stopped")
	return nil
}

// RunDigest drains the log and sends one digest per user with recorded
// scores. Exposed for tests and manual triggering.
func (s *Service) RunDigest(ctx context.Context) {
	drained := s.store.Drain()
	for userID, entries := range drained {
		if len(entries) == 0 {
			continue
		}
		total := 0.0
		for _, entry := range entries {
			total += entry.Score
		}
		average := total / float64(len(entries))

		if err := s.notifier.Notify(ctx, userID, digestText(average)); err != nil {
			s.logger.Error("failed to send summary digest", "user", userID, "error", err)
		}
	}
	if len(drained) > 0 {
		s.logger.Info("summary digests sent", "users", len(drained))
	}
}

func digestText(average float64) string {
	message := fmt.Sprintf("Hi there! Your average toxicity score this week was %.2f.\n", average)
	switch {
	case average >= 0.7:
		message += "It might be worth reflecting on your tone in messages. Let's keep things constructive! 💬"
	case average >= 0.4:
		message += "You're doing okay, but there's room for improvement in communication style."
	default:
		message += "Great job keeping your messages respectful and positive! 🎉"
	}
	return message
}
