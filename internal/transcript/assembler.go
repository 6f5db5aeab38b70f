package transcript

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type AssemblerConfig struct {
	Limit    int
	Attempts int
}

// Assembler fetches the context window for a channel and anchor timestamp.
// Rate limits are retried with the provider-supplied interval; everything
// else degrades to an empty window. It never fails the pipeline.
type Assembler struct {
	provider HistoryProvider
	cfg      AssemblerConfig
	logger   *slog.Logger
}

func NewAssembler(provider HistoryProvider, cfg AssemblerConfig, logger *slog.Logger) *Assembler {
	if cfg.Limit < 1 {
		cfg.Limit = 20
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Build returns up to Limit messages at or before anchorTS, newest first.
// The returned slice is empty when history is unavailable; callers fall back
// to the triggering message's own text.
func (a *Assembler) Build(ctx context.Context, channel, anchorTS string) []Message {
	policy := &retryAfterBackOff{fallback: time.Second}
	var messages []Message

	operation := func() error {
		fetched, err := a.provider.FetchHistory(ctx, channel, anchorTS, a.cfg.Limit, true)
		if err != nil {
			var rateLimited *RateLimitedError
			if errors.As(err, &rateLimited) {
				policy.next = rateLimited.RetryAfter
				a.logger.Warn("history fetch rate limited", "channel", channel, "retry_after", rateLimited.RetryAfter.String())
				return err
			}
			return backoff.Permanent(err)
		}
		messages = fetched
		return nil
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(a.cfg.Attempts-1)), ctx)
	if err := backoff.Retry(operation, wrapped); err != nil {
		a.logger.Warn("history fetch failed, proceeding without context", "channel", channel, "error", err)
		return nil
	}
	return messages
}

// retryAfterBackOff sleeps for whatever interval the provider asked for on
// its last rate-limit response.
type retryAfterBackOff struct {
	next     time.Duration
	fallback time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	if b.next > 0 {
		return b.next
	}
	return b.fallback
}

func (b *retryAfterBackOff) Reset() {}
