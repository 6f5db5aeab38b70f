// Package transcript assembles the conversational context window that feeds
// the category scorer.
package transcript

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Timestamp string
	Channel   string
	Author    string
	Text      string
	IsBot     bool
}

// HistoryProvider fetches prior channel messages, newest first. Rate limited
// responses must surface as *RateLimitedError so the assembler can honor the
// provider's backoff interval.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, channel, latest string, limit int, inclusive bool) ([]Message, error)
}

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("provider rate limited, retry after %s", e.RetryAfter)
}

// Fold turns a newest-first history into a chronological transcript, one
// "author: text" line per message. Bot-authored and empty entries are dropped.
func Fold(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.IsBot {
			continue
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, msg.Author+": "+text)
	}
	return strings.Join(lines, "\n")
}

// Texts returns the non-empty, non-bot message texts in chronological order,
// skipping the entry whose Timestamp equals anchor. The history window is
// fetched inclusive of the triggering message, and a message must never serve
// as its own quote reference.
func Texts(messages []Message, anchor string) []string {
	texts := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.IsBot {
			continue
		}
		if anchor != "" && msg.Timestamp == anchor {
			continue
		}
		if text := strings.TrimSpace(msg.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}
