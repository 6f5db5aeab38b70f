package transcript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeProvider struct {
	messages   []Message
	failures   []error
	calls      int
	lastLimit  int
	lastLatest string
}

func (f *fakeProvider) FetchHistory(ctx context.Context, channel, latest string, limit int, inclusive bool) ([]Message, error) {
	f.calls++
	f.lastLimit = limit
	f.lastLatest = latest
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return f.messages, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildPassesLimitAndAnchor(t *testing.T) {
	provider := &fakeProvider{messages: []Message{{Author: "u1", Text: "hi"}}}
	assembler := NewAssembler(provider, AssemblerConfig{Limit: 20, Attempts: 3}, discardLogger())

	messages := assembler.Build(context.Background(), "C1", "1700000000.000100")
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if provider.lastLimit != 20 {
		t.Fatalf("limit = %d, want 20", provider.lastLimit)
	}
	if provider.lastLatest != "1700000000.000100" {
		t.Fatalf("latest = %q", provider.lastLatest)
	}
}

func TestBuildRetriesRateLimitsThenSucceeds(t *testing.T) {
	provider := &fakeProvider{
		messages: []Message{{Author: "u1", Text: "hi"}},
		failures: []error{
			&RateLimitedError{RetryAfter: time.Millisecond},
			&RateLimitedError{RetryAfter: time.Millisecond},
		},
	}
	assembler := NewAssembler(provider, AssemblerConfig{Attempts: 3}, discardLogger())

	messages := assembler.Build(context.Background(), "C1", "1.0")
	if len(messages) != 1 {
		t.Fatalf("expected success after retries, got %d messages", len(messages))
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", provider.calls)
	}
}

func TestBuildGivesUpAfterRetryBudget(t *testing.T) {
	provider := &fakeProvider{
		failures: []error{
			&RateLimitedError{RetryAfter: time.Millisecond},
			&RateLimitedError{RetryAfter: time.Millisecond},
			&RateLimitedError{RetryAfter: time.Millisecond},
			&RateLimitedError{RetryAfter: time.Millisecond},
		},
	}
	assembler := NewAssembler(provider, AssemblerConfig{Attempts: 3}, discardLogger())

	messages := assembler.Build(context.Background(), "C1", "1.0")
	if messages != nil {
		t.Fatalf("expected empty window, got %v", messages)
	}
	if provider.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", provider.calls)
	}
}

func TestBuildNonRetryableFailureReturnsEmpty(t *testing.T) {
	provider := &fakeProvider{failures: []error{errors.New("channel_not_found")}}
	assembler := NewAssembler(provider, AssemblerConfig{Attempts: 3}, discardLogger())

	if messages := assembler.Build(context.Background(), "C1", "1.0"); messages != nil {
		t.Fatalf("expected empty window, got %v", messages)
	}
	if provider.calls != 1 {
		t.Fatalf("non-retryable failure should not retry, calls=%d", provider.calls)
	}
}

func TestFoldExcludesBotsAndReversesOrder(t *testing.T) {
	// Provider order is newest first.
	history := []Message{
		{Author: "u3", Text: "third"},
		{Author: "", Text: "bot ping", IsBot: true},
		{Author: "u2", Text: "second"},
		{Author: "bot", Text: "bot pong", IsBot: true},
		{Author: "u1", Text: "first"},
	}

	folded := Fold(history)
	lines := strings.Split(folded, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected exactly 3 lines, got %d: %q", len(lines), folded)
	}
	want := []string{"u1: first", "u2: second", "u3: third"}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestFoldSkipsEmptyTexts(t *testing.T) {
	history := []Message{
		{Author: "u2", Text: "  "},
		{Author: "u1", Text: "hello"},
	}
	if folded := Fold(history); folded != "u1: hello" {
		t.Fatalf("folded = %q", folded)
	}
}

func TestTextsChronological(t *testing.T) {
	history := []Message{
		{Timestamp: "3.0", Author: "u2", Text: "later"},
		{Timestamp: "2.0", Author: "bot", Text: "noise", IsBot: true},
		{Timestamp: "1.0", Author: "u1", Text: "earlier"},
	}
	texts := Texts(history, "")
	if len(texts) != 2 || texts[0] != "earlier" || texts[1] != "later" {
		t.Fatalf("texts = %v", texts)
	}
}

func TestTextsExcludesAnchor(t *testing.T) {
	history := []Message{
		{Timestamp: "3.0", Author: "u1", Text: "newest"},
		{Timestamp: "2.0", Author: "u2", Text: "middle"},
		{Timestamp: "1.0", Author: "u1", Text: "oldest"},
	}
	texts := Texts(history, "3.0")
	if len(texts) != 2 || texts[0] != "oldest" || texts[1] != "middle" {
		t.Fatalf("texts = %v", texts)
	}
}
