package summary

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeNotifier struct {
	channels []string
	texts    []string
}

func (f *fakeNotifier) Notify(ctx context.Context, channel, text string) error {
	f.channels = append(f.channels, channel)
	f.texts = append(f.texts, text)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunDigestAveragesAndClears(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()
	store.Append("u1", 0.8, now)
	store.Append("u1", 0.2, now)

	notifier := &fakeNotifier{}
	service := New(store, notifier, "@weekly", discardLogger())
	service.RunDigest(context.Background())

	if len(notifier.texts) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.texts))
	}
	if notifier.channels[0] != "u1" {
		t.Fatalf("digest sent to %q", notifier.channels[0])
	}
	if !strings.Contains(notifier.texts[0], "0.50") {
		t.Fatalf("digest should report the 0.50 average: %q", notifier.texts[0])
	}
	if !strings.Contains(notifier.texts[0], "room for improvement") {
		t.Fatalf("average 0.5 selects the middle tier: %q", notifier.texts[0])
	}
	if store.Len() != 0 {
		t.Fatalf("log must be empty after drain, len=%d", store.Len())
	}
}

func TestRunDigestSendsOnePerUser(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()
	store.Append("u1", 0.9, now)
	store.Append("u2", 0.1, now)

	notifier := &fakeNotifier{}
	New(store, notifier, "", discardLogger()).RunDigest(context.Background())

	if len(notifier.texts) != 2 {
		t.Fatalf("expected two digests, got %d", len(notifier.texts))
	}
}

func TestRunDigestEmptyStoreSendsNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	New(NewStore(), notifier, "", discardLogger()).RunDigest(context.Background())
	if len(notifier.texts) != 0 {
		t.Fatalf("nothing to send, got %v", notifier.texts)
	}
}

func TestDigestTiers(t *testing.T) {
	cases := []struct {
		average float64
		want    string
	}{
		{0.85, "reflecting on your tone"},
		{0.7, "reflecting on your tone"},
		{0.5, "room for improvement"},
		{0.4, "room for improvement"},
		{0.1, "Great job"},
	}
	for _, tc := range cases {
		if got := digestText(tc.average); !strings.Contains(got, tc.want) {
			t.Errorf("digestText(%.2f) = %q, want substring %q", tc.average, got, tc.want)
		}
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	service := New(NewStore(), &fakeNotifier{}, "not a schedule", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := service.Start(ctx); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

type ctxCapturingNotifier struct {
	ctxs chan context.Context
}

func (n *ctxCapturingNotifier) Notify(ctx context.Context, channel, text string) error {
	n.ctxs <- ctx
	return nil
}

func TestScheduledDigestRunsOnStartContext(t *testing.T) {
	store := NewStore()
	store.Append("u1", 0.9, time.Now().UTC())

	notifier := &ctxCapturingNotifier{ctxs: make(chan context.Context, 1)}
	service := New(store, notifier, "@every 10ms", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	var digestCtx context.Context
	select {
	case digestCtx = <-notifier.ctxs:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled digest never ran")
	}
	if digestCtx.Err() != nil {
		t.Fatalf("digest context canceled before shutdown: %v", digestCtx.Err())
	}

	cancel()
	select {
	case <-digestCtx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("digest context must stop with the service")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	service := New(NewStore(), &fakeNotifier{}, "@weekly", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}
