package sentryhelper

import (
	"context"
	"errors"
	"sync"
	"testing"

	sentry "github.com/getsentry/sentry-go"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *eventRecorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// bindRecorder points the current hub at a client that records events
// instead of sending them.
func bindRecorder(t *testing.T) *eventRecorder {
	t.Helper()
	t.Setenv("SENTRY_DSN", "")
	rec := &eventRecorder{}
	client, err := sentry.NewClient(sentry.ClientOptions{BeforeSend: rec.beforeSend})
	if err != nil {
		t.Fatalf("sentry.NewClient: %v", err)
	}
	hub := sentry.CurrentHub()
	previous := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(previous) })
	return rec
}

func TestCaptureExceptionCarriesCommandBreadcrumbs(t *testing.T) {
	rec := bindRecorder(t)

	ctx, span := StartCommandTransaction(context.Background(), "Play", "session-1")
	defer span.Finish()
	AddBreadcrumb(ctx, "menu", "Play")

	if id := CaptureException(ctx, errors.New("download failed")); id == nil {
		t.Fatal("CaptureException() returned no event ID")
	}

	if len(rec.events) != 1 {
		t.Fatalf("captured %d events; want 1", len(rec.events))
	}
	crumbs := rec.events[0].Breadcrumbs
	if len(crumbs) != 1 || crumbs[0].Message != "Play" || crumbs[0].Category != "menu" {
		t.Errorf("breadcrumbs = %+v; want the menu command", crumbs)
	}
}

func TestCommandBreadcrumbsStayOnTheirHub(t *testing.T) {
	rec := bindRecorder(t)

	first, span := StartCommandTransaction(context.Background(), "Play", "session-1")
	AddBreadcrumb(first, "menu", "Play")
	span.Finish()

	second, span := StartCommandTransaction(context.Background(), "Stop", "session-1")
	defer span.Finish()
	CaptureException(second, errors.New("boom"))

	if len(rec.events) != 1 {
		t.Fatalf("captured %d events; want 1", len(rec.events))
	}
	if crumbs := rec.events[0].Breadcrumbs; len(crumbs) != 0 {
		t.Errorf("second command saw breadcrumbs from the first: %+v", crumbs)
	}
	if sentry.CurrentHub().Scope() == HubFromContext(second).Scope() {
		t.Error("command hub shares its scope with the current hub")
	}
}

func TestHubFromContextFallsBackToCurrentHub(t *testing.T) {
	if got := HubFromContext(context.Background()); got != sentry.CurrentHub() {
		t.Error("HubFromContext() without a command hub should return the current hub")
	}
}
