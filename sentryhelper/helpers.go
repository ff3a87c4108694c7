// Package sentryhelper scopes Sentry transactions and breadcrumbs to a single
// menu command.
package sentryhelper

import (
	"context"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
)

// StartCommandTransaction starts a transaction for one menu command on a
// cloned hub, so breadcrumbs from one command don't leak into the next.
func StartCommandTransaction(ctx context.Context, commandName string, sessionID string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = sentry.SetHubOnContext(ctx, hub)

	transaction := sentry.StartTransaction(ctx, fmt.Sprintf("jukebox.command.%s", commandName),
		sentry.WithOpName("jukebox.command"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	transaction.SetTag("command", commandName)
	transaction.SetTag("session_id", sessionID)

	hub.Scope().SetSpan(transaction)

	return transaction.Context(), transaction
}

// HubFromContext returns the command's hub, or the current hub outside a command.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func AddBreadcrumb(ctx context.Context, category, message string) {
	HubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
	}, nil)
}

// CaptureException reports err on the command's hub so the event carries the
// command's breadcrumbs and tags.
func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}
