// Package notification sends the outcome of test runs to chat services.
package notification

import (
	"context"

	"github.com/hammingai/hammingctl/internal/report"
)

// Reporter represents common interface for sending notifications.
type Reporter interface {
	report.Reporter
	SendMessage(ctx context.Context, passed bool)
}
