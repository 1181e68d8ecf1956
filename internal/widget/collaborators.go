package widget

import (
	"context"

	"github.com/webtoolkit/convkit/internal/convsdk"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(msg string)
}

// Indicator is the blocking progress indicator. Show and Hide are idempotent.
type Indicator interface {
	Show()
	Hide()
}

// Transport performs the network round trip.
type Transport interface {
	Post(ctx context.Context, endpoint string, form *convsdk.Form) (*convsdk.Response, error)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopIndicator struct{}

func (nopIndicator) Show() {}
func (nopIndicator) Hide() {}
