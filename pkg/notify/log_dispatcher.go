package notify

import (
	"context"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/clog"
)

// LogDispatcher only logs. It is the dispatcher used when no notification
// service is configured.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) NotifyRole(_ context.Context, role arsipmodel.Role, unitID *int, msg Message) error {
	entry := clog.UsingCtx("notify").
		WithField("role", role).
		WithField("category", msg.Category).
		WithField("link", msg.DeepLink)
	if unitID != nil {
		entry = entry.WithField("unit_id", *unitID)
	}

	entry.Info(msg.Title)
	return nil
}

func (d *LogDispatcher) NotifyUser(_ context.Context, userID int, msg Message) error {
	clog.UsingCtx("notify").
		WithField("user_id", userID).
		WithField("category", msg.Category).
		WithField("link", msg.DeepLink).
		Info(msg.Title)
	return nil
}
