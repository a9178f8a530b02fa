// Package notify delivers workflow notifications to users and role holders.
// Delivery is best effort: callers log failures and carry on.
package notify

import (
	"context"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
)

const (
	CategoryApprovalRequest = "pemindahan.approval_request"
	CategoryTransferDone    = "pemindahan.completed"
)

type Message struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeepLink string `json:"deep_link"`
	Category string `json:"category"`
}

type Dispatcher interface {
	// NotifyRole notifies every holder of role. A nil unitID addresses holders
	// in all units.
	NotifyRole(ctx context.Context, role arsipmodel.Role, unitID *int, msg Message) error
	NotifyUser(ctx context.Context, userID int, msg Message) error
}
