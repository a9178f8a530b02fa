package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/go-resty/resty/v2"
)

// HTTPDispatcher posts notifications to an external notification service.
type HTTPDispatcher struct {
	rClient *resty.Client
}

type roleNotification struct {
	Role   arsipmodel.Role `json:"role"`
	UnitID *int            `json:"unit_id"`
	Message
}

type userNotification struct {
	UserID int `json:"user_id"`
	Message
}

type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func NewHTTPDispatcher(baseURL string) *HTTPDispatcher {
	return &HTTPDispatcher{
		rClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

func (d *HTTPDispatcher) NotifyRole(ctx context.Context, role arsipmodel.Role, unitID *int, msg Message) error {
	return d.post(ctx, "/notifications/role", roleNotification{Role: role, UnitID: unitID, Message: msg})
}

func (d *HTTPDispatcher) NotifyUser(ctx context.Context, userID int, msg Message) error {
	return d.post(ctx, "/notifications/user", userNotification{UserID: userID, Message: msg})
}

func (d *HTTPDispatcher) post(ctx context.Context, path string, body any) error {
	var errResp ErrorResponse

	resp, err := d.rClient.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&errResp).
		Post(path)

	switch {
	case err != nil:
		return err
	case resp.IsError():
		if errResp.Error != "" {
			return fmt.Errorf("notification service %s: %d %s", path, resp.StatusCode(), errResp.Error)
		}
		return fmt.Errorf("notification service %s: %d", path, resp.StatusCode())
	default:
		return nil
	}
}
