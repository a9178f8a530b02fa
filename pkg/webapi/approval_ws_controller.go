package webapi

import (
	"context"
	"errors"
	"time"

	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ApprovalWSController pushes approval changes of a process waiting on its
// approvers to the owner's browser.
type ApprovalWSController struct {
	svc      *pemindahan.Service
	upgrader websocket.Upgrader
}

func NewApprovalWSController(svc *pemindahan.Service) *ApprovalWSController {
	return &ApprovalWSController{
		svc:      svc,
		upgrader: websocket.Upgrader{},
	}
}

// WatchApproval sends one pemindahan.ApprovalUpdate per change. The socket is
// closed normally once the process may leave the approval step or has left
// it. Closing the socket from the client stops the poll.
func (c *ApprovalWSController) WatchApproval(ctx echo.Context) error {
	actor, processID, err := actorAndProcessID(ctx)
	if err != nil {
		return err
	}

	// Ownership and existence are reported as plain HTTP before upgrading.
	if _, err := c.svc.Get(ctx.Request().Context(), actor, processID); err != nil {
		return respondError(ctx, err)
	}

	ws, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	defer ws.Close()

	watchCtx, cancel := context.WithCancel(ctx.Request().Context())
	defer cancel()

	// Clients send nothing; a failed read means the socket went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = c.svc.WatchApproval(watchCtx, actor, processID, func(u pemindahan.ApprovalUpdate) error {
		return writeJSON(ws, u)
	})

	switch {
	case err == nil:
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "approval settled")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	case errors.Is(err, context.Canceled):
	default:
		clog.Global().Warnf("Approval watch for process %d ended: %s", processID, err)
	}

	return nil
}

func writeJSON(ws *websocket.Conn, v any) error {
	_ = ws.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return ws.WriteJSON(v)
}
