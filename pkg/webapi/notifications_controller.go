package webapi

import (
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/arsipku/arsipd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type NotificationsController struct {
	hub *notify.SSEHub
}

func NewNotificationsController(hub *notify.SSEHub) *NotificationsController {
	return &NotificationsController{hub: hub}
}

// Stream keeps an SSE connection open for the actor until the client leaves.
func (c *NotificationsController) Stream(ctx echo.Context) error {
	actor, ok := apimiddleware.Actor(ctx)
	if !ok {
		return echo.ErrUnauthorized
	}

	c.hub.ServeStream(ctx.Response(), ctx.Request(), actor.ID)
	return nil
}
