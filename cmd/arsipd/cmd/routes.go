package cmd

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/arsipku/arsipd/pkg/webapi"
	"github.com/arsipku/arsipd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouteDependencies struct {
	stors *stor.Stors
	svc   *pemindahan.Service
	hub   *notify.SSEHub
}

func setupExternalRoutes(e *echo.Echo, deps RouteDependencies) {
	e.Use(middleware.Recover())

	actors := apimiddleware.NewActorCache(deps.stors.UserStor)
	g := e.Group("/api", apimiddleware.ActorAuth(apimiddleware.ActorAuthConfig{
		Keyname:           "apikey",
		GetUserByAPIToken: actors.GetUserByAPIToken,
	}))

	pemindahanController := webapi.NewPemindahanController(deps.svc)
	g.GET("/pemindahan/process", pemindahanController.OpenProcess)
	g.GET("/pemindahan/process/:id", pemindahanController.GetProcess)
	g.GET("/pemindahan/process/:id/candidates", pemindahanController.ListCandidates)
	g.POST("/pemindahan/process/:id/selection/toggle", pemindahanController.ToggleSelection)
	g.POST("/pemindahan/process/:id/selection/select-all", pemindahanController.SelectAll)
	g.POST("/pemindahan/process/:id/selection/deselect-all", pemindahanController.DeselectAll)
	g.PUT("/pemindahan/process/:id/memo", pemindahanController.SetMemo)
	g.PUT("/pemindahan/process/:id/destination", pemindahanController.SetDestination)
	g.PUT("/pemindahan/process/:id/records/:recordID/edit", pemindahanController.SetRecordEdit)
	g.GET("/pemindahan/process/:id/preview", pemindahanController.Preview)
	g.POST("/pemindahan/process/:id/next", pemindahanController.Next)
	g.POST("/pemindahan/process/:id/back", pemindahanController.Back)
	g.POST("/pemindahan/process/:id/retry", pemindahanController.Retry)
	g.POST("/pemindahan/process/:id/new", pemindahanController.StartNew)

	approvalController := webapi.NewApprovalWSController(deps.svc)
	g.GET("/pemindahan/process/:id/approval/ws", approvalController.WatchApproval)

	notificationsController := webapi.NewNotificationsController(deps.hub)
	g.GET("/notifications/sse", notificationsController.Stream)
}

// setupInternalRoutes serves the logging endpoints on the admin listener.
func setupInternalRoutes(e *echo.Echo, logLevel string) {
	e.Use(middleware.Recover())
	g := e.Group("/api")

	logController := webapi.NewLogController(logLevel)
	g.POST("/set-logging", logController.SetLogging)
	g.GET("/show-logging", logController.ShowCurrentLogging)
}
