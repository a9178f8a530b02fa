package webapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipdbtest"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStream(t *testing.T) {
	f := arsipdbtest.New(t)
	controller := NewNotificationsController(notify.NewSSEHub(f.Stors.UserStor))

	ctx, _ := setupEchoContext(t, http.MethodGet, "/api/notifications/sse", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, asHTTPError(t, controller.Stream(ctx)).Code)

	ctx, rec := setupEchoContext(t, http.MethodGet, "/api/notifications/sse", nil, f.Owner)
	done, cancel := context.WithCancel(context.Background())
	cancel()
	ctx.SetRequest(ctx.Request().WithContext(done))

	require.NoError(t, controller.Stream(ctx))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: connected")
}
