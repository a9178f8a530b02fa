package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipdbtest"
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/arsipku/arsipd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	f          *arsipdbtest.Fixture
	svc        *pemindahan.Service
	controller *PemindahanController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f := arsipdbtest.New(t)
	f.AddClassification(t, "045", "Surat", 2, "Musnah")

	svc := pemindahan.NewService(f.Stors, klasifikasi.NewResolver(f.Stors.ClassificationStor), notify.NewLogDispatcher(),
		pemindahan.Settings{ApprovalPollInterval: 10 * time.Millisecond})

	return &testEnv{f: f, svc: svc, controller: NewPemindahanController(svc)}
}

// setupEchoContext creates a test Echo context for a request made by actor.
// params are path parameter name/value pairs.
func setupEchoContext(t *testing.T, method, target string, body []byte, actor *arsipmodel.User, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = NewRequestValidator()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if actor != nil {
		c.Set(apimiddleware.ActorKey, actor)
	}

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c, rec
}

func (e *testEnv) openProcess(t *testing.T) *arsipmodel.TransferProcess {
	t.Helper()

	view, err := e.svc.Open(context.Background(), e.f.Owner)
	require.NoError(t, err)
	return view.Process
}

// processAtApproval returns a process with one record and a memo that is
// waiting on its approvers.
func (e *testEnv) processAtApproval(t *testing.T, number string) *arsipmodel.TransferProcess {
	t.Helper()

	ctx := context.Background()
	a := e.f.AddActiveArchive(t, arsipmodel.ActiveArchive{ClassificationCode: "045", ActiveEnd: "31-12-2023"})
	p := e.openProcess(t)

	_, err := e.svc.Toggle(ctx, e.f.Owner, p.ID, a.ID)
	require.NoError(t, err)
	_, err = e.svc.Next(ctx, e.f.Owner, p.ID)
	require.NoError(t, err)
	_, err = e.svc.SetMemo(ctx, e.f.Owner, p.ID, arsipmodel.BeritaAcara{Number: number, Date: "2024-02-01"})
	require.NoError(t, err)
	view, err := e.svc.Next(ctx, e.f.Owner, p.ID)
	require.NoError(t, err)

	return view.Process
}

func id(p *arsipmodel.TransferProcess) string {
	return strconv.Itoa(p.ID)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func asHTTPError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()

	httpErr, ok := err.(*echo.HTTPError)
	require.Truef(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return httpErr
}
