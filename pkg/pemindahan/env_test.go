package pemindahan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipdbtest"
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	role   arsipmodel.Role
	unitID *int
	userID int
	msg    notify.Message
	ctxErr error
}

// recordingNotifier records what it is asked to send after waiting delay.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []sentNotification
	err   error
	delay time.Duration
}

func (n *recordingNotifier) record(ctx context.Context, sent sentNotification) error {
	n.mu.Lock()
	delay := n.delay
	n.mu.Unlock()

	time.Sleep(delay)

	n.mu.Lock()
	defer n.mu.Unlock()
	sent.ctxErr = ctx.Err()
	n.sent = append(n.sent, sent)
	return n.err
}

func (n *recordingNotifier) NotifyRole(ctx context.Context, role arsipmodel.Role, unitID *int, msg notify.Message) error {
	return n.record(ctx, sentNotification{role: role, unitID: unitID, msg: msg})
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, userID int, msg notify.Message) error {
	return n.record(ctx, sentNotification{userID: userID, msg: msg})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

// flakyTransferStor fails completions while fail is set.
type flakyTransferStor struct {
	stor.TransferStor
	mu   sync.Mutex
	fail error
}

func (s *flakyTransferStor) CompleteTransfer(c *stor.TransferCompletion) error {
	s.mu.Lock()
	err := s.fail
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.TransferStor.CompleteTransfer(c)
}

func (s *flakyTransferStor) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

type testEnv struct {
	f        *arsipdbtest.Fixture
	stors    *stor.Stors
	transfer *flakyTransferStor
	notifier *recordingNotifier
	svc      *Service
	ctx      context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f := arsipdbtest.New(t)
	f.AddClassification(t, "045", "Surat", 2, "Musnah")
	f.AddClassification(t, "000.5.1", "Laporan Kinerja", 7, "Permanen")

	stors := *f.Stors
	transfer := &flakyTransferStor{TransferStor: f.Stors.TransferStor}
	stors.TransferStor = transfer

	notifier := &recordingNotifier{}
	svc := NewService(&stors, klasifikasi.NewResolver(stors.ClassificationStor), notifier, Settings{
		ApprovalPollInterval: 10 * time.Millisecond,
		AppURL:               "https://arsip.test/",
	})

	return &testEnv{f: f, stors: &stors, transfer: transfer, notifier: notifier, svc: svc, ctx: context.Background()}
}

func (e *testEnv) archive(t *testing.T, a arsipmodel.ActiveArchive) *arsipmodel.ActiveArchive {
	t.Helper()
	return e.f.AddActiveArchive(t, a)
}

func (e *testEnv) open(t *testing.T) *View {
	t.Helper()

	view, err := e.svc.Open(e.ctx, e.f.Owner)
	require.NoError(t, err)
	return view
}

// notifications returns what was sent once all pending sends are done.
func (e *testEnv) notifications() []sentNotification {
	e.svc.WaitForNotifications()
	return e.notifier.all()
}

func (e *testEnv) reload(t *testing.T, processID int) *arsipmodel.TransferProcess {
	t.Helper()

	p, err := e.stors.TransferProcessStor.GetProcessByID(processID)
	require.NoError(t, err)
	return p
}

// driveToDestination selects ids, composes memo number, gets both approvals
// and sets the destination, leaving the process on step 4.
func (e *testEnv) driveToDestination(t *testing.T, number string, ids ...int) *arsipmodel.TransferProcess {
	t.Helper()

	p := e.open(t).Process
	for _, id := range ids {
		_, err := e.svc.Toggle(e.ctx, e.f.Owner, p.ID, id)
		require.NoError(t, err)
	}

	_, err := e.svc.Next(e.ctx, e.f.Owner, p.ID)
	require.NoError(t, err)

	_, err = e.svc.SetMemo(e.ctx, e.f.Owner, p.ID, arsipmodel.BeritaAcara{Number: number, Date: "01-02-2024", LegalBasis: "Perka ANRI 9/2018"})
	require.NoError(t, err)

	_, err = e.svc.Next(e.ctx, e.f.Owner, p.ID)
	require.NoError(t, err)
	e.svc.WaitForNotifications()

	e.f.Approve(t, p.ID)

	_, err = e.svc.Next(e.ctx, e.f.Owner, p.ID)
	require.NoError(t, err)

	view, err := e.svc.SetDestination(e.ctx, e.f.Owner, p.ID, arsipmodel.PemindahanInfo{Location: "Gudang A", BoxNumber: "B-12", Category: "Umum"})
	require.NoError(t, err)
	require.Equal(t, arsipmodel.StepComposeDestination, view.Process.CurrentStep)

	return view.Process
}
