// Package pemindahan implements the transfer of active archives to inactive
// storage: a five step process per records officer, gated on two approvals
// and finished by a single idempotent migration.
package pemindahan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/arsipku/arsipd/pkg/lock"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/arsipku/arsipd/pkg/retensi"
	"github.com/gosimple/slug"
)

var ErrWrongStep = errors.New("operation not available at the current step")

const (
	WarnSelectionEmptied  = "all selected archives are no longer available, the transfer is back at record selection"
	WarnMigrationInFlight = "migration is already running"
)

type Settings struct {
	ApprovalPollInterval time.Duration
	// AppURL prefixes deep links in notifications.
	AppURL string
	// MigrationLogDir, when set, receives one log file per migrated process.
	MigrationLogDir string
}

// View is what every operation returns: the persisted process plus anything
// the user should be told about it.
type View struct {
	Process  *arsipmodel.TransferProcess `json:"process"`
	Warnings []string                    `json:"warnings,omitempty"`
	Result   *MigrationResult            `json:"result,omitempty"`
}

type Service struct {
	stors    *stor.Stors
	selector *Selector
	executor *Executor
	watcher  *ApprovalWatcher
	resolver ClassificationResolver
	notifier notify.Dispatcher
	// locker serializes every load-modify-save on a process. migrations is
	// held only while an executor run is queued or running.
	locker        *lock.IdLocker
	migrations    *lock.IdLocker
	notifications sync.WaitGroup
	settings      Settings
}

func NewService(stors *stor.Stors, resolver ClassificationResolver, notifier notify.Dispatcher, settings Settings) *Service {
	if notifier == nil {
		notifier = notify.NewLogDispatcher()
	}

	return &Service{
		stors:    stors,
		selector: NewSelector(stors.ActiveArchiveStor, stors.TransferLinkStor),
		executor: NewExecutor(stors, resolver, ExecutorOptions{LogDir: settings.MigrationLogDir}),
		watcher:  NewApprovalWatcher(stors.TransferProcessStor, settings.ApprovalPollInterval),
		resolver: resolver,
		notifier: notifier,
		locker:     lock.NewIdLocker(),
		migrations: lock.NewIdLocker(),
		settings:   settings,
	}
}

// Open resumes the most recent incomplete process of actor, or starts one.
// The selection is revalidated first and pruned of archives that were
// deleted or transferred elsewhere.
func (s *Service) Open(ctx context.Context, actor *arsipmodel.User) (*View, error) {
	p, err := s.stors.TransferProcessStor.GetOpenProcessForOwner(actor.ID)
	switch {
	case stor.IsRecordNotFound(err):
		return s.create(actor)
	case err != nil:
		return nil, err
	}

	var warnings []string
	view, err := s.mutate(actor, p.ID, func(p *arsipmodel.TransferProcess) error {
		if p.Completed {
			return nil
		}

		var rerr error
		warnings, rerr = s.revalidate(ctx, p)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	// Completed by a migration that finished while we waited for the lock.
	if view.Process.Completed {
		return s.create(actor)
	}

	view.Warnings = warnings
	return view, nil
}

func (s *Service) create(actor *arsipmodel.User) (*View, error) {
	p, err := s.stors.TransferProcessStor.CreateProcess(&arsipmodel.TransferProcess{
		OwnerID: actor.ID,
		UnitID:  actor.UnitID,
	})
	if err != nil {
		return nil, err
	}

	clog.UsingCtx(logCtx(p)).WithField("owner", actor.ID).Info("transfer process created")

	return &View{Process: p}, nil
}

func (s *Service) revalidate(ctx context.Context, p *arsipmodel.TransferProcess) ([]string, error) {
	kept, dropped, err := s.selector.Revalidate(ctx, p.SelectedIDs)
	if err != nil || len(dropped) == 0 {
		return nil, err
	}

	p.SelectedIDs = kept
	warning := fmt.Sprintf("%d selected archives are no longer available and were removed: %s", len(dropped), joinIDs(dropped))
	if len(kept) == 0 && p.CurrentStep != arsipmodel.StepSelectRecords {
		p.CurrentStep = arsipmodel.StepSelectRecords
		warning = WarnSelectionEmptied
	}

	if err := s.stors.TransferProcessStor.SaveProcess(p); err != nil {
		return nil, err
	}

	clog.UsingCtx(logCtx(p)).WithField("dropped", joinIDs(dropped)).Warn("selection pruned")

	return []string{warning}, nil
}

// Get returns a process of actor. Completed processes include the memo and
// the inactive archives they produced.
func (s *Service) Get(_ context.Context, actor *arsipmodel.User, processID int) (*View, error) {
	p, err := s.load(actor, processID)
	if err != nil {
		return nil, err
	}

	view := &View{Process: p}
	if !p.WasMigrated() || p.MemoID == nil {
		return view, nil
	}

	memo, err := s.stors.TransferMemoStor.GetMemoByNumber(p.Memo.Number)
	if err != nil {
		return nil, err
	}

	records, err := s.stors.InactiveArchiveStor.ListInactiveArchivesForMemo(*p.MemoID)
	if err != nil {
		return nil, err
	}

	view.Result = &MigrationResult{Memo: memo, Records: records}
	return view, nil
}

func (s *Service) Candidates(ctx context.Context, actor *arsipmodel.User, processID int, filter CandidateFilter) (*CandidatePage, error) {
	p, err := s.load(actor, processID)
	if err != nil {
		return nil, err
	}

	return s.selector.List(ctx, p.UnitID, p.SelectedIDs, filter)
}

// Toggle selects recordID, or deselects it when already selected. Only
// eligible archives of the process unit can be selected.
func (s *Service) Toggle(ctx context.Context, actor *arsipmodel.User, processID, recordID int) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if err := requireStep(p, arsipmodel.StepSelectRecords); err != nil {
			return err
		}

		if !p.IsSelected(recordID) {
			if err := s.selector.CheckEligible(ctx, p.UnitID, recordID); err != nil {
				return err
			}
		}

		p.SelectedIDs = Toggle(p.SelectedIDs, recordID)
		return s.stors.TransferProcessStor.SaveProcess(p)
	})
}

// SelectAll selects every candidate visible under filter.
func (s *Service) SelectAll(ctx context.Context, actor *arsipmodel.User, processID int, filter CandidateFilter) (*View, error) {
	return s.selectVisible(ctx, actor, processID, filter, SelectAll)
}

// DeselectAll deselects every candidate visible under filter.
func (s *Service) DeselectAll(ctx context.Context, actor *arsipmodel.User, processID int, filter CandidateFilter) (*View, error) {
	return s.selectVisible(ctx, actor, processID, filter, DeselectAll)
}

func (s *Service) selectVisible(ctx context.Context, actor *arsipmodel.User, processID int, filter CandidateFilter,
	apply func(selected, visible []int) []int) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if err := requireStep(p, arsipmodel.StepSelectRecords); err != nil {
			return err
		}

		page, err := s.selector.List(ctx, p.UnitID, p.SelectedIDs, filter)
		if err != nil {
			return err
		}

		p.SelectedIDs = apply(p.SelectedIDs, page.IDs())
		return s.stors.TransferProcessStor.SaveProcess(p)
	})
}

// SetMemo stores the memo of the process. The date is normalized to the
// storage layout.
func (s *Service) SetMemo(_ context.Context, actor *arsipmodel.User, processID int, memo arsipmodel.BeritaAcara) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if err := requireStep(p, arsipmodel.StepComposeMemo); err != nil {
			return err
		}

		memo.Number = strings.TrimSpace(memo.Number)
		memo.LegalBasis = strings.TrimSpace(memo.LegalBasis)
		memo.Note = strings.TrimSpace(memo.Note)
		if memo.Date = strings.TrimSpace(memo.Date); memo.Date != "" {
			d, ok := retensi.ParseDate(memo.Date)
			if !ok {
				return &ValidationError{Field: "tanggal_berita_acara", Message: "is not a date"}
			}
			memo.Date = d.Format(retensi.StorageLayout)
		}

		p.Memo = memo
		return s.stors.TransferProcessStor.SaveProcess(p)
	})
}

// SetDestination stores the process level destination. Per record edits are
// kept; they are changed through SetRecordEdit.
func (s *Service) SetDestination(_ context.Context, actor *arsipmodel.User, processID int, info arsipmodel.PemindahanInfo) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if err := requireStep(p, arsipmodel.StepComposeDestination); err != nil {
			return err
		}

		p.Destination.Location = strings.TrimSpace(info.Location)
		p.Destination.BoxNumber = strings.TrimSpace(info.BoxNumber)
		p.Destination.Category = strings.TrimSpace(info.Category)
		p.Destination.Note = strings.TrimSpace(info.Note)
		return s.stors.TransferProcessStor.SaveProcess(p)
	})
}

// SetRecordEdit replaces the overrides of one selected archive. An edit with
// no fields set removes the overrides.
func (s *Service) SetRecordEdit(_ context.Context, actor *arsipmodel.User, processID, recordID int, edit arsipmodel.PerRecordEdit) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if err := requireStep(p, arsipmodel.StepComposeDestination); err != nil {
			return err
		}

		if !p.IsSelected(recordID) {
			return &ValidationError{Field: "record_id", RecordID: recordID, Message: "is not selected"}
		}

		if edit.InactiveYears != nil && *edit.InactiveYears < 0 {
			return &ValidationError{Field: "masa_retensi_inaktif", RecordID: recordID, Message: "must not be negative"}
		}

		if p.Destination.RecordEdits == nil {
			p.Destination.RecordEdits = make(map[int]arsipmodel.PerRecordEdit)
		}

		if edit == (arsipmodel.PerRecordEdit{}) {
			delete(p.Destination.RecordEdits, recordID)
		} else {
			p.Destination.RecordEdits[recordID] = edit
		}

		return s.stors.TransferProcessStor.SaveProcess(p)
	})
}

type RecordPreview struct {
	NomorBerkas   int                      `json:"nomor_berkas"`
	Archive       arsipmodel.ActiveArchive `json:"arsip_aktif"`
	Effective     Effective                `json:"effective"`
	InactiveStart string                   `json:"jangka_simpan_inaktif_mulai,omitempty"`
	InactiveEnd   string                   `json:"jangka_simpan_inaktif_selesai,omitempty"`
	Problems      []*ValidationError       `json:"problems,omitempty"`
}

// Preview shows the selected archives in migration order with their
// effective values and what still blocks the migration.
func (s *Service) Preview(_ context.Context, actor *arsipmodel.User, processID int) ([]RecordPreview, error) {
	p, err := s.load(actor, processID)
	if err != nil {
		return nil, err
	}

	archives, err := s.stors.ActiveArchiveStor.GetActiveArchivesByIDs(p.SelectedIDs)
	if err != nil {
		return nil, err
	}

	SortForNumbering(archives)

	previews := make([]RecordPreview, 0, len(archives))
	for i := range archives {
		eff, err := MergeFor(s.resolver, &archives[i], p.Destination)
		if err != nil {
			return nil, err
		}

		preview := RecordPreview{
			NomorBerkas: i + 1,
			Archive:     archives[i],
			Effective:   eff,
			Problems:    ValidationErrors(eff.Validate()),
		}

		if eff.InactiveYears.Value != nil {
			if period, ok := retensi.DeriveInactivePeriod(archives[i].ActiveEnd, *eff.InactiveYears.Value); ok {
				preview.InactiveStart = period.DisplayStart()
				preview.InactiveEnd = period.DisplayEnd()
			}
		}

		previews = append(previews, preview)
	}

	return previews, nil
}

// Next leaves the current step once its exit condition holds. Leaving step
// 4 runs the migration; calling Next while it runs, or after it completed,
// changes nothing.
func (s *Service) Next(ctx context.Context, actor *arsipmodel.User, processID int) (*View, error) {
	p, err := s.load(actor, processID)
	if err != nil {
		return nil, err
	}

	if p.CurrentStep >= arsipmodel.StepComposeDestination || p.Completed {
		return s.runMigration(ctx, actor, processID, false)
	}

	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		return s.advance(ctx, p)
	})
}

func (s *Service) advance(ctx context.Context, p *arsipmodel.TransferProcess) error {
	if p.Completed {
		return ErrProcessCompleted
	}

	switch p.CurrentStep {
	case arsipmodel.StepSelectRecords:
		if len(p.SelectedIDs) == 0 {
			return required("selected_ids", 0)
		}

	case arsipmodel.StepComposeMemo:
		if err := s.checkMemo(p); err != nil {
			return err
		}

	case arsipmodel.StepAwaitApproval:
		if err := CheckApproval(p.Approval); err != nil {
			return err
		}

	default:
		// Steps 4 and 5 moved on under us; runMigration owns them.
		return nil
	}

	from := p.CurrentStep
	p.CurrentStep++
	p.Status = arsipmodel.ProcessIdle
	p.StatusMessage = ""

	if p.CurrentStep == arsipmodel.StepAwaitApproval && p.ApproversNotifiedAt == nil {
		s.notifyApprovers(ctx, p)
		now := time.Now()
		p.ApproversNotifiedAt = &now
	}

	if err := s.stors.TransferProcessStor.SaveProcess(p); err != nil {
		return err
	}

	clog.UsingCtx(logCtx(p)).WithField("from", from).WithField("to", p.CurrentStep).Info("step advanced")
	return nil
}

func (s *Service) checkMemo(p *arsipmodel.TransferProcess) error {
	var errs []error
	if strings.TrimSpace(p.Memo.Number) == "" {
		errs = append(errs, required("nomor_berita_acara", 0))
	}

	if strings.TrimSpace(p.Memo.Date) == "" {
		errs = append(errs, required("tanggal_berita_acara", 0))
	}

	if err := joinValidation(errs); err != nil {
		return err
	}

	memo, err := s.stors.TransferMemoStor.GetMemoByNumber(p.Memo.Number)
	switch {
	case stor.IsRecordNotFound(err):
		return nil
	case err != nil:
		return err
	case memo.ProcessID != p.ID:
		return memoNumberUsed(p.Memo.Number, stor.ErrDuplicateMemoNumber)
	default:
		return nil
	}
}

// Retry re-runs a migration that ended in error.
func (s *Service) Retry(ctx context.Context, actor *arsipmodel.User, processID int) (*View, error) {
	return s.runMigration(ctx, actor, processID, true)
}

func (s *Service) runMigration(ctx context.Context, actor *arsipmodel.User, processID int, retry bool) (*View, error) {
	var view *View

	ran, err := s.migrations.TryWithLock(processID, func() error {
		return s.locker.WithLock(processID, func() error {
			var err error
			view, err = s.migrateLocked(ctx, actor, processID, retry)
			return err
		})
	})

	switch {
	case err != nil:
		return nil, err
	case !ran:
		p, err := s.load(actor, processID)
		if err != nil {
			return nil, err
		}
		return &View{Process: p, Warnings: []string{WarnMigrationInFlight}}, nil
	default:
		return view, nil
	}
}

func (s *Service) migrateLocked(ctx context.Context, actor *arsipmodel.User, processID int, retry bool) (*View, error) {
	p, err := s.load(actor, processID)
	if err != nil {
		return nil, err
	}

	if p.Completed {
		return &View{Process: p}, nil
	}

	if err := requireStep(p, arsipmodel.StepComposeDestination); err != nil {
		return nil, err
	}

	if retry && p.Status != arsipmodel.ProcessError {
		return nil, fmt.Errorf("%w: retry needs a failed migration, status is %s", ErrWrongStep, p.Status)
	}

	if err := s.checkDestination(p); err != nil {
		return nil, err
	}

	result, err := s.executor.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	s.notifyCompleted(ctx, p)
	return &View{Process: p, Result: result}, nil
}

// checkDestination validates step 4 without writing anything.
func (s *Service) checkDestination(p *arsipmodel.TransferProcess) error {
	var errs []error

	if strings.TrimSpace(p.Destination.Location) == "" {
		errs = append(errs, required("lokasi_simpan", 0))
	}

	if strings.TrimSpace(p.Destination.BoxNumber) == "" {
		errs = append(errs, required("nomor_boks", 0))
	}

	if len(p.SelectedIDs) == 0 {
		errs = append(errs, required("selected_ids", 0))
	}

	archives, err := s.stors.ActiveArchiveStor.GetActiveArchivesByIDs(p.SelectedIDs)
	if err != nil {
		return err
	}

	for i := range archives {
		eff, err := MergeFor(s.resolver, &archives[i], p.Destination)
		if err != nil {
			return err
		}

		if err := eff.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return joinValidation(errs)
}

// Back returns to the previous step. It is refused once the process is
// completed and does nothing on the first step.
func (s *Service) Back(_ context.Context, actor *arsipmodel.User, processID int) (*View, error) {
	return s.mutate(actor, processID, func(p *arsipmodel.TransferProcess) error {
		if p.Completed {
			return ErrProcessCompleted
		}

		if p.CurrentStep <= arsipmodel.StepSelectRecords {
			return nil
		}

		from := p.CurrentStep
		p.CurrentStep--
		if err := s.stors.TransferProcessStor.SaveProcess(p); err != nil {
			return err
		}

		clog.UsingCtx(logCtx(p)).WithField("from", from).WithField("to", p.CurrentStep).Info("step back")
		return nil
	})
}

// StartNew abandons processID (completes it without migration) unless it
// was migrated already, then opens the actor's next process.
func (s *Service) StartNew(ctx context.Context, actor *arsipmodel.User, processID int) (*View, error) {
	ran, err := s.migrations.TryWithLock(processID, func() error {
		return s.locker.WithLock(processID, func() error {
			p, err := s.load(actor, processID)
			if err != nil {
				return err
			}

			if p.Completed {
				return nil
			}

			p.Completed = true
			p.StatusMessage = "abandoned"
			if err := s.stors.TransferProcessStor.SaveProcess(p); err != nil {
				return err
			}

			clog.UsingCtx(logCtx(p)).WithField("step", p.CurrentStep).Info("transfer process abandoned")
			return nil
		})
	})

	switch {
	case err != nil:
		return nil, err
	case !ran:
		return nil, &ConcurrencyError{Message: WarnMigrationInFlight}
	}

	return s.Open(ctx, actor)
}

// WatchApproval streams approval changes of a process while it waits on the
// approval step. See ApprovalWatcher.Watch for when it returns.
func (s *Service) WatchApproval(ctx context.Context, actor *arsipmodel.User, processID int, onUpdate func(ApprovalUpdate) error) error {
	if _, err := s.load(actor, processID); err != nil {
		return err
	}

	return s.watcher.Watch(ctx, processID, onUpdate)
}

// mutate runs fn on a freshly loaded process while holding its lock.
func (s *Service) mutate(actor *arsipmodel.User, processID int, fn func(p *arsipmodel.TransferProcess) error) (*View, error) {
	var p *arsipmodel.TransferProcess

	err := s.locker.WithLock(processID, func() error {
		var err error
		if p, err = s.load(actor, processID); err != nil {
			return err
		}
		return fn(p)
	})

	if err != nil {
		return nil, err
	}

	return &View{Process: p}, nil
}

func (s *Service) load(actor *arsipmodel.User, processID int) (*arsipmodel.TransferProcess, error) {
	p, err := s.stors.TransferProcessStor.GetProcessByID(processID)
	if err != nil {
		return nil, err
	}

	if p.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}

	return p, nil
}

func requireStep(p *arsipmodel.TransferProcess, step arsipmodel.Step) error {
	switch {
	case p.Completed:
		return ErrProcessCompleted
	case p.CurrentStep != step:
		return fmt.Errorf("%w: needs step %s, process is at %s", ErrWrongStep, step, p.CurrentStep)
	default:
		return nil
	}
}

// WaitForNotifications blocks until every notification sent so far has been
// handed to the dispatcher.
func (s *Service) WaitForNotifications() {
	s.notifications.Wait()
}

// sendInBackground runs send on a context that keeps the values of ctx but is
// never canceled, so a finished request does not cut a notification short.
func (s *Service) sendInBackground(ctx context.Context, send func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		send(ctx)
	}()
}

func (s *Service) notifyApprovers(ctx context.Context, p *arsipmodel.TransferProcess) {
	logger := clog.UsingCtx(logCtx(p))
	unitID := p.UnitID
	msg := notify.Message{
		Title:    "Permintaan persetujuan pemindahan arsip",
		Body:     fmt.Sprintf("Berita acara %s (%d arsip) menunggu persetujuan.", p.Memo.Number, len(p.SelectedIDs)),
		DeepLink: s.deepLink(p),
		Category: notify.CategoryApprovalRequest,
	}

	s.sendInBackground(ctx, func(ctx context.Context) {
		if err := s.notifier.NotifyRole(ctx, arsipmodel.RoleKepalaBidang, &unitID, msg); err != nil {
			logger.Warnf("Unable to notify %s: %s", arsipmodel.RoleKepalaBidang, err)
		}

		if err := s.notifier.NotifyRole(ctx, arsipmodel.RoleSekretaris, nil, msg); err != nil {
			logger.Warnf("Unable to notify %s: %s", arsipmodel.RoleSekretaris, err)
		}
	})
}

func (s *Service) notifyCompleted(ctx context.Context, p *arsipmodel.TransferProcess) {
	logger := clog.UsingCtx(logCtx(p))
	ownerID := p.OwnerID
	msg := notify.Message{
		Title:    "Pemindahan arsip selesai",
		Body:     fmt.Sprintf("Berita acara %s: %d arsip dipindahkan ke arsip inaktif.", p.Memo.Number, len(p.SelectedIDs)),
		DeepLink: s.deepLink(p),
		Category: notify.CategoryTransferDone,
	}

	s.sendInBackground(ctx, func(ctx context.Context) {
		if err := s.notifier.NotifyUser(ctx, ownerID, msg); err != nil {
			logger.Warnf("Unable to notify owner %d: %s", ownerID, err)
		}
	})
}

// deepLink is <AppURL>/pemindahan/<id>/<memo number slug>.
func (s *Service) deepLink(p *arsipmodel.TransferProcess) string {
	link := strings.TrimRight(s.settings.AppURL, "/") + "/pemindahan/" + strconv.Itoa(p.ID)
	if memoSlug := slug.Make(p.Memo.Number); memoSlug != "" {
		link += "/" + memoSlug
	}
	return link
}

func logCtx(p *arsipmodel.TransferProcess) string {
	return "pemindahan-" + p.UUID
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ", ")
}
