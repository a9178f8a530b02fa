package pemindahan

import (
	"context"
	"fmt"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
	"github.com/arsipku/arsipd/pkg/retensi"
	"github.com/pkg/errors"
)

type ClassificationResolver interface {
	Resolve(code string) (*klasifikasi.Info, error)
}

type MigrationResult struct {
	Memo            *arsipmodel.TransferMemo     `json:"berita_acara"`
	Records         []arsipmodel.InactiveArchive `json:"arsip_inaktif"`
	AlreadyMigrated bool                         `json:"already_migrated"`
}

// Executor turns the selection of a process into inactive archives. Running
// it again with the same memo number never creates a second batch.
type Executor struct {
	stors    *stor.Stors
	resolver ClassificationResolver
	logDir   string
	now      func() time.Time
}

type ExecutorOptions struct {
	// LogDir captures the log of each run in LogDir/pemindahan-<uuid>.log.
	LogDir string
}

func NewExecutor(stors *stor.Stors, resolver ClassificationResolver, opts ExecutorOptions) *Executor {
	return &Executor{stors: stors, resolver: resolver, logDir: opts.LogDir, now: time.Now}
}

// Run migrates p. Errors before the memo is secured (a memo number held by
// another process, store failures) leave p untouched. Later failures are
// returned as *ExecutionError and persisted on p with status error.
func (e *Executor) Run(ctx context.Context, p *arsipmodel.TransferProcess) (*MigrationResult, error) {
	if e.logDir != "" {
		release, err := clog.CaptureToFile(logCtx(p), e.logDir)
		if err != nil {
			clog.Global().Warnf("Unable to open migration log for process %d in %s: %s", p.ID, e.logDir, err)
		} else {
			defer release()
		}
	}

	logger := clog.UsingCtx(logCtx(p))

	memo, reused, err := e.secureMemo(p)
	if err != nil {
		return nil, err
	}

	migrated, err := e.stors.InactiveArchiveStor.CountInactiveArchivesForMemo(memo.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "counting inactive archives for memo %s", memo.Number)
	}

	if migrated > 0 {
		logger.WithField("memo", memo.Number).Info("memo already migrated, completing process")
		return e.markAlreadyMigrated(p, memo)
	}

	if reused {
		memo.Date = p.Memo.Date
		memo.LegalBasis = p.Memo.LegalBasis
		memo.Note = p.Memo.Note
		if err := e.stors.TransferMemoStor.UpdateMemo(memo); err != nil {
			return nil, errors.Wrapf(err, "updating memo %s", memo.Number)
		}
	}

	p.Status = arsipmodel.ProcessProcessing
	p.StatusMessage = ""
	if err := e.stors.TransferProcessStor.SaveProcess(p); err != nil {
		return nil, errors.Wrapf(err, "marking process %d as processing", p.ID)
	}

	result, err := e.migrate(ctx, p, memo)
	if err != nil {
		p.Status = arsipmodel.ProcessError
		p.StatusMessage = err.Error()
		if saveErr := e.stors.TransferProcessStor.SaveProcess(p); saveErr != nil {
			logger.Errorf("Unable to persist migration failure for process %d: %s", p.ID, saveErr)
		}

		logger.WithField("memo", memo.Number).Errorf("Migration failed: %s", err)
		return nil, &ExecutionError{ProcessID: p.ID, Err: err}
	}

	logger.WithField("memo", memo.Number).WithField("records", len(result.Records)).Info("migration completed")

	return result, nil
}

// secureMemo finds or creates the memo for p.Memo.Number. A memo that another
// process owns is a ConcurrencyError. reused is true when the memo was left
// behind by an earlier run of p.
func (e *Executor) secureMemo(p *arsipmodel.TransferProcess) (memo *arsipmodel.TransferMemo, reused bool, err error) {
	memo, err = e.stors.TransferMemoStor.GetMemoByNumber(p.Memo.Number)
	switch {
	case err == nil:
		if memo.ProcessID != p.ID {
			return nil, false, memoNumberUsed(p.Memo.Number, stor.ErrDuplicateMemoNumber)
		}
		return memo, true, nil

	case !stor.IsRecordNotFound(err):
		return nil, false, errors.Wrapf(err, "looking up memo %s", p.Memo.Number)
	}

	memo, err = e.stors.TransferMemoStor.CreateMemo(&arsipmodel.TransferMemo{
		Number:      p.Memo.Number,
		Date:        p.Memo.Date,
		LegalBasis:  p.Memo.LegalBasis,
		Note:        p.Memo.Note,
		ProcessID:   p.ID,
		UnitID:      p.UnitID,
		CreatedByID: p.OwnerID,
	})

	switch {
	case errors.Is(err, stor.ErrDuplicateMemoNumber):
		return nil, false, memoNumberUsed(p.Memo.Number, err)
	case err != nil:
		return nil, false, errors.Wrapf(err, "creating memo %s", p.Memo.Number)
	}

	return memo, false, nil
}

func memoNumberUsed(number string, err error) *ConcurrencyError {
	return &ConcurrencyError{
		Message: fmt.Sprintf("memo number already used: %s", number),
		Err:     err,
	}
}

func (e *Executor) markAlreadyMigrated(p *arsipmodel.TransferProcess, memo *arsipmodel.TransferMemo) (*MigrationResult, error) {
	p.Completed = true
	p.Status = arsipmodel.ProcessCompleted
	p.StatusMessage = ""
	p.CurrentStep = arsipmodel.StepCompleted
	p.MemoID = &memo.ID
	if p.MigratedAt == nil {
		now := e.now()
		p.MigratedAt = &now
	}

	if err := e.stors.TransferProcessStor.SaveProcess(p); err != nil {
		return nil, errors.Wrapf(err, "completing process %d", p.ID)
	}

	if memo.Status != arsipmodel.MemoCompleted {
		memo.Status = arsipmodel.MemoCompleted
		if err := e.stors.TransferMemoStor.UpdateMemo(memo); err != nil {
			return nil, errors.Wrapf(err, "completing memo %s", memo.Number)
		}
	}

	records, err := e.stors.InactiveArchiveStor.ListInactiveArchivesForMemo(memo.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing inactive archives for memo %s", memo.Number)
	}

	return &MigrationResult{Memo: memo, Records: records, AlreadyMigrated: true}, nil
}

func (e *Executor) migrate(ctx context.Context, p *arsipmodel.TransferProcess, memo *arsipmodel.TransferMemo) (*MigrationResult, error) {
	archives, err := e.loadSelection(p)
	if err != nil {
		return nil, err
	}

	SortForNumbering(archives)

	records, err := e.buildRecords(p, memo, archives)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	completion := &stor.TransferCompletion{Process: p, Memo: memo, Records: records}
	if err := e.stors.TransferStor.CompleteTransfer(completion); err != nil {
		return nil, errors.Wrapf(err, "writing %d inactive archives for memo %s", len(records), memo.Number)
	}

	return &MigrationResult{Memo: completion.Memo, Records: completion.Records}, nil
}

// loadSelection fails when a selected archive was deleted or transferred by
// another process since it was selected.
func (e *Executor) loadSelection(p *arsipmodel.TransferProcess) ([]arsipmodel.ActiveArchive, error) {
	if len(p.SelectedIDs) == 0 {
		return nil, required("selected_ids", 0)
	}

	archives, err := e.stors.ActiveArchiveStor.GetActiveArchivesByIDs(p.SelectedIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading selected archives")
	}

	if len(archives) != len(p.SelectedIDs) {
		return nil, &ConcurrencyError{
			Message: fmt.Sprintf("%d of %d selected archives no longer exist", len(p.SelectedIDs)-len(archives), len(p.SelectedIDs)),
		}
	}

	links, err := e.stors.TransferLinkStor.GetLinksForActiveArchives(p.SelectedIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading transfer links")
	}

	if len(links) != 0 {
		return nil, &ConcurrencyError{
			Message: fmt.Sprintf("arsip %d has already been transferred", links[0].ActiveArchiveID),
		}
	}

	return archives, nil
}

// buildRecords numbers the sorted archives 1..n. Every record is validated
// before anything is written; the joined errors name each record and field.
func (e *Executor) buildRecords(p *arsipmodel.TransferProcess, memo *arsipmodel.TransferMemo,
	archives []arsipmodel.ActiveArchive) ([]arsipmodel.InactiveArchive, error) {
	var (
		records = make([]arsipmodel.InactiveArchive, 0, len(archives))
		invalid []error
	)

	for i := range archives {
		a := &archives[i]

		eff, err := MergeFor(e.resolver, a, p.Destination)
		if err != nil {
			return nil, err
		}

		if err := eff.Validate(); err != nil {
			invalid = append(invalid, err)
			continue
		}

		years := *eff.InactiveYears.Value
		record := arsipmodel.InactiveArchive{
			NomorBerkas:        i + 1,
			ClassificationCode: a.ClassificationCode,
			ArchiveType:        eff.ArchiveType.Value,
			Description:        a.Description,
			CreationPeriod:     a.CreationPeriod,
			Quantity:           a.Quantity,
			DevelopmentLevel:   eff.DevelopmentLevel.Value,
			InactiveYears:      years,
			FinalDisposition:   eff.FinalDisposition.Value,
			BoxNumber:          eff.BoxNumber.Value,
			Location:           p.Destination.Location,
			Category:           p.Destination.Category,
			SourceActiveID:     a.ID,
			MemoID:             memo.ID,
			ProcessID:          p.ID,
			UnitID:             p.UnitID,
			Status:             arsipmodel.StatePending,
		}

		if period, ok := retensi.DeriveInactivePeriod(a.ActiveEnd, years); ok {
			record.InactiveStart = period.StorageStart()
			record.InactiveEnd = period.StorageEnd()
		} else {
			clog.UsingCtx(logCtx(p)).Warnf("Arsip %d has no usable active end date (%q), inactive period left empty", a.ID, a.ActiveEnd)
		}

		records = append(records, record)
	}

	if err := joinValidation(invalid); err != nil {
		return nil, err
	}

	return records, nil
}

// MergeFor resolves the classification of a and merges it with the edits in
// destination. An unknown classification is not an error.
func MergeFor(resolver ClassificationResolver, a *arsipmodel.ActiveArchive, destination arsipmodel.PemindahanInfo) (Effective, error) {
	info, err := resolver.Resolve(a.ClassificationCode)
	switch {
	case errors.Is(err, klasifikasi.ErrNotFound):
		info = nil
	case err != nil:
		return Effective{}, errors.Wrapf(err, "resolving classification %q of arsip %d", a.ClassificationCode, a.ID)
	}

	return Merge(Layers{
		Override:       destination.EditFor(a.ID),
		Classification: info,
		Stored:         a,
		Destination:    destination,
	}), nil
}
