package stor_test

import (
	"testing"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipdbtest"
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProcess(t *testing.T, f *arsipdbtest.Fixture) *arsipmodel.TransferProcess {
	t.Helper()

	p, err := f.Stors.TransferProcessStor.CreateProcess(&arsipmodel.TransferProcess{
		OwnerID: f.Owner.ID,
		UnitID:  f.Unit.ID,
	})
	require.NoError(t, err)

	return p
}

func completeTransfer(t *testing.T, f *arsipdbtest.Fixture, number string, archives ...*arsipmodel.ActiveArchive) *stor.TransferCompletion {
	t.Helper()

	p := createProcess(t, f)
	memo, err := f.Stors.TransferMemoStor.CreateMemo(&arsipmodel.TransferMemo{
		Number:    number,
		Date:      "2024-02-01",
		ProcessID: p.ID,
		UnitID:    f.Unit.ID,
	})
	require.NoError(t, err)

	completion := &stor.TransferCompletion{Process: p, Memo: memo}
	for i, a := range archives {
		p.SelectedIDs = append(p.SelectedIDs, a.ID)
		completion.Records = append(completion.Records, arsipmodel.InactiveArchive{
			NomorBerkas:        i + 1,
			ClassificationCode: a.ClassificationCode,
			Description:        a.Description,
			SourceActiveID:     a.ID,
			MemoID:             memo.ID,
			ProcessID:          p.ID,
			UnitID:             f.Unit.ID,
		})
	}

	require.NoError(t, f.Stors.TransferStor.CompleteTransfer(completion))

	return completion
}

func TestProcessLifecycle(t *testing.T) {
	f := arsipdbtest.New(t)

	p := createProcess(t, f)
	assert.NotEmpty(t, p.UUID)
	assert.Equal(t, arsipmodel.StepSelectRecords, p.CurrentStep)
	assert.Equal(t, arsipmodel.ProcessIdle, p.Status)
	assert.Equal(t, arsipmodel.StatePending, p.Approval.DepartmentHead.Status)

	p.SelectedIDs = []int{3, 1, 2}
	p.CurrentStep = arsipmodel.StepComposeMemo
	p.Memo = arsipmodel.BeritaAcara{Number: "BA-001", Date: "2024-02-01"}
	p.Destination.RecordEdits = map[int]arsipmodel.PerRecordEdit{1: {BoxNumber: strPtr("B-1")}}
	require.NoError(t, f.Stors.TransferProcessStor.SaveProcess(p))

	open, err := f.Stors.TransferProcessStor.GetOpenProcessForOwner(f.Owner.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, open.ID)
	assert.Equal(t, []int{3, 1, 2}, open.SelectedIDs)
	assert.Equal(t, arsipmodel.StepComposeMemo, open.CurrentStep)
	assert.Equal(t, "BA-001", open.Memo.Number)
	assert.Equal(t, "B-1", *open.Destination.EditFor(1).BoxNumber)

	// A newer open process wins; completed ones are never returned.
	newer := createProcess(t, f)
	open, err = f.Stors.TransferProcessStor.GetOpenProcessForOwner(f.Owner.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, open.ID)

	newer.Completed = true
	require.NoError(t, f.Stors.TransferProcessStor.SaveProcess(newer))
	p.Completed = true
	require.NoError(t, f.Stors.TransferProcessStor.SaveProcess(p))

	_, err = f.Stors.TransferProcessStor.GetOpenProcessForOwner(f.Owner.ID)
	assert.True(t, stor.IsRecordNotFound(err))

	missing := &arsipmodel.TransferProcess{ID: 9999}
	assert.True(t, stor.IsRecordNotFound(f.Stors.TransferProcessStor.SaveProcess(missing)))
}

func TestSaveProcessKeepsExternalApprovals(t *testing.T) {
	f := arsipdbtest.New(t)

	p := createProcess(t, f)
	f.SetSlot(t, p.ID, arsipmodel.SlotDepartmentHead, arsipmodel.StateApproved)

	// p still holds the stale Pending approval read before the external write.
	p.CurrentStep = arsipmodel.StepAwaitApproval
	require.NoError(t, f.Stors.TransferProcessStor.SaveProcess(p))

	reloaded, err := f.Stors.TransferProcessStor.GetProcessByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, arsipmodel.StepAwaitApproval, reloaded.CurrentStep)
	assert.Equal(t, arsipmodel.StateApproved, reloaded.Approval.DepartmentHead.Status)
	require.NotNil(t, reloaded.Approval.DepartmentHead.ApproverID)
	assert.Equal(t, f.Head.ID, *reloaded.Approval.DepartmentHead.ApproverID)
	assert.Equal(t, arsipmodel.StatePending, reloaded.Approval.Secretary.Status)

	f.SetSlot(t, p.ID, arsipmodel.SlotDepartmentHead, arsipmodel.StatePending)
	reloaded, err = f.Stors.TransferProcessStor.GetProcessByID(p.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Approval.DepartmentHead.ApproverID)
	assert.Nil(t, reloaded.Approval.DepartmentHead.ActedAt)
}

func TestCreateMemoRejectsDuplicateNumber(t *testing.T) {
	f := arsipdbtest.New(t)

	memo, err := f.Stors.TransferMemoStor.CreateMemo(&arsipmodel.TransferMemo{Number: " BA-001 ", Date: "2024-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "BA-001", memo.Number)
	assert.Equal(t, arsipmodel.MemoDraft, memo.Status)

	_, err = f.Stors.TransferMemoStor.CreateMemo(&arsipmodel.TransferMemo{Number: "BA-001", Date: "2024-03-01"})
	assert.ErrorIs(t, err, stor.ErrDuplicateMemoNumber)

	found, err := f.Stors.TransferMemoStor.GetMemoByNumber("BA-001 ")
	require.NoError(t, err)
	assert.Equal(t, memo.ID, found.ID)

	found.Note = "revisi"
	require.NoError(t, f.Stors.TransferMemoStor.UpdateMemo(found))
	found, err = f.Stors.TransferMemoStor.GetMemoByNumber("BA-001")
	require.NoError(t, err)
	assert.Equal(t, "revisi", found.Note)

	_, err = f.Stors.TransferMemoStor.GetMemoByNumber("BA-002")
	assert.True(t, stor.IsRecordNotFound(err))
}

func TestCompleteTransfer(t *testing.T) {
	f := arsipdbtest.New(t)

	a1 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "1", ClassificationCode: "045", Description: "Surat masuk"})
	a2 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "2", ClassificationCode: "045", Description: "Surat keluar"})

	completion := completeTransfer(t, f, "BA-001", a1, a2)

	assert.True(t, completion.Process.Completed)
	assert.Equal(t, arsipmodel.ProcessCompleted, completion.Process.Status)
	assert.Equal(t, arsipmodel.StepCompleted, completion.Process.CurrentStep)
	require.NotNil(t, completion.Process.MemoID)
	assert.Equal(t, completion.Memo.ID, *completion.Process.MemoID)
	assert.NotNil(t, completion.Process.MigratedAt)
	assert.Equal(t, arsipmodel.MemoCompleted, completion.Memo.Status)
	require.Len(t, completion.Links, 2)

	count, err := f.Stors.InactiveArchiveStor.CountInactiveArchivesForMemo(completion.Memo.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	records, err := f.Stors.InactiveArchiveStor.ListInactiveArchivesForMemo(completion.Memo.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, arsipmodel.StatePending, records[0].Status)

	links, err := f.Stors.TransferLinkStor.GetLinksForProcess(completion.Process.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, a1.ID, links[0].ActiveArchiveID)
	assert.Equal(t, records[0].ID, links[0].InactiveArchiveID)

	reloaded, err := f.Stors.TransferProcessStor.GetProcessByID(completion.Process.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Completed)
	assert.Equal(t, arsipmodel.StepCompleted, reloaded.CurrentStep)

	memo, err := f.Stors.TransferMemoStor.GetMemoByNumber("BA-001")
	require.NoError(t, err)
	assert.Equal(t, arsipmodel.MemoCompleted, memo.Status)
}

func TestCompleteTransferRollsBackOnDuplicateLink(t *testing.T) {
	f := arsipdbtest.New(t)

	a1 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "1", ClassificationCode: "045"})
	a2 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "2", ClassificationCode: "045"})
	completeTransfer(t, f, "BA-001", a1)

	p := createProcess(t, f)
	memo, err := f.Stors.TransferMemoStor.CreateMemo(&arsipmodel.TransferMemo{Number: "BA-002", ProcessID: p.ID})
	require.NoError(t, err)

	completion := &stor.TransferCompletion{
		Process: p,
		Memo:    memo,
		Records: []arsipmodel.InactiveArchive{
			{NomorBerkas: 1, SourceActiveID: a2.ID, MemoID: memo.ID, ProcessID: p.ID},
			{NomorBerkas: 2, SourceActiveID: a1.ID, MemoID: memo.ID, ProcessID: p.ID},
		},
	}

	require.Error(t, f.Stors.TransferStor.CompleteTransfer(completion))
	assert.False(t, completion.Process.Completed)
	assert.Empty(t, completion.Links)

	count, err := f.Stors.InactiveArchiveStor.CountInactiveArchivesForMemo(memo.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	links, err := f.Stors.TransferLinkStor.GetLinksForActiveArchives([]int{a1.ID, a2.ID})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, a1.ID, links[0].ActiveArchiveID)

	reloaded, err := f.Stors.TransferMemoStor.GetMemoByNumber("BA-002")
	require.NoError(t, err)
	assert.Equal(t, arsipmodel.MemoDraft, reloaded.Status)
}

func TestListApprovedActiveArchivesForUnit(t *testing.T) {
	f := arsipdbtest.New(t)

	otherUnit, err := f.Stors.LocationStor.CreateUnit(&arsipmodel.Unit{Name: "Bidang Keuangan"})
	require.NoError(t, err)
	otherLoc := f.AddLocation(t, otherUnit.ID)

	surat := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "1", ClassificationCode: "045", Description: "Surat Edaran"})
	laporan := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "2", ClassificationCode: "000.5.1", Description: "Laporan tahunan"})
	f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "3", ClassificationCode: "045", Status: arsipmodel.StatePending})
	f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "1", ClassificationCode: "045", LocationID: otherLoc.ID})

	archives, err := f.Stors.ActiveArchiveStor.ListApprovedActiveArchivesForUnit(f.Unit.ID, "")
	require.NoError(t, err)
	require.Len(t, archives, 2)
	assert.Equal(t, surat.ID, archives[0].ID)
	require.NotNil(t, archives[0].Location)
	assert.Equal(t, f.Unit.ID, archives[0].Location.UnitID)

	archives, err = f.Stors.ActiveArchiveStor.ListApprovedActiveArchivesForUnit(f.Unit.ID, "LAPORAN")
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, laporan.ID, archives[0].ID)

	archives, err = f.Stors.ActiveArchiveStor.ListApprovedActiveArchivesForUnit(f.Unit.ID, "000.5")
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, laporan.ID, archives[0].ID)
}

func TestNextNomorBerkasSkipsTransferred(t *testing.T) {
	f := arsipdbtest.New(t)

	next, err := f.Stors.ActiveArchiveStor.NextNomorBerkas(f.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	a1 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "1"})
	f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "2"})
	a3 := f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "7"})
	f.AddActiveArchive(t, arsipmodel.ActiveArchive{NomorBerkas: "x-9"})

	next, err = f.Stors.ActiveArchiveStor.NextNomorBerkas(f.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	completeTransfer(t, f, "BA-001", a1, a3)

	next, err = f.Stors.ActiveArchiveStor.NextNomorBerkas(f.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	linked, err := f.Stors.TransferLinkStor.GetLinkedActiveArchiveIDsForUnit(f.Unit.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{a1.ID, a3.ID}, linked)
}

func TestGetUsersByRole(t *testing.T) {
	f := arsipdbtest.New(t)

	otherUnit, err := f.Stors.LocationStor.CreateUnit(&arsipmodel.Unit{Name: "Bidang Keuangan"})
	require.NoError(t, err)
	f.AddUser(t, "Kepala Keuangan", arsipmodel.RoleKepalaBidang, otherUnit.ID, "token-kabid-2")

	heads, err := f.Stors.UserStor.GetUsersByRole(arsipmodel.RoleKepalaBidang, &f.Unit.ID)
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.Equal(t, f.Head.ID, heads[0].ID)

	heads, err = f.Stors.UserStor.GetUsersByRole(arsipmodel.RoleKepalaBidang, nil)
	require.NoError(t, err)
	assert.Len(t, heads, 2)

	u, err := f.Stors.UserStor.GetUserByAPIToken("token-sekretaris")
	require.NoError(t, err)
	assert.Equal(t, f.Secretary.ID, u.ID)
}

func strPtr(s string) *string { return &s }
