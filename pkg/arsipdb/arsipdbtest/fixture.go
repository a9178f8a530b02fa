// Package arsipdbtest builds sqlite backed stores populated with a unit, its
// storage location and the three users a transfer involves.
package arsipdbtest

import (
	"testing"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb"
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/tutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type Fixture struct {
	DB        *gorm.DB
	Stors     *stor.Stors
	Unit      *arsipmodel.Unit
	Location  *arsipmodel.Location
	Owner     *arsipmodel.User
	Head      *arsipmodel.User
	Secretary *arsipmodel.User
}

func New(t testing.TB) *Fixture {
	t.Helper()

	db, err := arsipdb.OpenSqlite(tutil.TestDSN(arsipdb.SqliteInMemoryDSN))
	require.NoErrorf(t, err, "Failed opening sqlite: %s", err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &Fixture{DB: db, Stors: stor.NewGormStors(db)}

	f.Unit, err = f.Stors.LocationStor.CreateUnit(&arsipmodel.Unit{Name: "Bidang Umum"})
	require.NoError(t, err)

	f.Location = f.AddLocation(t, f.Unit.ID)
	f.Owner = f.AddUser(t, "Pengelola", arsipmodel.RolePengelola, f.Unit.ID, "token-pengelola")
	f.Head = f.AddUser(t, "Kepala Bidang", arsipmodel.RoleKepalaBidang, f.Unit.ID, "token-kabid")
	f.Secretary = f.AddUser(t, "Sekretaris", arsipmodel.RoleSekretaris, 0, "token-sekretaris")

	return f
}

func (f *Fixture) AddLocation(t testing.TB, unitID int) *arsipmodel.Location {
	t.Helper()

	loc, err := f.Stors.LocationStor.CreateLocation(&arsipmodel.Location{
		UnitID:  unitID,
		Cabinet: "1",
		Drawer:  "2",
		Folder:  "3",
	})
	require.NoError(t, err)

	return loc
}

func (f *Fixture) AddUser(t testing.TB, name string, role arsipmodel.Role, unitID int, token string) *arsipmodel.User {
	t.Helper()

	u, err := f.Stors.UserStor.CreateUser(&arsipmodel.User{
		Name:     name,
		Email:    token + "@arsip.test",
		Role:     role,
		UnitID:   unitID,
		ApiToken: token,
	})
	require.NoError(t, err)

	return u
}

// AddActiveArchive stores a at the fixture location unless a.LocationID is
// set, and marks it approved unless a.Status is set.
func (f *Fixture) AddActiveArchive(t testing.TB, a arsipmodel.ActiveArchive) *arsipmodel.ActiveArchive {
	t.Helper()

	if a.LocationID == 0 {
		a.LocationID = f.Location.ID
	}

	if a.Status == "" {
		a.Status = arsipmodel.StateApproved
	}

	created, err := f.Stors.ActiveArchiveStor.CreateActiveArchive(&a)
	require.NoError(t, err)

	return created
}

func (f *Fixture) AddClassification(t testing.TB, code, label string, inactiveYears int, disposition string) {
	t.Helper()

	_, err := f.Stors.ClassificationStor.CreateClassification(&arsipmodel.Classification{
		Code:             code,
		Label:            label,
		ActiveYears:      2,
		InactiveYears:    inactiveYears,
		FinalDisposition: disposition,
	})
	require.NoError(t, err)
}

// Approve records both approvals the way the verification workflow does.
func (f *Fixture) Approve(t testing.TB, processID int) {
	t.Helper()

	f.SetSlot(t, processID, arsipmodel.SlotDepartmentHead, arsipmodel.StateApproved)
	f.SetSlot(t, processID, arsipmodel.SlotSecretary, arsipmodel.StateApproved)
}

func (f *Fixture) SetSlot(t testing.TB, processID int, slot arsipmodel.ApprovalSlotName, state arsipmodel.ApprovalState) {
	t.Helper()

	approver := f.Head.ID
	if slot == arsipmodel.SlotSecretary {
		approver = f.Secretary.ID
	}

	require.NoError(t, f.Stors.TransferProcessStor.SetApprovalSlot(processID, slot, state, approver, time.Now()))
}
