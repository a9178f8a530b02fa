package stor

import (
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type ActiveArchiveStor interface {
	CreateActiveArchive(archive *arsipmodel.ActiveArchive) (*arsipmodel.ActiveArchive, error)
	GetActiveArchiveByID(id int) (*arsipmodel.ActiveArchive, error)
	GetActiveArchivesByIDs(ids []int) ([]arsipmodel.ActiveArchive, error)
	ListApprovedActiveArchivesForUnit(unitID int, search string) ([]arsipmodel.ActiveArchive, error)
	DeleteActiveArchive(id int) error
	NextNomorBerkas(unitID int) (int, error)
}

type InactiveArchiveStor interface {
	CountInactiveArchivesForMemo(memoID int) (int64, error)
	ListInactiveArchivesForMemo(memoID int) ([]arsipmodel.InactiveArchive, error)
}

type TransferLinkStor interface {
	GetLinkedActiveArchiveIDsForUnit(unitID int) ([]int, error)
	GetLinksForActiveArchives(ids []int) ([]arsipmodel.TransferLink, error)
	GetLinksForProcess(processID int) ([]arsipmodel.TransferLink, error)
}

type TransferProcessStor interface {
	CreateProcess(process *arsipmodel.TransferProcess) (*arsipmodel.TransferProcess, error)
	GetProcessByID(id int) (*arsipmodel.TransferProcess, error)
	GetOpenProcessForOwner(ownerID int) (*arsipmodel.TransferProcess, error)
	SaveProcess(process *arsipmodel.TransferProcess) error
	SetApprovalSlot(processID int, slot arsipmodel.ApprovalSlotName, state arsipmodel.ApprovalState, approverID int, at time.Time) error
}

type TransferMemoStor interface {
	GetMemoByNumber(number string) (*arsipmodel.TransferMemo, error)
	CreateMemo(memo *arsipmodel.TransferMemo) (*arsipmodel.TransferMemo, error)
	UpdateMemo(memo *arsipmodel.TransferMemo) error
}

// TransferCompletion is everything the final migration write touches.
type TransferCompletion struct {
	Process *arsipmodel.TransferProcess
	Memo    *arsipmodel.TransferMemo
	Records []arsipmodel.InactiveArchive
	Links   []arsipmodel.TransferLink
}

type TransferStor interface {
	CompleteTransfer(completion *TransferCompletion) error
}

type ClassificationStor interface {
	CreateClassification(c *arsipmodel.Classification) (*arsipmodel.Classification, error)
	CreateLegacyClassification(c *arsipmodel.LegacyClassification) (*arsipmodel.LegacyClassification, error)
	GetClassificationByCode(code string) (*arsipmodel.Classification, error)
	GetLegacyClassificationByCode(code string) (*arsipmodel.LegacyClassification, error)
}

type UserStor interface {
	CreateUser(user *arsipmodel.User) (*arsipmodel.User, error)
	GetUserByID(id int) (*arsipmodel.User, error)
	GetUserByAPIToken(apitoken string) (*arsipmodel.User, error)
	GetUsersByRole(role arsipmodel.Role, unitID *int) ([]arsipmodel.User, error)
}

type LocationStor interface {
	CreateUnit(unit *arsipmodel.Unit) (*arsipmodel.Unit, error)
	CreateLocation(location *arsipmodel.Location) (*arsipmodel.Location, error)
}

type Stors struct {
	ActiveArchiveStor   ActiveArchiveStor
	InactiveArchiveStor InactiveArchiveStor
	TransferLinkStor    TransferLinkStor
	TransferProcessStor TransferProcessStor
	TransferMemoStor    TransferMemoStor
	TransferStor        TransferStor
	ClassificationStor  ClassificationStor
	UserStor            UserStor
	LocationStor        LocationStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		ActiveArchiveStor:   NewGormActiveArchiveStor(db),
		InactiveArchiveStor: NewGormInactiveArchiveStor(db),
		TransferLinkStor:    NewGormTransferLinkStor(db),
		TransferProcessStor: NewGormTransferProcessStor(db),
		TransferMemoStor:    NewGormTransferMemoStor(db),
		TransferStor:        NewGormTransferStor(db),
		ClassificationStor:  NewGormClassificationStor(db),
		UserStor:            NewGormUserStor(db),
		LocationStor:        NewGormLocationStor(db),
	}
}
