package arsipmodel

import (
	"strings"
	"time"
)

type Step int

const (
	StepSelectRecords      Step = 1
	StepComposeMemo        Step = 2
	StepAwaitApproval      Step = 3
	StepComposeDestination Step = 4
	StepCompleted          Step = 5
)

func (s Step) String() string {
	switch s {
	case StepSelectRecords:
		return "select-records"
	case StepComposeMemo:
		return "compose-memo"
	case StepAwaitApproval:
		return "await-approval"
	case StepComposeDestination:
		return "compose-destination"
	case StepCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type ProcessStatus string

const (
	ProcessIdle       ProcessStatus = "idle"
	ProcessProcessing ProcessStatus = "processing"
	ProcessCompleted  ProcessStatus = "completed"
	ProcessError      ProcessStatus = "error"
)

// BeritaAcara is the transfer memo as composed on step 2.
type BeritaAcara struct {
	Number     string `json:"nomor_berita_acara"`
	Date       string `json:"tanggal_berita_acara"`
	LegalBasis string `json:"dasar"`
	Note       string `json:"keterangan"`
}

func (b BeritaAcara) IsComplete() bool {
	return strings.TrimSpace(b.Number) != "" && strings.TrimSpace(b.Date) != ""
}

// PerRecordEdit holds user overrides for one selected active archive. A nil
// field means "not overridden".
type PerRecordEdit struct {
	ArchiveType      *string `json:"jenis_arsip,omitempty"`
	InactiveYears    *int    `json:"masa_retensi_inaktif,omitempty"`
	FinalDisposition *string `json:"nasib_akhir,omitempty"`
	BoxNumber        *string `json:"nomor_boks,omitempty"`
	DevelopmentLevel *string `json:"tingkat_perkembangan,omitempty"`
}

// PemindahanInfo is the destination composed on step 4.
type PemindahanInfo struct {
	Location    string                `json:"lokasi_simpan"`
	BoxNumber   string                `json:"nomor_boks"`
	Category    string                `json:"kategori_arsip"`
	Note        string                `json:"keterangan"`
	RecordEdits map[int]PerRecordEdit `json:"record_edits,omitempty"`
}

func (p PemindahanInfo) EditFor(recordID int) PerRecordEdit {
	if p.RecordEdits == nil {
		return PerRecordEdit{}
	}
	return p.RecordEdits[recordID]
}

type ApprovalSlotName string

const (
	SlotDepartmentHead ApprovalSlotName = "kepala_bidang"
	SlotSecretary      ApprovalSlotName = "sekretaris"
)

type ApprovalSlot struct {
	Status     ApprovalState `json:"status"`
	ApproverID *int          `json:"approver_id"`
	ActedAt    *time.Time    `json:"acted_at"`
}

// ProcessApproval is written by the external verification workflow and only
// read by the transfer workflow.
type ProcessApproval struct {
	DepartmentHead ApprovalSlot `json:"kepala_bidang"`
	Secretary      ApprovalSlot `json:"sekretaris"`
}

func NewProcessApproval() ProcessApproval {
	return ProcessApproval{
		DepartmentHead: ApprovalSlot{Status: StatePending},
		Secretary:      ApprovalSlot{Status: StatePending},
	}
}

func (a ProcessApproval) BothApproved() bool {
	return a.DepartmentHead.Status == StateApproved && a.Secretary.Status == StateApproved
}

func (a ProcessApproval) AnyRejected() bool {
	return a.DepartmentHead.Status == StateRejected || a.Secretary.Status == StateRejected
}

func (a ProcessApproval) Slot(name ApprovalSlotName) ApprovalSlot {
	if name == SlotSecretary {
		return a.Secretary
	}
	return a.DepartmentHead
}

func (a ProcessApproval) Equal(b ProcessApproval) bool {
	return a.DepartmentHead.Status == b.DepartmentHead.Status && a.Secretary.Status == b.Secretary.Status
}

type TransferProcess struct {
	ID                  int             `json:"id"`
	UUID                string          `json:"uuid"`
	OwnerID             int             `json:"owner_id" gorm:"index"`
	Owner               *User           `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	UnitID              int             `json:"bidang_id"`
	CurrentStep         Step            `json:"current_step"`
	SelectedIDs         []int           `json:"selected_ids" gorm:"serializer:json;type:text"`
	Memo                BeritaAcara     `json:"berita_acara" gorm:"serializer:json;type:text"`
	Destination         PemindahanInfo  `json:"pemindahan_info" gorm:"serializer:json;type:text"`
	Approval            ProcessApproval `json:"approval_status" gorm:"serializer:json;type:text"`
	Status              ProcessStatus   `json:"process_status" gorm:"size:16"`
	StatusMessage       string          `json:"process_message"`
	Completed           bool            `json:"completed" gorm:"index"`
	MemoID              *int            `json:"berita_acara_id"`
	MigratedAt          *time.Time      `json:"migrated_at"`
	ApproversNotifiedAt *time.Time      `json:"approvers_notified_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (TransferProcess) TableName() string {
	return "pemindahan_process"
}

func (p *TransferProcess) IsSelected(recordID int) bool {
	for _, id := range p.SelectedIDs {
		if id == recordID {
			return true
		}
	}
	return false
}

func (p *TransferProcess) WasMigrated() bool {
	return p.MigratedAt != nil
}

type MemoStatus string

const (
	MemoDraft     MemoStatus = "Draft"
	MemoCompleted MemoStatus = "Completed"
)

// TransferMemo is the persisted berita acara pemindahan. Number is unique.
type TransferMemo struct {
	ID          int        `json:"id"`
	UUID        string     `json:"uuid"`
	Number      string     `json:"nomor_berita_acara" gorm:"size:191;uniqueIndex"`
	Date        string     `json:"tanggal_berita_acara"`
	LegalBasis  string     `json:"dasar"`
	Note        string     `json:"keterangan"`
	Status      MemoStatus `json:"status" gorm:"size:16"`
	ProcessID   int        `json:"pemindahan_process_id"`
	UnitID      int        `json:"bidang_id"`
	CreatedByID int        `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (TransferMemo) TableName() string {
	return "berita_acara_pemindahan"
}

// TransferLink marks an active archive as migrated. Its presence is the only
// record of "already transferred".
type TransferLink struct {
	ID                int       `json:"id"`
	ActiveArchiveID   int       `json:"arsip_aktif_id" gorm:"uniqueIndex"`
	InactiveArchiveID int       `json:"arsip_inaktif_id"`
	ProcessID         int       `json:"pemindahan_process_id" gorm:"index"`
	MemoID            int       `json:"berita_acara_id"`
	CreatedAt         time.Time `json:"created_at"`
}

func (TransferLink) TableName() string {
	return "pemindahan_link"
}
