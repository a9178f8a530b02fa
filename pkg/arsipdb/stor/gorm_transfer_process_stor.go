package stor

import (
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

// processColumns are the columns owned by the transfer workflow. The approval
// column belongs to the verification workflow and is never written by SaveProcess.
var processColumns = []string{
	"CurrentStep", "SelectedIDs", "Memo", "Destination", "Status", "StatusMessage",
	"Completed", "MemoID", "MigratedAt", "ApproversNotifiedAt", "UpdatedAt",
}

type GormTransferProcessStor struct {
	db *gorm.DB
}

func NewGormTransferProcessStor(db *gorm.DB) *GormTransferProcessStor {
	return &GormTransferProcessStor{db: db}
}

func (s *GormTransferProcessStor) CreateProcess(process *arsipmodel.TransferProcess) (*arsipmodel.TransferProcess, error) {
	var err error

	if process.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	if process.CurrentStep == 0 {
		process.CurrentStep = arsipmodel.StepSelectRecords
	}

	if process.Status == "" {
		process.Status = arsipmodel.ProcessIdle
	}

	if process.Approval.DepartmentHead.Status == "" && process.Approval.Secretary.Status == "" {
		process.Approval = arsipmodel.NewProcessApproval()
	}

	if process.SelectedIDs == nil {
		process.SelectedIDs = []int{}
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Omit("Owner").Create(process).Error
	})

	if err != nil {
		return nil, err
	}

	return process, nil
}

func (s *GormTransferProcessStor) GetProcessByID(id int) (*arsipmodel.TransferProcess, error) {
	var process arsipmodel.TransferProcess
	if err := s.db.Where("id = ?", id).First(&process).Error; err != nil {
		return nil, err
	}

	return &process, nil
}

// GetOpenProcessForOwner returns the most recent process of the owner that has
// not been completed.
func (s *GormTransferProcessStor) GetOpenProcessForOwner(ownerID int) (*arsipmodel.TransferProcess, error) {
	var process arsipmodel.TransferProcess
	err := s.db.Where("owner_id = ?", ownerID).
		Where("completed = ?", false).
		Order("id desc").
		First(&process).Error
	if err != nil {
		return nil, err
	}

	return &process, nil
}

func (s *GormTransferProcessStor) SaveProcess(process *arsipmodel.TransferProcess) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		result := tx.Model(process).Select(processColumns).Updates(process)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected != 0 {
			return nil
		}

		// MySQL reports zero affected rows when nothing changed.
		var count int64
		if err := tx.Model(&arsipmodel.TransferProcess{}).Where("id = ?", process.ID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (s *GormTransferProcessStor) SetApprovalSlot(processID int, slot arsipmodel.ApprovalSlotName, state arsipmodel.ApprovalState,
	approverID int, at time.Time) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		var process arsipmodel.TransferProcess
		if err := tx.Where("id = ?", processID).First(&process).Error; err != nil {
			return err
		}

		acted := ApprovalSlotFor(state, approverID, at)
		switch slot {
		case arsipmodel.SlotSecretary:
			process.Approval.Secretary = acted
		default:
			process.Approval.DepartmentHead = acted
		}

		return tx.Model(&process).Select("Approval").Updates(&arsipmodel.TransferProcess{Approval: process.Approval}).Error
	})
}

func ApprovalSlotFor(state arsipmodel.ApprovalState, approverID int, at time.Time) arsipmodel.ApprovalSlot {
	if state == arsipmodel.StatePending {
		return arsipmodel.ApprovalSlot{Status: arsipmodel.StatePending}
	}

	return arsipmodel.ApprovalSlot{Status: state, ApproverID: &approverID, ActedAt: &at}
}
