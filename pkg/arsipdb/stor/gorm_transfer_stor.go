package stor

import (
	"fmt"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormTransferStor struct {
	db *gorm.DB
}

func NewGormTransferStor(db *gorm.DB) *GormTransferStor {
	return &GormTransferStor{db: db}
}

// CompleteTransfer writes the inactive archives with their links in the same
// transaction that completes the process and memo. It does not go through
// WithTxRetry: a failed completion is retried by re-running the migration.
//
// On success completion.Records and completion.Links carry their new ids and
// completion.Process reflects the completed state.
func (s *GormTransferStor) CompleteTransfer(completion *TransferCompletion) error {
	if len(completion.Records) == 0 {
		return fmt.Errorf("no inactive archives to create for process %d", completion.Process.ID)
	}

	now := time.Now()
	process := *completion.Process
	memo := *completion.Memo
	records := make([]arsipmodel.InactiveArchive, len(completion.Records))
	copy(records, completion.Records)
	var links []arsipmodel.TransferLink

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Create(&records)
		if result.Error != nil {
			return result.Error
		}

		if int(result.RowsAffected) != len(records) {
			return fmt.Errorf("%w: created %d of %d inactive archives", ErrPartialInsert, result.RowsAffected, len(records))
		}

		links = make([]arsipmodel.TransferLink, 0, len(records))
		for _, r := range records {
			links = append(links, arsipmodel.TransferLink{
				ActiveArchiveID:   r.SourceActiveID,
				InactiveArchiveID: r.ID,
				ProcessID:         process.ID,
				MemoID:            memo.ID,
			})
		}

		result = tx.Create(&links)
		if result.Error != nil {
			return result.Error
		}

		if int(result.RowsAffected) != len(links) {
			return fmt.Errorf("%w: created %d of %d transfer links", ErrPartialInsert, result.RowsAffected, len(links))
		}

		process.Completed = true
		process.Status = arsipmodel.ProcessCompleted
		process.StatusMessage = ""
		process.CurrentStep = arsipmodel.StepCompleted
		process.MemoID = &memo.ID
		process.MigratedAt = &now
		result = tx.Model(&process).Select(processColumns).Updates(&process)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: transfer process %d not updated", ErrPartialInsert, process.ID)
		}

		memo.Status = arsipmodel.MemoCompleted
		result = tx.Model(&memo).Select("Status", "ProcessID", "UpdatedAt").Updates(&memo)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: transfer memo %s not updated", ErrPartialInsert, memo.Number)
		}

		return nil
	})

	if err != nil {
		return err
	}

	*completion.Process = process
	*completion.Memo = memo
	completion.Records = records
	completion.Links = links

	return nil
}
