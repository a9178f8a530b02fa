package stor

import (
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type GormTransferMemoStor struct {
	db *gorm.DB
}

func NewGormTransferMemoStor(db *gorm.DB) *GormTransferMemoStor {
	return &GormTransferMemoStor{db: db}
}

func (s *GormTransferMemoStor) GetMemoByNumber(number string) (*arsipmodel.TransferMemo, error) {
	var memo arsipmodel.TransferMemo
	if err := s.db.Where("number = ?", strings.TrimSpace(number)).First(&memo).Error; err != nil {
		return nil, err
	}

	return &memo, nil
}

// CreateMemo returns ErrDuplicateMemoNumber when another memo already holds the number.
func (s *GormTransferMemoStor) CreateMemo(memo *arsipmodel.TransferMemo) (*arsipmodel.TransferMemo, error) {
	var err error

	if memo.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	memo.Number = strings.TrimSpace(memo.Number)
	if memo.Status == "" {
		memo.Status = arsipmodel.MemoDraft
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(memo).Error
	})

	switch {
	case isDuplicateKey(err):
		return nil, ErrDuplicateMemoNumber
	case err != nil:
		return nil, err
	default:
		return memo, nil
	}
}

func (s *GormTransferMemoStor) UpdateMemo(memo *arsipmodel.TransferMemo) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Model(memo).
			Select("Date", "LegalBasis", "Note", "Status", "UpdatedAt").
			Updates(memo).Error
	})
}
