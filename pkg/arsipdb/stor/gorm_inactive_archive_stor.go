package stor

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormInactiveArchiveStor struct {
	db *gorm.DB
}

func NewGormInactiveArchiveStor(db *gorm.DB) *GormInactiveArchiveStor {
	return &GormInactiveArchiveStor{db: db}
}

func (s *GormInactiveArchiveStor) CountInactiveArchivesForMemo(memoID int) (int64, error) {
	var count int64
	err := s.db.Model(&arsipmodel.InactiveArchive{}).Where("memo_id = ?", memoID).Count(&count).Error
	return count, err
}

func (s *GormInactiveArchiveStor) ListInactiveArchivesForMemo(memoID int) ([]arsipmodel.InactiveArchive, error) {
	var archives []arsipmodel.InactiveArchive
	err := s.db.Where("memo_id = ?", memoID).Order("nomor_berkas").Find(&archives).Error
	return archives, err
}
