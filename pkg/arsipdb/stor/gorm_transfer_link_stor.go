package stor

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormTransferLinkStor struct {
	db *gorm.DB
}

func NewGormTransferLinkStor(db *gorm.DB) *GormTransferLinkStor {
	return &GormTransferLinkStor{db: db}
}

func (s *GormTransferLinkStor) GetLinkedActiveArchiveIDsForUnit(unitID int) ([]int, error) {
	var ids []int

	unitArchives := s.db.Table("arsip_aktif").
		Select("id").
		Where("location_id in (?)", s.db.Table("lokasi_penyimpanan").Select("id").Where("unit_id = ?", unitID))

	err := s.db.Model(&arsipmodel.TransferLink{}).
		Where("active_archive_id in (?)", unitArchives).
		Pluck("active_archive_id", &ids).Error
	return ids, err
}

func (s *GormTransferLinkStor) GetLinksForActiveArchives(ids []int) ([]arsipmodel.TransferLink, error) {
	var links []arsipmodel.TransferLink
	if len(ids) == 0 {
		return links, nil
	}

	err := s.db.Where("active_archive_id in (?)", ids).Find(&links).Error
	return links, err
}

func (s *GormTransferLinkStor) GetLinksForProcess(processID int) ([]arsipmodel.TransferLink, error) {
	var links []arsipmodel.TransferLink
	err := s.db.Where("process_id = ?", processID).Order("id").Find(&links).Error
	return links, err
}
