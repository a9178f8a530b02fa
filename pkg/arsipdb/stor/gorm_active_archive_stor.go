package stor

import (
	"strconv"
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormActiveArchiveStor struct {
	db *gorm.DB
}

func NewGormActiveArchiveStor(db *gorm.DB) *GormActiveArchiveStor {
	return &GormActiveArchiveStor{db: db}
}

func (s *GormActiveArchiveStor) CreateActiveArchive(archive *arsipmodel.ActiveArchive) (*arsipmodel.ActiveArchive, error) {
	if archive.Status == "" {
		archive.Status = arsipmodel.StatePending
	}

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Omit("Location").Create(archive).Error
	})

	if err != nil {
		return nil, err
	}

	return archive, nil
}

func (s *GormActiveArchiveStor) GetActiveArchiveByID(id int) (*arsipmodel.ActiveArchive, error) {
	var archive arsipmodel.ActiveArchive
	if err := s.db.Preload("Location").Where("id = ?", id).First(&archive).Error; err != nil {
		return nil, err
	}

	return &archive, nil
}

// GetActiveArchivesByIDs returns the archives that still exist. Missing ids are
// silently absent from the result.
func (s *GormActiveArchiveStor) GetActiveArchivesByIDs(ids []int) ([]arsipmodel.ActiveArchive, error) {
	var archives []arsipmodel.ActiveArchive
	if len(ids) == 0 {
		return archives, nil
	}

	err := s.db.Preload("Location").Where("id in (?)", ids).Order("id").Find(&archives).Error
	return archives, err
}

// ListApprovedActiveArchivesForUnit lists approved archives stored at the unit's
// locations. search matches classification code or description.
func (s *GormActiveArchiveStor) ListApprovedActiveArchivesForUnit(unitID int, search string) ([]arsipmodel.ActiveArchive, error) {
	var archives []arsipmodel.ActiveArchive

	query := s.db.Preload("Location").
		Where("status = ?", arsipmodel.StateApproved).
		Where("location_id in (?)", s.unitLocationsSubquery(unitID))

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(lower(classification_code) like ? or lower(description) like ?)", like, like)
	}

	err := query.Order("id").Find(&archives).Error
	return archives, err
}

func (s *GormActiveArchiveStor) DeleteActiveArchive(id int) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Delete(&arsipmodel.ActiveArchive{}, id).Error
	})
}

// NextNomorBerkas returns the next sequence number for a new active archive in the
// unit. Archives that have been transferred no longer take part in numbering.
func (s *GormActiveArchiveStor) NextNomorBerkas(unitID int) (int, error) {
	var numbers []string

	err := s.db.Model(&arsipmodel.ActiveArchive{}).
		Where("location_id in (?)", s.unitLocationsSubquery(unitID)).
		Where("id not in (?)", s.db.Table("pemindahan_link").Select("active_archive_id")).
		Pluck("nomor_berkas", &numbers).Error
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, n := range numbers {
		if v, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && v > highest {
			highest = v
		}
	}

	return highest + 1, nil
}

func (s *GormActiveArchiveStor) unitLocationsSubquery(unitID int) *gorm.DB {
	return s.db.Table("lokasi_penyimpanan").Select("id").Where("unit_id = ?", unitID)
}
