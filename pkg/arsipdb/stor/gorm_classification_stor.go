package stor

import (
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormClassificationStor struct {
	db *gorm.DB
}

func NewGormClassificationStor(db *gorm.DB) *GormClassificationStor {
	return &GormClassificationStor{db: db}
}

func (s *GormClassificationStor) CreateClassification(c *arsipmodel.Classification) (*arsipmodel.Classification, error) {
	c.Code = strings.TrimSpace(c.Code)
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})

	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *GormClassificationStor) CreateLegacyClassification(c *arsipmodel.LegacyClassification) (*arsipmodel.LegacyClassification, error) {
	c.Code = strings.TrimSpace(c.Code)
	c.CurrentCode = strings.TrimSpace(c.CurrentCode)
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})

	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *GormClassificationStor) GetClassificationByCode(code string) (*arsipmodel.Classification, error) {
	var c arsipmodel.Classification
	if err := s.db.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *GormClassificationStor) GetLegacyClassificationByCode(code string) (*arsipmodel.LegacyClassification, error) {
	var c arsipmodel.LegacyClassification
	if err := s.db.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}

	return &c, nil
}
