package stor

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"gorm.io/gorm"
)

type GormLocationStor struct {
	db *gorm.DB
}

func NewGormLocationStor(db *gorm.DB) *GormLocationStor {
	return &GormLocationStor{db: db}
}

func (s *GormLocationStor) CreateUnit(unit *arsipmodel.Unit) (*arsipmodel.Unit, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(unit).Error
	})

	if err != nil {
		return nil, err
	}

	return unit, nil
}

func (s *GormLocationStor) CreateLocation(location *arsipmodel.Location) (*arsipmodel.Location, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Omit("Unit").Create(location).Error
	})

	if err != nil {
		return nil, err
	}

	return location, nil
}
