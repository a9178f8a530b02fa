package stor

import (
	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type GormUserStor struct {
	db *gorm.DB
}

func NewGormUserStor(db *gorm.DB) *GormUserStor {
	return &GormUserStor{db: db}
}

// CreateUser creates a new user.
func (s *GormUserStor) CreateUser(user *arsipmodel.User) (*arsipmodel.User, error) {
	var err error

	if user.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *GormUserStor) GetUserByID(id int) (*arsipmodel.User, error) {
	var user arsipmodel.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByAPIToken(apitoken string) (*arsipmodel.User, error) {
	var user arsipmodel.User
	if err := s.db.Where("api_token = ?", apitoken).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUsersByRole lists holders of role. A nil unitID matches every unit.
func (s *GormUserStor) GetUsersByRole(role arsipmodel.Role, unitID *int) ([]arsipmodel.User, error) {
	var users []arsipmodel.User
	query := s.db.Where("role = ?", role)
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}

	err := query.Order("id").Find(&users).Error
	return users, err
}
