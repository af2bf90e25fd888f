package services

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
)

// Staff roles
const (
	RoleWaiter  = "waiter"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

// DirectoryService lists the staff orders can be attributed to. No auth
// semantics: the front-end shows the list and trusts the selection.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// ListUsers returns the active staff ordered by name.
func (s *DirectoryService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("active = ?", true).Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
