package authorization

import (
	"fmt"

	"gorm.io/gorm"

	"bookstack/core/logger"
)

type AuthorizationService struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewAuthorizationService(db *gorm.DB, log logger.Logger) *AuthorizationService {
	return &AuthorizationService{db: db, logger: log}
}

// SeedRoles creates the built-in roles when missing. Safe to run on
// every boot.
func (s *AuthorizationService) SeedRoles() error {
	builtin := []Role{
		{Name: RoleAdmin, Description: "Full access to all records and administration", IsSystem: true},
		{Name: RoleMember, Description: "Access to own records only", IsSystem: true},
	}
	for _, role := range builtin {
		var existing Role
		err := s.db.Where("name = ?", role.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("checking role %s: %w", role.Name, err)
		}
		if err := s.db.Create(&role).Error; err != nil {
			return fmt.Errorf("seeding role %s: %w", role.Name, err)
		}
		s.logger.Info("seeded role", logger.String("name", role.Name))
	}
	return nil
}

func (s *AuthorizationService) GetRoles() ([]Role, error) {
	var roles []Role
	if err := s.db.Order("id asc").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return roles, nil
}

func (s *AuthorizationService) GetRoleByName(name string) (*Role, error) {
	var role Role
	if err := s.db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
