package authorization

import "gorm.io/gorm"

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// Role is a named access level. Users reference roles by id; the two
// built-in roles are seeded on migration and cannot be deleted.
type Role struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	IsSystem    bool   `json:"is_system" gorm:"default:false"`
}

func (Role) TableName() string {
	return "roles"
}

type RoleResponse struct {
	Id          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `json:"is_system"`
}

func (r *Role) ToResponse() *RoleResponse {
	return &RoleResponse{
		Id:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
	}
}
