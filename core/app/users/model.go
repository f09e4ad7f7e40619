package users

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/storage"
)

// User is an account. Catalog rows (books, summaries, settings) hang
// off its id; taxonomy rows are shared between accounts.
type User struct {
	Id        uint                `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name      string              `json:"name" gorm:"column:name;not null;size:255"`
	Email     string              `json:"email" gorm:"column:email;unique;not null;size:255"`
	Password  string              `json:"-" gorm:"column:password;size:255;not null"`
	RoleId    uint                `json:"role_id" gorm:"column:role_id"`
	Role      *authorization.Role `json:"role,omitempty" gorm:"foreignKey:RoleId;references:ID"`
	Avatar    *storage.Attachment `json:"avatar,omitempty" gorm:"foreignKey:ModelId;references:Id"`
	LastLogin *time.Time          `json:"last_login,omitempty" gorm:"column:last_login"`
	CreatedAt time.Time           `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time           `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt      `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (m *User) TableName() string {
	return "users"
}

// GetId satisfies the attachable contract of active storage.
func (m *User) GetId() uint {
	return m.Id
}

// GetModelName satisfies the attachable contract of active storage.
func (m *User) GetModelName() string {
	return "users"
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=255"`
	RoleId   uint   `json:"role_id"`
}

// UpdateUserRequest carries partial updates; empty fields are left
// unchanged.
type UpdateUserRequest struct {
	Name   string `json:"name,omitempty" binding:"max=255"`
	Email  string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	RoleId uint   `json:"role_id,omitempty"`
}

// UpdatePasswordRequest is the self-service password change; the
// current password is verified first.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required,max=255"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=255"`
}

// ChangePasswordRequest is the admin reset; no old password needed.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserResponse struct {
	Id        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	RoleId    uint   `json:"role_id"`
	RoleName  string `json:"role_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type UserSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

func (m *User) ToResponse() *UserResponse {
	if m == nil {
		return nil
	}
	response := &UserResponse{
		Id:        m.Id,
		Name:      m.Name,
		Email:     m.Email,
		RoleId:    m.RoleId,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}

	if m.Role != nil {
		response.RoleName = m.Role.Name
	}
	if m.Avatar != nil {
		response.AvatarURL = m.Avatar.URL
	}
	if m.LastLogin != nil {
		response.LastLogin = m.LastLogin.Format(time.RFC3339)
	}

	return response
}

func (m *User) ToSelectOption() *UserSelectOption {
	if m == nil {
		return nil
	}

	name := m.Name
	if name == "" {
		name = m.Email
	}
	if name == "" {
		name = fmt.Sprintf("User #%d", m.Id)
	}

	return &UserSelectOption{Id: m.Id, Name: name}
}

// Preload loads the role and the avatar attachment.
func (m *User) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").Preload("Avatar", "model_type = ? AND field = ?", "users", "avatar")
}
