package models

import (
	"time"

	"gorm.io/gorm"
)

// Setting is one per-user preference row. Each user has at most one row
// per key.
type Setting struct {
	Id          uint           `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserId      uint           `json:"user_id" gorm:"uniqueIndex:idx_settings_user_key;not null"`
	SettingKey  string         `json:"setting_key" gorm:"size:100;uniqueIndex:idx_settings_user_key"`
	Type        string         `json:"type" gorm:"size:20"` // string, int or bool
	ValueString string         `json:"value_string" gorm:"type:text"`
	ValueInt    int            `json:"value_int"`
	ValueBool   bool           `json:"value_bool"`
}

func (m *Setting) TableName() string {
	return "settings"
}

func (m *Setting) GetId() uint {
	return m.Id
}

func (m *Setting) GetModelName() string {
	return "setting"
}

// GetUserId returns the owning user's id
func (m *Setting) GetUserId() uint {
	return m.UserId
}

// Value returns the typed value for API responses.
func (m *Setting) Value() any {
	switch m.Type {
	case "int":
		return m.ValueInt
	case "bool":
		return m.ValueBool
	default:
		return m.ValueString
	}
}

// UpdateSettingRequest represents the request payload for setting a preference value
type UpdateSettingRequest struct {
	Type        string `json:"type" binding:"required,oneof=string int bool"`
	ValueString string `json:"value_string"`
	ValueInt    int    `json:"value_int"`
	ValueBool   bool   `json:"value_bool"`
}

// SettingResponse represents the API response for a Setting
type SettingResponse struct {
	SettingKey string    `json:"setting_key"`
	Type       string    `json:"type"`
	Value      any       `json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToResponse converts the model to an API response
func (m *Setting) ToResponse() *SettingResponse {
	if m == nil {
		return nil
	}
	return &SettingResponse{
		SettingKey: m.SettingKey,
		Type:       m.Type,
		Value:      m.Value(),
		UpdatedAt:  m.UpdatedAt,
	}
}
