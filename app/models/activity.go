package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Activity is one audit log row, recorded whenever a catalog entity is
// created, updated or deleted.
type Activity struct {
	Id         uint           `json:"id" gorm:"primarykey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserId     uint           `json:"user_id" gorm:"index"`
	EntityType string         `json:"entity_type" gorm:"size:50;index"`
	EntityId   uint           `json:"entity_id" gorm:"index"`
	Action     string         `json:"action" gorm:"size:20"`
	Summary    string         `json:"summary" gorm:"size:500"`
}

func (m *Activity) TableName() string {
	return "activities"
}

func (m *Activity) GetId() uint {
	return m.Id
}

func (m *Activity) GetModelName() string {
	return "activity"
}

// ActivityResponse represents the API response for Activity
type ActivityResponse struct {
	Id         uint      `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserId     uint      `json:"user_id"`
	EntityType string    `json:"entity_type"`
	EntityId   uint      `json:"entity_id"`
	Action     string    `json:"action"`
	Summary    string    `json:"summary"`
}

// ToResponse converts the model to an API response
func (m *Activity) ToResponse() *ActivityResponse {
	if m == nil {
		return nil
	}
	return &ActivityResponse{
		Id:         m.Id,
		CreatedAt:  m.CreatedAt,
		UserId:     m.UserId,
		EntityType: m.EntityType,
		EntityId:   m.EntityId,
		Action:     m.Action,
		Summary:    m.Summary,
	}
}

// Describe renders a short human readable line for activity feeds.
func (m *Activity) Describe() string {
	if m.Summary != "" {
		return m.Summary
	}
	return fmt.Sprintf("%s %s #%d", m.Action, m.EntityType, m.EntityId)
}
