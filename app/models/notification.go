package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is one message shown in the notification center. A zero
// UserId means the notification is visible to every user.
type Notification struct {
	Id        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserId    uint           `json:"user_id" gorm:"index"`
	Title     string         `json:"title" gorm:"size:200"`
	Body      string         `json:"body" gorm:"type:text"`
	ReadAt    *time.Time     `json:"read_at"`
}

func (m *Notification) TableName() string {
	return "notifications"
}

func (m *Notification) GetId() uint {
	return m.Id
}

func (m *Notification) GetModelName() string {
	return "notification"
}

// NotificationResponse represents the API response for Notification
type NotificationResponse struct {
	Id        uint       `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
}

// ToResponse converts the model to an API response
func (m *Notification) ToResponse() *NotificationResponse {
	if m == nil {
		return nil
	}
	return &NotificationResponse{
		Id:        m.Id,
		CreatedAt: m.CreatedAt,
		Title:     m.Title,
		Body:      m.Body,
		ReadAt:    m.ReadAt,
	}
}
