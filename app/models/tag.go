package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag is the narrow taxonomy attached to transactions.
type Tag struct {
	Id          uint           `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Name        string         `json:"name" gorm:"not null;size:255;uniqueIndex"`
	Slug        string         `json:"slug" gorm:"index;size:255"`
	Description string         `json:"description" gorm:"type:text"`
}

func (m *Tag) TableName() string {
	return "tags"
}

func (m *Tag) GetId() uint {
	return m.Id
}

func (m *Tag) GetModelName() string {
	return "tag"
}

// CreateTagRequest represents the request payload for creating a Tag
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateTagRequest represents the request payload for updating a Tag
type UpdateTagRequest struct {
	Name        string `json:"name,omitempty" binding:"max=255"`
	Description string `json:"description,omitempty"`
}

// TagResponse represents the API response for Tag
type TagResponse struct {
	Id          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
}

// TagModelResponse represents a simplified response when this model is part of other entities
type TagModelResponse struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

// TagSelectOption represents a simplified response for select boxes and dropdowns
type TagSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

func (m *Tag) ToResponse() *TagResponse {
	if m == nil {
		return nil
	}
	return &TagResponse{
		Id:          m.Id,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
	}
}

func (m *Tag) ToModelResponse() *TagModelResponse {
	if m == nil {
		return nil
	}
	return &TagModelResponse{
		Id:   m.Id,
		Name: m.Name,
	}
}

func (m *Tag) ToSelectOption() *TagSelectOption {
	if m == nil {
		return nil
	}
	return &TagSelectOption{
		Id:   m.Id,
		Name: m.Name,
	}
}

// Preload preloads all the model's relationships
func (m *Tag) Preload(db *gorm.DB) *gorm.DB {
	return db
}
