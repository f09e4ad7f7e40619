package models

import (
	"time"

	"gorm.io/gorm"
)

// Subject is the broad taxonomy attached to transactions. Tags cover
// the narrow one; both hang off transactions via join tables.
type Subject struct {
	Id          uint           `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Name        string         `json:"name" gorm:"not null;size:255;uniqueIndex"`
	Slug        string         `json:"slug" gorm:"index;size:255"`
	Description string         `json:"description" gorm:"type:text"`
}

func (m *Subject) TableName() string {
	return "subjects"
}

func (m *Subject) GetId() uint {
	return m.Id
}

func (m *Subject) GetModelName() string {
	return "subject"
}

// CreateSubjectRequest represents the request payload for creating a Subject
type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateSubjectRequest represents the request payload for updating a Subject
type UpdateSubjectRequest struct {
	Name        string `json:"name,omitempty" binding:"max=255"`
	Description string `json:"description,omitempty"`
}

// SubjectResponse represents the API response for Subject
type SubjectResponse struct {
	Id          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
}

// SubjectModelResponse represents a simplified response when this model is part of other entities
type SubjectModelResponse struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

// SubjectSelectOption represents a simplified response for select boxes and dropdowns
type SubjectSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

func (m *Subject) ToResponse() *SubjectResponse {
	if m == nil {
		return nil
	}
	return &SubjectResponse{
		Id:          m.Id,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
	}
}

func (m *Subject) ToModelResponse() *SubjectModelResponse {
	if m == nil {
		return nil
	}
	return &SubjectModelResponse{
		Id:   m.Id,
		Name: m.Name,
	}
}

func (m *Subject) ToSelectOption() *SubjectSelectOption {
	if m == nil {
		return nil
	}
	return &SubjectSelectOption{
		Id:   m.Id,
		Name: m.Name,
	}
}

// Preload preloads all the model's relationships
func (m *Subject) Preload(db *gorm.DB) *gorm.DB {
	return db
}
