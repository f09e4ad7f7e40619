package models

import (
	"time"

	"gorm.io/gorm"

	"bookstack/core/storage"
)

// Book represents a source volume that transactions summarize
type Book struct {
	Id            uint                `json:"id" gorm:"primarykey"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `json:"deleted_at" gorm:"index"`
	UserId        uint                `json:"user_id" gorm:"index;not null"`
	Title         string              `json:"title" gorm:"not null;size:500"`
	Slug          string              `json:"slug" gorm:"index;size:500"`
	Author        string              `json:"author" gorm:"size:255"`
	Publisher     string              `json:"publisher" gorm:"size:255"`
	PublishedYear int                 `json:"published_year"`
	ISBN          string              `json:"isbn" gorm:"size:32"`
	Description   string              `json:"description" gorm:"type:text"`
	Cover         *storage.Attachment `json:"cover,omitempty" gorm:"foreignKey:ModelId;references:Id"`
}

// TableName returns the table name for the Book model
func (m *Book) TableName() string {
	return "books"
}

// GetId returns the Id of the model
func (m *Book) GetId() uint {
	return m.Id
}

// GetModelName returns the model name
func (m *Book) GetModelName() string {
	return "book"
}

// GetUserId returns the owning user's id
func (m *Book) GetUserId() uint {
	return m.UserId
}

// CreateBookRequest represents the request payload for creating a Book
type CreateBookRequest struct {
	Title         string `json:"title" binding:"required,max=500"`
	Author        string `json:"author" binding:"max=255"`
	Publisher     string `json:"publisher" binding:"max=255"`
	PublishedYear int    `json:"published_year"`
	ISBN          string `json:"isbn" binding:"max=32"`
	Description   string `json:"description"`
}

// UpdateBookRequest represents the request payload for updating a Book
type UpdateBookRequest struct {
	Title         string `json:"title,omitempty" binding:"max=500"`
	Author        string `json:"author,omitempty" binding:"max=255"`
	Publisher     string `json:"publisher,omitempty" binding:"max=255"`
	PublishedYear int    `json:"published_year,omitempty"`
	ISBN          string `json:"isbn,omitempty" binding:"max=32"`
	Description   string `json:"description,omitempty"`
}

// BookResponse represents the API response for Book
type BookResponse struct {
	Id            uint                `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	UserId        uint                `json:"user_id"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Author        string              `json:"author"`
	Publisher     string              `json:"publisher"`
	PublishedYear int                 `json:"published_year"`
	ISBN          string              `json:"isbn"`
	Description   string              `json:"description"`
	Cover         *storage.Attachment `json:"cover,omitempty"`
}

// BookModelResponse represents a simplified response when this model is part of other entities
type BookModelResponse struct {
	Id     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookSelectOption represents a simplified response for select boxes and dropdowns
type BookSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"` // From Title field
}

// ToResponse converts the model to an API response
func (m *Book) ToResponse() *BookResponse {
	if m == nil {
		return nil
	}
	return &BookResponse{
		Id:            m.Id,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		UserId:        m.UserId,
		Title:         m.Title,
		Slug:          m.Slug,
		Author:        m.Author,
		Publisher:     m.Publisher,
		PublishedYear: m.PublishedYear,
		ISBN:          m.ISBN,
		Description:   m.Description,
		Cover:         m.Cover,
	}
}

// ToModelResponse converts the model to a simplified response for when it's part of other entities
func (m *Book) ToModelResponse() *BookModelResponse {
	if m == nil {
		return nil
	}
	return &BookModelResponse{
		Id:     m.Id,
		Title:  m.Title,
		Author: m.Author,
	}
}

// ToSelectOption converts the model to a select option for dropdowns
func (m *Book) ToSelectOption() *BookSelectOption {
	if m == nil {
		return nil
	}
	return &BookSelectOption{
		Id:   m.Id,
		Name: m.Title,
	}
}

// Preload preloads all the model's relationships
func (m *Book) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Cover", "model_type = ? AND field = ?", "book", "cover")
}
