package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Config holds storage configuration.
type Config struct {
	Provider  string // "local" or "s3"
	Path      string
	BaseURL   string
	APIKey    string
	APISecret string
	Endpoint  string
	Bucket    string
	Region    string
	CDN       string
}

// Provider is the backend that physically stores uploaded files.
type Provider interface {
	Upload(file *multipart.FileHeader, config UploadConfig) (*UploadResult, error)
	UploadBytes(data []byte, filename string, config UploadConfig) (*UploadResult, error)
	Delete(path string) error
	GetURL(path string) string
}

// UploadConfig constrains a single upload.
type UploadConfig struct {
	AllowedExtensions []string
	MaxFileSize       int64
	UploadPath        string
}

// UploadResult describes a stored file.
type UploadResult struct {
	Filename string
	Path     string
	Size     int64
}

// Attachment is the polymorphic file record linked to any Attachable model.
type Attachment struct {
	Id        uint           `json:"id" gorm:"primarykey"`
	ModelType string         `json:"model_type" gorm:"index:idx_attachment_owner"`
	ModelId   uint           `json:"model_id" gorm:"index:idx_attachment_owner"`
	Field     string         `json:"field"`
	Filename  string         `json:"filename"`
	Path      string         `json:"path"`
	URL       string         `json:"url"`
	Size      int64          `json:"size"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// Attachable is implemented by models that own attachments.
type Attachable interface {
	GetId() uint
	GetModelName() string
}

// AttachmentConfig declares one attachment slot on a model.
type AttachmentConfig struct {
	Field             string
	Path              string
	AllowedExtensions []string
	MaxFileSize       int64
	Multiple          bool
}

// generateUniqueFilename prefixes the original name with a random hex token so
// uploads never collide.
func generateUniqueFilename(original string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(original))
	}
	return hex.EncodeToString(buf) + "_" + sanitizeFilename(original)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
