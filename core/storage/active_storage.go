package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gertd/go-pluralize"
	"gorm.io/gorm"
)

// ActiveStorage attaches uploaded files to models. Each model registers its
// attachment slots once; Attach validates, processes and stores the file and
// persists an Attachment record.
type ActiveStorage struct {
	db             *gorm.DB
	provider       Provider
	defaultPath    string
	configs        map[string]map[string]AttachmentConfig
	imageProcessor *ImageProcessor
	pluralizer     *pluralize.Client
}

// NewActiveStorage constructs the storage layer for the configured provider
// and migrates the attachments table.
func NewActiveStorage(db *gorm.DB, config Config) (*ActiveStorage, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	storagePath := config.Path
	if !filepath.IsAbs(storagePath) {
		storagePath = filepath.Join(cwd, storagePath)
	}

	var provider Provider
	switch strings.ToLower(config.Provider) {
	case "local":
		provider, err = NewLocalProvider(LocalConfig{
			BasePath: storagePath,
			BaseURL:  config.BaseURL,
		})
	case "s3":
		provider, err = NewS3Provider(S3Config{
			AccessKeyID:     config.APIKey,
			AccessKeySecret: config.APISecret,
			Endpoint:        config.Endpoint,
			Bucket:          config.Bucket,
			Region:          config.Region,
			BaseURL:         config.BaseURL,
			CDN:             config.CDN,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	as := &ActiveStorage{
		db:             db,
		provider:       provider,
		defaultPath:    storagePath,
		configs:        make(map[string]map[string]AttachmentConfig),
		imageProcessor: NewImageProcessor(85),
		pluralizer:     pluralize.NewClient(),
	}

	if err := db.AutoMigrate(&Attachment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate attachments table: %w", err)
	}

	return as, nil
}

// RegisterAttachment declares an attachment slot for a model.
func (as *ActiveStorage) RegisterAttachment(modelName string, config AttachmentConfig) {
	if as.configs[modelName] == nil {
		as.configs[modelName] = make(map[string]AttachmentConfig)
	}
	if config.Path == "" {
		config.Path = as.pluralizer.Plural(config.Field)
	}
	as.configs[modelName][config.Field] = config
}

// Attach stores the file for a model field and returns the Attachment record.
func (as *ActiveStorage) Attach(model Attachable, field string, file *multipart.FileHeader) (*Attachment, error) {
	return as.AttachCropped(model, field, file, CropRect{})
}

// AttachCropped stores the file, first applying the given crop region when
// the upload is an image.
func (as *ActiveStorage) AttachCropped(model Attachable, field string, file *multipart.FileHeader, crop CropRect) (*Attachment, error) {
	config, err := as.getConfig(model.GetModelName(), field)
	if err != nil {
		return nil, err
	}

	if err := as.validateFile(file, config); err != nil {
		return nil, err
	}

	processed, processedName, err := as.imageProcessor.Process(file, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	uploadPath := filepath.ToSlash(filepath.Join(
		config.Path,
		as.pluralizer.Plural(model.GetModelName()),
		field,
	))
	uploadConfig := UploadConfig{
		AllowedExtensions: config.AllowedExtensions,
		MaxFileSize:       config.MaxFileSize,
		UploadPath:        uploadPath,
	}

	var result *UploadResult
	if processed != nil {
		result, err = as.provider.UploadBytes(processed, processedName, uploadConfig)
	} else {
		result, err = as.provider.Upload(file, uploadConfig)
	}
	if err != nil {
		return nil, err
	}

	attachment := &Attachment{
		ModelType: model.GetModelName(),
		ModelId:   model.GetId(),
		Field:     field,
		Filename:  result.Filename,
		Path:      result.Path,
		URL:       as.provider.GetURL(result.Path),
		Size:      result.Size,
	}

	if err := as.db.Create(attachment).Error; err != nil {
		// Best effort cleanup of the orphaned upload.
		_ = as.provider.Delete(result.Path)
		return nil, err
	}

	return attachment, nil
}

// Delete removes both the stored file and the attachment record.
func (as *ActiveStorage) Delete(attachment *Attachment) error {
	if err := as.provider.Delete(attachment.Path); err != nil {
		return err
	}
	return as.db.Delete(attachment).Error
}

// LoadAttachment fetches the attachment record for a model field.
func (as *ActiveStorage) LoadAttachment(model Attachable, field string) (*Attachment, error) {
	var attachment Attachment
	err := as.db.Where("model_type = ? AND model_id = ? AND field = ?",
		model.GetModelName(), model.GetId(), field).First(&attachment).Error
	if err != nil {
		return nil, err
	}

	attachment.URL = as.provider.GetURL(attachment.Path)
	return &attachment, nil
}

// GetProvider exposes the underlying provider.
func (as *ActiveStorage) GetProvider() Provider {
	return as.provider
}

func (as *ActiveStorage) getConfig(modelName, field string) (AttachmentConfig, error) {
	modelConfigs, ok := as.configs[modelName]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for model %s", modelName)
	}
	config, ok := modelConfigs[field]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for field %s in model %s", field, modelName)
	}
	return config, nil
}

func (as *ActiveStorage) validateFile(file *multipart.FileHeader, config AttachmentConfig) error {
	if config.MaxFileSize > 0 && file.Size > config.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", config.MaxFileSize)
	}

	if len(config.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		allowed := false
		for _, e := range config.AllowedExtensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("file extension %s is not allowed", ext)
		}
	}

	return nil
}
