package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// LocalConfig holds configuration for filesystem storage.
type LocalConfig struct {
	BasePath string
	BaseURL  string
}

type localProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider stores files under a base directory on the local filesystem.
func NewLocalProvider(config LocalConfig) (Provider, error) {
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localProvider{
		basePath: config.BasePath,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
	}, nil
}

func (p *localProvider) Upload(file *multipart.FileHeader, config UploadConfig) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	return p.UploadBytes(data, file.Filename, config)
}

func (p *localProvider) UploadBytes(data []byte, filename string, config UploadConfig) (*UploadResult, error) {
	unique := generateUniqueFilename(filename)
	relPath := filepath.Join(config.UploadPath, unique)
	fullPath := filepath.Join(p.basePath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		Filename: unique,
		Path:     filepath.ToSlash(relPath),
		Size:     int64(len(data)),
	}, nil
}

func (p *localProvider) Delete(path string) error {
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(path))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *localProvider) GetURL(path string) string {
	return p.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}
