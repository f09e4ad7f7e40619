package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds configuration for S3-compatible object storage.
type S3Config struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	Region          string
	BaseURL         string
	CDN             string
}

type s3Provider struct {
	client *s3.Client
	bucket string
	cfg    S3Config
}

// NewS3Provider creates a provider backed by an S3-compatible bucket.
func NewS3Provider(config S3Config) (Provider, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires a bucket name")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AccessKeyID,
			config.AccessKeySecret,
			"",
		)),
		awsconfig.WithRegion(config.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &s3Provider{
		client: client,
		bucket: config.Bucket,
		cfg:    config,
	}, nil
}

func (p *s3Provider) Upload(file *multipart.FileHeader, config UploadConfig) (*UploadResult, error) {
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

func (p *s3Provider) UploadBytes(data []byte, filename string, config UploadConfig) (*UploadResult, error) {
	unique := generateUniqueFilename(filename)
	key := config.UploadPath + "/" + unique

	_, err := p.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Filename: unique,
		Path:     key,
		Size:     int64(len(data)),
	}, nil
}

func (p *s3Provider) Delete(path string) error {
	_, err := p.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	return err
}

func (p *s3Provider) GetURL(path string) string {
	path = strings.TrimLeft(path, "/")
	if p.cfg.CDN != "" {
		return strings.TrimRight(p.cfg.CDN, "/") + "/" + path
	}
	if p.cfg.BaseURL != "" {
		return strings.TrimRight(p.cfg.BaseURL, "/") + "/" + path
	}
	if p.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.cfg.Endpoint, "/"), p.bucket, path)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.cfg.Region, path)
}
