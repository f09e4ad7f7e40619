package tags

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"mime/multipart"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/types"
)

const (
	CreateTagEvent      = "tags.create"
	UpdateTagEvent      = "tags.update"
	DeleteTagEvent      = "tags.delete"
	ImportProgressEvent = "tags.import.progress"
)

// ImportProgress mirrors the subjects importer payload.
type ImportProgress struct {
	Kind      string `json:"kind"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Done      bool   `json:"done"`
}

type TagService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Logger  logger.Logger
}

func NewTagService(db *gorm.DB, emitter *emitter.Emitter, logger logger.Logger) *TagService {
	return &TagService{
		DB:      db,
		Emitter: emitter,
		Logger:  logger,
	}
}

func (s *TagService) applySorting(query *gorm.DB, sortBy *string, sortOrder *string) {
	validSortFields := map[string]string{
		"id":         "id",
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
	}

	sortField := "id"
	if sortBy != nil && *sortBy != "" {
		if field, exists := validSortFields[*sortBy]; exists {
			sortField = field
		}
	}

	sortDirection := "desc"
	if sortOrder != nil && (*sortOrder == "asc" || *sortOrder == "desc") {
		sortDirection = *sortOrder
	}

	query.Order(sortField + " " + sortDirection)
}

func (s *TagService) Create(req *models.CreateTagRequest) (*models.Tag, error) {
	item := &models.Tag{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create tag", logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(CreateTagEvent, item)

	return item, nil
}

func (s *TagService) GetById(id uint) (*models.Tag, error) {
	item := &models.Tag{}
	if err := s.DB.First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *TagService) Update(id uint, req *models.UpdateTagRequest) (*models.Tag, error) {
	item := &models.Tag{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find tag for update",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if req.Name != "" {
		item.Name = req.Name
		item.Slug = slug.Make(req.Name)
	}
	if req.Description != "" {
		item.Description = req.Description
	}

	if err := s.DB.Save(item).Error; err != nil {
		s.Logger.Error("failed to update tag",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	s.Emitter.Emit(UpdateTagEvent, item)

	return item, nil
}

func (s *TagService) Delete(id uint) error {
	item := &models.Tag{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find tag for deletion",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete tag",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	s.Emitter.Emit(DeleteTagEvent, item)

	return nil
}

func (s *TagService) GetAll(page *int, limit *int, sortBy *string, sortOrder *string) (*types.PaginatedResponse, error) {
	var items []*models.Tag
	var total int64

	query := s.DB.Model(&models.Tag{})

	defaultPage := 1
	defaultLimit := 10
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	if err := query.Count(&total).Error; err != nil {
		s.Logger.Error("failed to count tags", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Offset(offset).Limit(*limit)

	s.applySorting(query, sortBy, sortOrder)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get tags", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.TagResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	totalPages := int(math.Ceil(float64(total) / float64(*limit)))
	if totalPages == 0 {
		totalPages = 1
	}

	return &types.PaginatedResponse{
		Data: responses,
		Pagination: types.Pagination{
			Total:      int(total),
			Page:       *page,
			PageSize:   *limit,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *TagService) GetAllForSelect() ([]*models.Tag, error) {
	var items []*models.Tag

	query := s.DB.Model(&models.Tag{})
	query = query.Select("id, name")
	query = query.Order("name ASC")

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to fetch tags for select", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// ExportCSV writes all tags as CSV to w. Columns: name, description.
func (s *TagService) ExportCSV(w io.Writer) error {
	var items []*models.Tag
	if err := s.DB.Order("name ASC").Find(&items).Error; err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "description"}); err != nil {
		return err
	}
	for _, item := range items {
		if err := cw.Write([]string{item.Name, item.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV upserts tags from a CSV file keyed by slug.
func (s *TagService) ImportCSV(file *multipart.FileHeader) (*ImportProgress, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	nameIdx, descIdx := -1, -1
	for i, col := range header {
		switch col {
		case "name":
			nameIdx = i
		case "description":
			descIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("csv missing required column %q", "name")
	}

	progress := &ImportProgress{Kind: "tags"}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		name := record[nameIdx]
		if name == "" {
			progress.Skipped++
			progress.Processed++
			continue
		}
		description := ""
		if descIdx >= 0 && descIdx < len(record) {
			description = record[descIdx]
		}

		key := slug.Make(name)
		var existing models.Tag
		err = s.DB.Where("slug = ?", key).First(&existing).Error
		switch {
		case err == nil:
			existing.Name = name
			if description != "" {
				existing.Description = description
			}
			if err := s.DB.Save(&existing).Error; err != nil {
				return nil, fmt.Errorf("updating %q: %w", name, err)
			}
			s.Emitter.Emit(UpdateTagEvent, &existing)
			progress.Updated++
		case err == gorm.ErrRecordNotFound:
			item := models.Tag{Name: name, Slug: key, Description: description}
			if err := s.DB.Create(&item).Error; err != nil {
				return nil, fmt.Errorf("creating %q: %w", name, err)
			}
			s.Emitter.Emit(CreateTagEvent, &item)
			progress.Created++
		default:
			return nil, err
		}

		progress.Processed++
		if progress.Processed%25 == 0 {
			s.Emitter.Emit(ImportProgressEvent, *progress)
		}
	}

	progress.Done = true
	s.Emitter.Emit(ImportProgressEvent, *progress)
	return progress, nil
}
