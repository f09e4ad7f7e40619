package subjects

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
	CreateSubjectEvent   = "subjects.create"
	UpdateSubjectEvent   = "subjects.update"
	DeleteSubjectEvent   = "subjects.delete"
	ImportProgressEvent  = "subjects.import.progress"
	importProgressStride = 25
)

// ImportProgress is emitted while a CSV import runs and relayed to
// websocket clients.
type ImportProgress struct {
	Kind      string `json:"kind"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Done      bool   `json:"done"`
}

type SubjectService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Logger  logger.Logger
}

func NewSubjectService(db *gorm.DB, emitter *emitter.Emitter, logger logger.Logger) *SubjectService {
	return &SubjectService{
		DB:      db,
		Emitter: emitter,
		Logger:  logger,
	}
}

func (s *SubjectService) applySorting(query *gorm.DB, sortBy *string, sortOrder *string) {
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

func (s *SubjectService) Create(req *models.CreateSubjectRequest) (*models.Subject, error) {
	item := &models.Subject{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create subject", logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(CreateSubjectEvent, item)

	return item, nil
}

func (s *SubjectService) GetById(id uint) (*models.Subject, error) {
	item := &models.Subject{}
	if err := s.DB.First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SubjectService) Update(id uint, req *models.UpdateSubjectRequest) (*models.Subject, error) {
	item := &models.Subject{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find subject for update",
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
		s.Logger.Error("failed to update subject",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	s.Emitter.Emit(UpdateSubjectEvent, item)

	return item, nil
}

func (s *SubjectService) Delete(id uint) error {
	item := &models.Subject{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find subject for deletion",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete subject",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	s.Emitter.Emit(DeleteSubjectEvent, item)

	return nil
}

func (s *SubjectService) GetAll(page *int, limit *int, sortBy *string, sortOrder *string) (*types.PaginatedResponse, error) {
	var items []*models.Subject
	var total int64

	query := s.DB.Model(&models.Subject{})

	defaultPage := 1
	defaultLimit := 10
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	if err := query.Count(&total).Error; err != nil {
		s.Logger.Error("failed to count subjects", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Offset(offset).Limit(*limit)

	s.applySorting(query, sortBy, sortOrder)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get subjects", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.SubjectResponse, len(items))
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

// GetAllForSelect gets all subjects for select box/dropdown options
func (s *SubjectService) GetAllForSelect() ([]*models.Subject, error) {
	var items []*models.Subject

	query := s.DB.Model(&models.Subject{})
	query = query.Select("id, name")
	query = query.Order("name ASC")

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to fetch subjects for select", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// ExportCSV writes all subjects as CSV to w. Columns: name, description.
func (s *SubjectService) ExportCSV(w io.Writer) error {
	var items []*models.Subject
	if err := s.DB.Order("name ASC").Find(&items).Error; err != nil {
		return fmt.Errorf("loading subjects: %w", err)
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

// ImportCSV upserts subjects from a CSV file. Rows match existing
// records by slug key, so renamed casing or spacing does not duplicate.
// Progress is emitted every importProgressStride rows and once at the end.
func (s *SubjectService) ImportCSV(file *multipart.FileHeader) (*ImportProgress, error) {
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

	progress := &ImportProgress{Kind: "subjects"}
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
		var existing models.Subject
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
			s.Emitter.Emit(UpdateSubjectEvent, &existing)
			progress.Updated++
		case err == gorm.ErrRecordNotFound:
			item := models.Subject{Name: name, Slug: key, Description: description}
			if err := s.DB.Create(&item).Error; err != nil {
				return nil, fmt.Errorf("creating %q: %w", name, err)
			}
			s.Emitter.Emit(CreateSubjectEvent, &item)
			progress.Created++
		default:
			return nil, err
		}

		progress.Processed++
		if progress.Processed%importProgressStride == 0 {
			s.Emitter.Emit(ImportProgressEvent, *progress)
		}
	}

	progress.Done = true
	s.Emitter.Emit(ImportProgressEvent, *progress)
	return progress, nil
}
