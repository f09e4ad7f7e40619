package books

import (
	"math"
	"mime/multipart"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/storage"
	"bookstack/core/types"
)

const (
	CreateBookEvent = "books.create"
	UpdateBookEvent = "books.update"
	DeleteBookEvent = "books.delete"
)

type BookService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Storage *storage.ActiveStorage
	Logger  logger.Logger
}

func NewBookService(db *gorm.DB, emitter *emitter.Emitter, activeStorage *storage.ActiveStorage, logger logger.Logger) *BookService {
	activeStorage.RegisterAttachment("book", storage.AttachmentConfig{
		Field:             "cover",
		Path:              "covers",
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif"},
		MaxFileSize:       10 << 20, // 10MB
		Multiple:          false,
	})

	s := &BookService{
		DB:      db,
		Logger:  logger,
		Emitter: emitter,
		Storage: activeStorage,
	}

	// Books of a deleted account go with it.
	emitter.On("users.delete", func(data any) {
		if owner, ok := data.(interface{ GetId() uint }); ok {
			s.purgeUser(owner.GetId())
		}
	})

	return s
}

func (s *BookService) purgeUser(userId uint) {
	if userId == 0 {
		return
	}
	err := s.DB.Where("user_id = ?", userId).Delete(&models.Book{}).Error
	if err != nil {
		s.Logger.Error("failed to purge books of deleted user",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
	}
}

// scoped returns a query restricted to the owner's rows. Every entry
// point goes through this; ownership is not bypassable.
func (s *BookService) scoped(userId uint) *gorm.DB {
	return s.DB.Model(&models.Book{}).Where("books.user_id = ?", userId)
}

// applySorting applies sorting to the query based on the sort and order parameters
func (s *BookService) applySorting(query *gorm.DB, sortBy *string, sortOrder *string) {
	validSortFields := map[string]string{
		"id":             "id",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
		"title":          "title",
		"author":         "author",
		"publisher":      "publisher",
		"published_year": "published_year",
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

func (s *BookService) Create(userId uint, req *models.CreateBookRequest) (*models.Book, error) {
	item := &models.Book{
		UserId:        userId,
		Title:         req.Title,
		Slug:          slug.Make(req.Title),
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedYear: req.PublishedYear,
		ISBN:          req.ISBN,
		Description:   req.Description,
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create book", logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(CreateBookEvent, item)

	return s.GetById(userId, item.Id)
}

func (s *BookService) GetById(userId, id uint) (*models.Book, error) {
	item := &models.Book{}

	query := item.Preload(s.scoped(userId))
	if err := query.First(item, id).Error; err != nil {
		s.Logger.Error("failed to get book",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	return item, nil
}

func (s *BookService) Update(userId, id uint, req *models.UpdateBookRequest) (*models.Book, error) {
	item := &models.Book{}
	if err := s.scoped(userId).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find book for update",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if req.Title != "" {
		item.Title = req.Title
		item.Slug = slug.Make(req.Title)
	}
	if req.Author != "" {
		item.Author = req.Author
	}
	if req.Publisher != "" {
		item.Publisher = req.Publisher
	}
	if req.PublishedYear != 0 {
		item.PublishedYear = req.PublishedYear
	}
	if req.ISBN != "" {
		item.ISBN = req.ISBN
	}
	if req.Description != "" {
		item.Description = req.Description
	}

	if err := s.DB.Save(item).Error; err != nil {
		s.Logger.Error("failed to update book",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	result, err := s.GetById(userId, item.Id)
	if err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateBookEvent, result)

	return result, nil
}

func (s *BookService) Delete(userId, id uint) error {
	item := &models.Book{}
	if err := item.Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find book for deletion",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	if item.Cover != nil {
		if err := s.Storage.Delete(item.Cover); err != nil {
			s.Logger.Error("failed to delete cover",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return err
		}
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete book",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	s.Emitter.Emit(DeleteBookEvent, item)

	return nil
}

func (s *BookService) GetAll(userId uint, page *int, limit *int, sortBy *string, sortOrder *string) (*types.PaginatedResponse, error) {
	var items []*models.Book
	var total int64

	query := s.scoped(userId)

	defaultPage := 1
	defaultLimit := 10
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	if err := query.Count(&total).Error; err != nil {
		s.Logger.Error("failed to count books", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Offset(offset).Limit(*limit)

	s.applySorting(query, sortBy, sortOrder)

	query = (&models.Book{}).Preload(query)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get books", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.BookResponse, len(items))
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

// GetAllForSelect gets the user's books for select box/dropdown options
func (s *BookService) GetAllForSelect(userId uint) ([]*models.Book, error) {
	var items []*models.Book

	query := s.scoped(userId)
	query = query.Select("id, title")
	query = query.Order("title ASC")

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to fetch books for select", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// UploadCover attaches a cover image, optionally cropped server-side.
func (s *BookService) UploadCover(userId, id uint, file *multipart.FileHeader, crop storage.CropRect) (*models.Book, error) {
	item := &models.Book{}
	if err := (&models.Book{}).Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find book",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if item.Cover != nil {
		if err := s.Storage.Delete(item.Cover); err != nil {
			s.Logger.Error("failed to delete existing cover",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return nil, err
		}
	}

	attachment, err := s.Storage.AttachCropped(item, "cover", file, crop)
	if err != nil {
		s.Logger.Error("failed to attach cover",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	item.Cover = attachment
	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateBookEvent, item)

	return s.GetById(userId, id)
}

// RemoveCover removes the book's cover attachment.
func (s *BookService) RemoveCover(userId, id uint) (*models.Book, error) {
	item := &models.Book{}
	if err := (&models.Book{}).Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		return nil, err
	}

	if item.Cover == nil {
		return item, nil
	}

	if err := s.Storage.Delete(item.Cover); err != nil {
		s.Logger.Error("failed to delete cover",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	item.Cover = nil
	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateBookEvent, item)

	return s.GetById(userId, id)
}
