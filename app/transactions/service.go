package transactions

import (
	"fmt"
	"math"
	"mime/multipart"

	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/storage"
	"bookstack/core/types"
)

const (
	CreateTransactionEvent = "transactions.create"
	UpdateTransactionEvent = "transactions.update"
	DeleteTransactionEvent = "transactions.delete"
)

type TransactionService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Storage *storage.ActiveStorage
	Logger  logger.Logger
}

func NewTransactionService(db *gorm.DB, emitter *emitter.Emitter, activeStorage *storage.ActiveStorage, logger logger.Logger) *TransactionService {
	activeStorage.RegisterAttachment("transaction", storage.AttachmentConfig{
		Field:             "page_image",
		Path:              "pages",
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif"},
		MaxFileSize:       15 << 20, // 15MB
		Multiple:          false,
	})

	s := &TransactionService{
		DB:      db,
		Logger:  logger,
		Emitter: emitter,
		Storage: activeStorage,
	}

	// Summaries of a deleted account go with it. The delete event also
	// invalidates cached search pages.
	emitter.On("users.delete", func(data any) {
		if owner, ok := data.(interface{ GetId() uint }); ok {
			s.purgeUser(owner.GetId())
		}
	})

	return s
}

func (s *TransactionService) purgeUser(userId uint) {
	if userId == 0 {
		return
	}
	err := s.DB.Where("user_id = ?", userId).Delete(&models.Transaction{}).Error
	if err != nil {
		s.Logger.Error("failed to purge transactions of deleted user",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
		return
	}
	s.Emitter.Emit(DeleteTransactionEvent, &models.Transaction{UserId: userId})
}

// scoped restricts a query to the owner's rows.
func (s *TransactionService) scoped(userId uint) *gorm.DB {
	return s.DB.Model(&models.Transaction{}).Where("transactions.user_id = ?", userId)
}

func (s *TransactionService) applySorting(query *gorm.DB, sortBy *string, sortOrder *string) {
	validSortFields := map[string]string{
		"id":                 "id",
		"created_at":         "created_at",
		"updated_at":         "updated_at",
		"sr_no":              "sr_no",
		"title":              "title",
		"page_no":            "page_no",
		"paragraph_no":       "paragraph_no",
		"information_rating": "information_rating",
		"book_id":            "book_id",
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

// ownBook verifies the referenced book belongs to the user.
func (s *TransactionService) ownBook(userId, bookId uint) error {
	var count int64
	if err := s.DB.Model(&models.Book{}).
		Where("id = ? AND user_id = ?", bookId, userId).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("book %d not found", bookId)
	}
	return nil
}

func (s *TransactionService) loadSubjects(ids []uint) ([]models.Subject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var subjects []models.Subject
	if err := s.DB.Where("id IN ?", ids).Find(&subjects).Error; err != nil {
		return nil, err
	}
	if len(subjects) != len(ids) {
		return nil, fmt.Errorf("unknown subject id in %v", ids)
	}
	return subjects, nil
}

func (s *TransactionService) loadTags(ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.DB.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("unknown tag id in %v", ids)
	}
	return tags, nil
}

func (s *TransactionService) Create(userId uint, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := s.ownBook(userId, req.BookId); err != nil {
		return nil, err
	}

	subjects, err := s.loadSubjects(req.SubjectIds)
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTags(req.TagIds)
	if err != nil {
		return nil, err
	}

	srNo := req.SrNo
	if srNo == 0 {
		// Next serial within the user's records
		var maxSr int
		row := s.scoped(userId).Select("COALESCE(MAX(sr_no), 0)").Row()
		if err := row.Scan(&maxSr); err == nil {
			srNo = maxSr + 1
		} else {
			srNo = 1
		}
	}

	item := &models.Transaction{
		UserId:            userId,
		BookId:            req.BookId,
		SrNo:              srNo,
		Title:             req.Title,
		PageNo:            req.PageNo,
		ParagraphNo:       req.ParagraphNo,
		InformationRating: req.InformationRating,
		Remark:            req.Remark,
		Footnote:          req.Footnote,
		Keywords:          req.Keywords,
		Summary:           req.Summary,
		Conclusion:        req.Conclusion,
		Paragraph:         models.ParagraphText(req.Paragraph),
		Subjects:          subjects,
		Tags:              tags,
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create transaction", logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(CreateTransactionEvent, item)

	return s.GetById(userId, item.Id)
}

func (s *TransactionService) GetById(userId, id uint) (*models.Transaction, error) {
	item := &models.Transaction{}

	query := item.Preload(s.scoped(userId))
	if err := query.First(item, id).Error; err != nil {
		s.Logger.Error("failed to get transaction",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	return item, nil
}

func (s *TransactionService) Update(userId, id uint, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	item := &models.Transaction{}
	if err := s.scoped(userId).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find transaction for update",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if req.BookId != 0 && req.BookId != item.BookId {
		if err := s.ownBook(userId, req.BookId); err != nil {
			return nil, err
		}
		item.BookId = req.BookId
	}
	if req.SrNo != nil {
		item.SrNo = *req.SrNo
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.PageNo != nil {
		item.PageNo = *req.PageNo
	}
	if req.ParagraphNo != nil {
		item.ParagraphNo = *req.ParagraphNo
	}
	if req.InformationRating != nil {
		// Explicit empty string clears the rating
		if *req.InformationRating == "" {
			item.InformationRating = nil
		} else {
			item.InformationRating = req.InformationRating
		}
	}
	if req.Remark != nil {
		item.Remark = *req.Remark
	}
	if req.Footnote != nil {
		item.Footnote = *req.Footnote
	}
	if req.Keywords != nil {
		item.Keywords = *req.Keywords
	}
	if req.Summary != nil {
		item.Summary = *req.Summary
	}
	if req.Conclusion != nil {
		item.Conclusion = *req.Conclusion
	}
	if req.Paragraph != nil {
		item.Paragraph = models.ParagraphText(req.Paragraph)
	}

	if err := s.DB.Save(item).Error; err != nil {
		s.Logger.Error("failed to update transaction",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if req.SubjectIds != nil {
		subjects, err := s.loadSubjects(*req.SubjectIds)
		if err != nil {
			return nil, err
		}
		if err := s.DB.Model(item).Association("Subjects").Replace(subjects); err != nil {
			return nil, fmt.Errorf("replacing subjects: %w", err)
		}
	}
	if req.TagIds != nil {
		tags, err := s.loadTags(*req.TagIds)
		if err != nil {
			return nil, err
		}
		if err := s.DB.Model(item).Association("Tags").Replace(tags); err != nil {
			return nil, fmt.Errorf("replacing tags: %w", err)
		}
	}

	result, err := s.GetById(userId, item.Id)
	if err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateTransactionEvent, result)

	return result, nil
}

func (s *TransactionService) Delete(userId, id uint) error {
	item := &models.Transaction{}
	if err := item.Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find transaction for deletion",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	if item.PageImage != nil {
		if err := s.Storage.Delete(item.PageImage); err != nil {
			s.Logger.Error("failed to delete page_image",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return err
		}
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete transaction",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	s.Emitter.Emit(DeleteTransactionEvent, item)

	return nil
}

func (s *TransactionService) GetAll(userId uint, page *int, limit *int, sortBy *string, sortOrder *string) (*types.PaginatedResponse, error) {
	var items []*models.Transaction
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
		s.Logger.Error("failed to count transactions", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Offset(offset).Limit(*limit)

	s.applySorting(query, sortBy, sortOrder)

	query = (&models.Transaction{}).Preload(query)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get transactions", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.TransactionResponse, len(items))
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

// GetAllForSelect gets the user's transactions for select box/dropdown options
func (s *TransactionService) GetAllForSelect(userId uint) ([]*models.Transaction, error) {
	var items []*models.Transaction

	query := s.scoped(userId)
	query = query.Select("id, title, sr_no")
	query = query.Order("sr_no ASC")

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to fetch transactions for select", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// UploadPageImage attaches the source page scan, optionally cropped.
func (s *TransactionService) UploadPageImage(userId, id uint, file *multipart.FileHeader, crop storage.CropRect) (*models.Transaction, error) {
	item := &models.Transaction{}
	if err := (&models.Transaction{}).Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		s.Logger.Error("failed to find transaction",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if item.PageImage != nil {
		if err := s.Storage.Delete(item.PageImage); err != nil {
			s.Logger.Error("failed to delete existing page_image",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return nil, err
		}
	}

	attachment, err := s.Storage.AttachCropped(item, "page_image", file, crop)
	if err != nil {
		s.Logger.Error("failed to attach page_image",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	item.PageImage = attachment
	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateTransactionEvent, item)

	return s.GetById(userId, id)
}

// RemovePageImage removes the attached page scan.
func (s *TransactionService) RemovePageImage(userId, id uint) (*models.Transaction, error) {
	item := &models.Transaction{}
	if err := (&models.Transaction{}).Preload(s.scoped(userId)).First(item, id).Error; err != nil {
		return nil, err
	}

	if item.PageImage == nil {
		return item, nil
	}

	if err := s.Storage.Delete(item.PageImage); err != nil {
		s.Logger.Error("failed to delete page_image",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	item.PageImage = nil
	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}

	s.Emitter.Emit(UpdateTransactionEvent, item)

	return s.GetById(userId, id)
}
