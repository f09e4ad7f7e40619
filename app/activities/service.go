package activities

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/types"
)

// auditedEvents maps mutation events to the recorded action.
var auditedEvents = map[string]string{
	"books.create": "create", "books.update": "update", "books.delete": "delete",
	"subjects.create": "create", "subjects.update": "update", "subjects.delete": "delete",
	"tags.create": "create", "tags.update": "update", "tags.delete": "delete",
	"transactions.create": "create", "transactions.update": "update", "transactions.delete": "delete",
}

// auditedEntity is what mutation events carry as payload.
type auditedEntity interface {
	GetId() uint
	GetModelName() string
}

// owned is implemented by entities that belong to a user.
type owned interface {
	GetUserId() uint
}

type ActivityService struct {
	DB     *gorm.DB
	Logger logger.Logger
}

// NewActivityService creates the recorder and subscribes it to every
// catalog mutation event. The log is append-only.
func NewActivityService(db *gorm.DB, em *emitter.Emitter, log logger.Logger) *ActivityService {
	s := &ActivityService{
		DB:     db,
		Logger: log,
	}
	for event, action := range auditedEvents {
		action := action
		em.On(event, func(data any) {
			entity, ok := data.(auditedEntity)
			if !ok {
				return
			}
			s.record(entity, action)
		})
	}
	return s
}

func (s *ActivityService) record(entity auditedEntity, action string) {
	item := &models.Activity{
		EntityType: entity.GetModelName(),
		EntityId:   entity.GetId(),
		Action:     action,
		Summary:    fmt.Sprintf("%s %s #%d", action, entity.GetModelName(), entity.GetId()),
	}
	if owner, ok := entity.(owned); ok {
		item.UserId = owner.GetUserId()
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to record activity",
			logger.String("entity", item.EntityType),
			logger.Uint("entity_id", item.EntityId),
			logger.String("error", err.Error()))
	}
}

// GetAll lists activities newest first, restricted to one user when
// userId is non-zero.
func (s *ActivityService) GetAll(userId uint, page *int, limit *int) (*types.PaginatedResponse, error) {
	var items []*models.Activity
	var total int64

	query := s.DB.Model(&models.Activity{})
	if userId != 0 {
		query = query.Where("user_id = ?", userId)
	}

	defaultPage := 1
	defaultLimit := 25
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	if err := query.Count(&total).Error; err != nil {
		s.Logger.Error("failed to count activities", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Order("created_at DESC").Offset(offset).Limit(*limit)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get activities", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.ActivityResponse, len(items))
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

// GetRecentByEntity lists the latest activities touching one entity.
func (s *ActivityService) GetRecentByEntity(entityType string, entityId uint, limit int) ([]*models.Activity, error) {
	var items []*models.Activity

	err := s.DB.Model(&models.Activity{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to get entity activities", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}
