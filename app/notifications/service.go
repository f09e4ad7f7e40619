package notifications

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/app/subjects"
	"bookstack/app/tags"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

const CreateNotificationEvent = "notifications.create"

type NotificationService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Logger  logger.Logger
}

// NewNotificationService creates the service and subscribes it to
// finished CSV imports, so completed imports show up in the
// notification center.
func NewNotificationService(db *gorm.DB, em *emitter.Emitter, log logger.Logger) *NotificationService {
	s := &NotificationService{
		DB:      db,
		Emitter: em,
		Logger:  log,
	}

	em.On(subjects.ImportProgressEvent, func(data any) {
		if p, ok := data.(subjects.ImportProgress); ok && p.Done {
			s.notifyImportDone(p.Kind, p.Processed, p.Created, p.Updated, p.Skipped)
		}
	})
	em.On(tags.ImportProgressEvent, func(data any) {
		if p, ok := data.(tags.ImportProgress); ok && p.Done {
			s.notifyImportDone(p.Kind, p.Processed, p.Created, p.Updated, p.Skipped)
		}
	})
	em.On("users.delete", func(data any) {
		if owner, ok := data.(interface{ GetId() uint }); ok {
			s.purgeUser(owner.GetId())
		}
	})

	return s
}

// purgeUser drops the personal notifications of a deleted account.
// Broadcasts (user_id 0) stay.
func (s *NotificationService) purgeUser(userId uint) {
	if userId == 0 {
		return
	}
	err := s.DB.Where("user_id = ?", userId).Delete(&models.Notification{}).Error
	if err != nil {
		s.Logger.Error("failed to purge notifications of deleted user",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
	}
}

func (s *NotificationService) notifyImportDone(kind string, processed, created, updated, skipped int) {
	_, err := s.Create(0,
		fmt.Sprintf("%s import finished", kind),
		fmt.Sprintf("%d rows processed: %d created, %d updated, %d skipped", processed, created, updated, skipped))
	if err != nil {
		s.Logger.Error("failed to create import notification",
			logger.String("kind", kind),
			logger.String("error", err.Error()))
	}
}

// Create stores a notification. A zero userId makes it visible to
// every user.
func (s *NotificationService) Create(userId uint, title, body string) (*models.Notification, error) {
	item := &models.Notification{
		UserId: userId,
		Title:  title,
		Body:   body,
	}

	if err := s.DB.Create(item).Error; err != nil {
		return nil, err
	}

	s.Emitter.Emit(CreateNotificationEvent, item)
	return item, nil
}

// GetAll lists the newest notifications visible to the user.
func (s *NotificationService) GetAll(userId uint, limit int) ([]*models.Notification, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var items []*models.Notification
	err := s.DB.Where("user_id = ? OR user_id = 0", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to get notifications",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
		return nil, err
	}
	return items, nil
}

// UnreadCount counts notifications visible to the user that have not
// been read yet.
func (s *NotificationService) UnreadCount(userId uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("(user_id = ? OR user_id = 0) AND read_at IS NULL", userId).
		Count(&count).Error
	return count, err
}

// MarkRead stamps a notification as read.
func (s *NotificationService) MarkRead(userId uint, id uint) (*models.Notification, error) {
	item := &models.Notification{}
	err := s.DB.Where("id = ? AND (user_id = ? OR user_id = 0)", id, userId).First(item).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item.ReadAt = &now
	if err := s.DB.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
