package settings

import (
	"fmt"

	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

const (
	UpdateSettingEvent = "settings.update"
	DeleteSettingEvent = "settings.delete"
)

// Preference keys the UI understands. Unknown keys are rejected so
// typos do not silently accumulate rows.
var knownKeys = map[string]bool{
	"default_page_size":  true,
	"default_sort":       true,
	"default_sort_order": true,
	"paragraph_language": true,
	"compact_lists":      true,
}

type SettingsService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Logger  logger.Logger
}

func NewSettingsService(db *gorm.DB, emitter *emitter.Emitter, logger logger.Logger) *SettingsService {
	s := &SettingsService{
		DB:      db,
		Emitter: emitter,
		Logger:  logger,
	}

	// Preferences of a deleted account go with it.
	emitter.On("users.delete", func(data any) {
		if owner, ok := data.(interface{ GetId() uint }); ok {
			s.purgeUser(owner.GetId())
		}
	})

	return s
}

func (s *SettingsService) purgeUser(userId uint) {
	err := s.DB.Where("user_id = ?", userId).Delete(&models.Setting{}).Error
	if err != nil {
		s.Logger.Error("failed to purge settings of deleted user",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
	}
}

// GetAll returns every preference the user has set.
func (s *SettingsService) GetAll(userId uint) ([]*models.Setting, error) {
	var items []*models.Setting
	err := s.DB.Where("user_id = ?", userId).Order("setting_key ASC").Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to get settings",
			logger.Uint("user_id", userId),
			logger.String("error", err.Error()))
		return nil, err
	}
	return items, nil
}

// Get returns one preference, or gorm.ErrRecordNotFound.
func (s *SettingsService) Get(userId uint, key string) (*models.Setting, error) {
	item := &models.Setting{}
	err := s.DB.Where("user_id = ? AND setting_key = ?", userId, key).First(item).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Set creates or overwrites one preference.
func (s *SettingsService) Set(userId uint, key string, req *models.UpdateSettingRequest) (*models.Setting, error) {
	if !knownKeys[key] {
		return nil, fmt.Errorf("unknown setting key %q", key)
	}

	item := &models.Setting{}
	err := s.DB.Where("user_id = ? AND setting_key = ?", userId, key).First(item).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		item = &models.Setting{
			UserId:     userId,
			SettingKey: key,
		}
	}

	item.Type = req.Type
	item.ValueString = req.ValueString
	item.ValueInt = req.ValueInt
	item.ValueBool = req.ValueBool

	if err := s.DB.Save(item).Error; err != nil {
		s.Logger.Error("failed to save setting",
			logger.Uint("user_id", userId),
			logger.String("key", key),
			logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(UpdateSettingEvent, item)
	return item, nil
}

// Delete removes one preference, reverting the UI to its default.
func (s *SettingsService) Delete(userId uint, key string) error {
	item, err := s.Get(userId, key)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete setting",
			logger.Uint("user_id", userId),
			logger.String("key", key),
			logger.String("error", err.Error()))
		return err
	}

	s.Emitter.Emit(DeleteSettingEvent, item)
	return nil
}
