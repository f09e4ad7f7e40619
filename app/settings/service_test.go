package settings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

func newTestService(t *testing.T) *SettingsService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	return NewSettingsService(db, emitter.New(), log)
}

func TestSettings(t *testing.T) {
	svc := newTestService(t)

	t.Run("set and get", func(t *testing.T) {
		_, err := svc.Set(1, "default_page_size", &models.UpdateSettingRequest{Type: "int", ValueInt: 50})
		require.NoError(t, err)

		item, err := svc.Get(1, "default_page_size")
		require.NoError(t, err)
		assert.Equal(t, 50, item.Value())
	})

	t.Run("set overwrites in place", func(t *testing.T) {
		_, err := svc.Set(1, "default_page_size", &models.UpdateSettingRequest{Type: "int", ValueInt: 25})
		require.NoError(t, err)

		items, err := svc.GetAll(1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 25, items[0].Value())
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := svc.Set(1, "favourite_colour", &models.UpdateSettingRequest{Type: "string", ValueString: "red"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown setting key")
	})

	t.Run("users are isolated", func(t *testing.T) {
		_, err := svc.Set(2, "compact_lists", &models.UpdateSettingRequest{Type: "bool", ValueBool: true})
		require.NoError(t, err)

		items, err := svc.GetAll(1)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		_, err = svc.Get(1, "compact_lists")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("delete reverts to default", func(t *testing.T) {
		require.NoError(t, svc.Delete(1, "default_page_size"))
		_, err := svc.Get(1, "default_page_size")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("typed values", func(t *testing.T) {
		_, err := svc.Set(3, "paragraph_language", &models.UpdateSettingRequest{Type: "string", ValueString: "de"})
		require.NoError(t, err)

		item, err := svc.Get(3, "paragraph_language")
		require.NoError(t, err)
		assert.Equal(t, "de", item.Value())
	})
}

type deletedUser struct{ id uint }

func (d deletedUser) GetId() uint { return d.id }

func TestUserDeletePurgesSettings(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Set(5, "default_sort", &models.UpdateSettingRequest{Type: "string", ValueString: "title"})
	require.NoError(t, err)
	_, err = svc.Set(6, "default_sort", &models.UpdateSettingRequest{Type: "string", ValueString: "sr_no"})
	require.NoError(t, err)

	svc.Emitter.Emit("users.delete", deletedUser{id: 5})

	_, err = svc.Get(5, "default_sort")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	item, err := svc.Get(6, "default_sort")
	require.NoError(t, err)
	assert.Equal(t, "sr_no", item.Value())
}
