package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/app/subjects"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

func newTestService(t *testing.T) (*NotificationService, *emitter.Emitter) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	em := emitter.New()
	return NewNotificationService(db, em, log), em
}

func TestImportCompletionNotification(t *testing.T) {
	svc, em := newTestService(t)

	// In-flight progress must not create a notification.
	em.Emit(subjects.ImportProgressEvent, subjects.ImportProgress{Kind: "subjects", Processed: 25})

	items, err := svc.GetAll(1, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	em.Emit(subjects.ImportProgressEvent, subjects.ImportProgress{
		Kind: "subjects", Processed: 40, Created: 30, Updated: 8, Skipped: 2, Done: true,
	})

	items, err = svc.GetAll(1, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "subjects import finished", items[0].Title)
	assert.Contains(t, items[0].Body, "30 created")
	assert.Nil(t, items[0].ReadAt)
}

func TestNotificationVisibilityAndRead(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(0, "broadcast", "for everyone")
	require.NoError(t, err)
	mine, err := svc.Create(1, "personal", "for user 1")
	require.NoError(t, err)
	_, err = svc.Create(2, "other", "for user 2")
	require.NoError(t, err)

	t.Run("list shows own plus broadcast", func(t *testing.T) {
		items, err := svc.GetAll(1, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("unread count", func(t *testing.T) {
		count, err := svc.UnreadCount(1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("mark read", func(t *testing.T) {
		item, err := svc.MarkRead(1, mine.Id)
		require.NoError(t, err)
		assert.NotNil(t, item.ReadAt)

		count, err := svc.UnreadCount(1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("cannot read another user's notification", func(t *testing.T) {
		var other models.Notification
		require.NoError(t, svc.DB.Where("user_id = ?", 2).First(&other).Error)

		_, err := svc.MarkRead(1, other.Id)
		assert.Error(t, err)
	})
}
