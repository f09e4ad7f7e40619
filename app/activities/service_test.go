package activities

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

func newTestService(t *testing.T) (*ActivityService, *emitter.Emitter) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	em := emitter.New()
	return NewActivityService(db, em, log), em
}

func TestRecordsMutationEvents(t *testing.T) {
	svc, em := newTestService(t)

	em.Emit("books.create", &models.Book{Id: 3, UserId: 7})
	em.Emit("transactions.delete", &models.Transaction{Id: 9, UserId: 7})
	em.Emit("subjects.update", &models.Subject{Id: 1})

	resp, err := svc.GetAll(0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Pagination.Total)

	items, err := svc.GetRecentByEntity("book", 3, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "create", items[0].Action)
	assert.Equal(t, uint(7), items[0].UserId)

	t.Run("shared taxonomy rows carry no user", func(t *testing.T) {
		items, err := svc.GetRecentByEntity("subject", 1, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, uint(0), items[0].UserId)
	})

	t.Run("user scoping filters the feed", func(t *testing.T) {
		resp, err := svc.GetAll(7, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Pagination.Total)
	})
}

func TestIgnoresUnknownPayloads(t *testing.T) {
	svc, em := newTestService(t)

	em.Emit("books.create", "not an entity")
	em.Emit("books.create", nil)

	resp, err := svc.GetAll(0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Pagination.Total)
}
