package users

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/storage"
)

func newTestService(t *testing.T) (*UserService, *emitter.Emitter, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&authorization.Role{},
		&User{},
		&storage.Attachment{},
	))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	activeStorage, err := storage.NewActiveStorage(db, storage.Config{
		Provider: "local",
		Path:     t.TempDir(),
		BaseURL:  "http://localhost/storage",
	})
	require.NoError(t, err)

	em := emitter.New()
	return NewUserService(db, em, activeStorage, log), em, db
}

func TestCreateHashesPassword(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Create(&CreateUserRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse")))

	found, err := service.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, found.Id)
}

func TestUpdateLeavesEmptyFieldsAlone(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Create(&CreateUserRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
		RoleId:   3,
	})
	require.NoError(t, err)

	updated, err := service.Update(user.Id, &UpdateUserRequest{Name: "Ada Lovelace"})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, uint(3), updated.RoleId)
}

func TestGetAllSearchAndPaging(t *testing.T) {
	service, _, _ := newTestService(t)

	for i, name := range []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"} {
		_, err := service.Create(&CreateUserRequest{
			Name:     name,
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: "correct horse",
		})
		require.NoError(t, err)
	}

	t.Run("search narrows by name substring", func(t *testing.T) {
		search := "lovelace"
		result, err := service.GetAll(&search, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Pagination.Total)
	})

	t.Run("search matches email too", func(t *testing.T) {
		search := "user1@"
		result, err := service.GetAll(&search, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Pagination.Total)
	})

	t.Run("pagination reports totals", func(t *testing.T) {
		page, limit := 2, 2
		result, err := service.GetAll(nil, &page, &limit, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Pagination.Total)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		assert.Len(t, result.Data.([]*UserResponse), 1)
	})
}

func TestUpdatePasswordVerifiesCurrent(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Create(&CreateUserRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	err = service.UpdatePassword(user.Id, &UpdatePasswordRequest{
		OldPassword: "wrong horse",
		NewPassword: "battery staple",
	})
	assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)

	err = service.UpdatePassword(user.Id, &UpdatePasswordRequest{
		OldPassword: "correct horse",
		NewPassword: "battery staple",
	})
	require.NoError(t, err)

	reloaded, err := service.GetById(user.Id)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("battery staple")))
}

func TestChangePasswordMissingUser(t *testing.T) {
	service, _, _ := newTestService(t)

	err := service.ChangePassword(999, "battery staple")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteEmitsEvent(t *testing.T) {
	service, em, _ := newTestService(t)

	user, err := service.Create(&CreateUserRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	var deletedId uint
	em.On(DeleteUserEvent, func(data any) {
		if u, ok := data.(*User); ok {
			deletedId = u.Id
		}
	})

	require.NoError(t, service.Delete(user.Id))
	assert.Equal(t, user.Id, deletedId)

	_, err = service.GetById(user.Id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListForSelectSortsByName(t *testing.T) {
	service, _, _ := newTestService(t)

	for i, name := range []string{"Grace", "Ada"} {
		_, err := service.Create(&CreateUserRequest{
			Name:     name,
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: "correct horse",
		})
		require.NoError(t, err)
	}

	items, err := service.ListForSelect()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Ada", items[0].Name)
	assert.Equal(t, "Grace", items[1].Name)
}
