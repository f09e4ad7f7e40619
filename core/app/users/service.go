package users

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/storage"
	"bookstack/core/types"
)

const (
	CreateUserEvent = "users.create"
	UpdateUserEvent = "users.update"
	DeleteUserEvent = "users.delete"
)

// Sortable columns for the admin user list. Anything else falls back
// to id.
var userSortFields = []string{"id", "created_at", "updated_at", "name", "email", "role_id", "last_login"}

func userSortExpr(sortBy, sortOrder *string) string {
	field := "id"
	if sortBy != nil {
		for _, f := range userSortFields {
			if f == *sortBy {
				field = f
				break
			}
		}
	}
	dir := "desc"
	if sortOrder != nil && (*sortOrder == "asc" || *sortOrder == "desc") {
		dir = *sortOrder
	}
	return field + " " + dir
}

type UserService struct {
	db            *gorm.DB
	emitter       *emitter.Emitter
	activeStorage *storage.ActiveStorage
	logger        logger.Logger
}

func NewUserService(db *gorm.DB, em *emitter.Emitter, activeStorage *storage.ActiveStorage, log logger.Logger) *UserService {
	if db == nil {
		panic("db is required")
	}
	if log == nil {
		panic("logger is required")
	}
	if activeStorage == nil {
		panic("activeStorage is required")
	}

	activeStorage.RegisterAttachment("users", storage.AttachmentConfig{
		Field:             "avatar",
		Path:              "avatars",
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		MaxFileSize:       5 << 20, // 5MB
		Multiple:          false,
	})

	return &UserService{
		db:            db,
		emitter:       em,
		activeStorage: activeStorage,
		logger:        log,
	}
}

// Create registers a new account with a bcrypt-hashed password.
func (s *UserService) Create(req *CreateUserRequest) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		RoleId:   req.RoleId,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error("failed to create user", logger.Any("error", err))
		return nil, err
	}

	s.emitter.Emit(CreateUserEvent, user)

	return s.GetById(user.Id)
}

func (s *UserService) GetById(id uint) (*User, error) {
	var user User
	if err := user.Preload(s.db).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(email string) (*User, error) {
	var user User
	if err := user.Preload(s.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies the non-empty fields of req. A zero RoleId leaves the
// role untouched, so profile updates cannot escalate privileges.
func (s *UserService) Update(id uint, req *UpdateUserRequest) (*User, error) {
	user := &User{}
	if err := s.db.First(user, id).Error; err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.RoleId != 0 {
		user.RoleId = req.RoleId
	}

	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error("failed to update user",
			logger.Any("error", err),
			logger.Uint("user_id", id))
		return nil, err
	}

	result, err := s.GetById(user.Id)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(UpdateUserEvent, result)

	return result, nil
}

// Delete removes the account and its avatar. The delete event is how
// catalog modules learn to purge the rows this user owned.
func (s *UserService) Delete(id uint) error {
	user := &User{}
	if err := s.db.First(user, id).Error; err != nil {
		return err
	}

	if user.Avatar != nil {
		if err := s.activeStorage.Delete(user.Avatar); err != nil {
			s.logger.Error("failed to delete avatar",
				logger.Any("error", err),
				logger.Uint("user_id", id))
		}
	}

	if err := s.db.Delete(user).Error; err != nil {
		s.logger.Error("failed to delete user",
			logger.Any("error", err),
			logger.Uint("user_id", id))
		return err
	}

	s.emitter.Emit(DeleteUserEvent, user)

	return nil
}

// GetAll returns a page of users, optionally narrowed by a name/email
// substring search.
func (s *UserService) GetAll(search *string, page, limit *int, sortBy, sortOrder *string) (*types.PaginatedResponse, error) {
	defaultPage := 1
	defaultLimit := 10
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	query := s.db.Model(&User{})
	if search != nil && strings.TrimSpace(*search) != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error("failed to count users", logger.Any("error", err))
		return nil, err
	}

	var items []*User
	query = (&User{}).Preload(query).
		Order(userSortExpr(sortBy, sortOrder)).
		Offset((*page - 1) * *limit).
		Limit(*limit)
	if err := query.Find(&items).Error; err != nil {
		s.logger.Error("failed to list users", logger.Any("error", err))
		return nil, err
	}

	responses := make([]*UserResponse, len(items))
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

// ListForSelect returns id/name pairs for dropdowns.
func (s *UserService) ListForSelect() ([]*User, error) {
	var items []*User
	err := s.db.Model(&User{}).
		Select("id, name, email").
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		s.logger.Error("failed to list users for select", logger.Any("error", err))
		return nil, err
	}
	return items, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, id uint, avatarFile *multipart.FileHeader) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}

	// Attach replaces any previous file for the field.
	attachment, err := s.activeStorage.Attach(&user, "avatar", avatarFile)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.Avatar = attachment
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

func (s *UserService) RemoveAvatar(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}

	if user.Avatar == nil {
		return &user, nil
	}

	if err := s.activeStorage.Delete(user.Avatar); err != nil {
		return nil, fmt.Errorf("failed to delete avatar: %w", err)
	}
	user.Avatar = nil
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdatePassword changes the caller's own password after verifying the
// current one.
func (s *UserService) UpdatePassword(id uint, req *UpdatePasswordRequest) error {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		s.logger.Info("password update with wrong current password", logger.Uint("user_id", id))
		return bcrypt.ErrMismatchedHashAndPassword
	}

	return s.setPassword(&user, req.NewPassword)
}

// ChangePassword sets a new password without verification. Admin only;
// the route guard enforces that.
func (s *UserService) ChangePassword(id uint, newPassword string) error {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.logger.Error("failed to load user for password change",
			logger.Any("error", err),
			logger.Uint("user_id", id))
		return err
	}
	return s.setPassword(&user, newPassword)
}

func (s *UserService) setPassword(user *User, plaintext string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error("failed to save password",
			logger.Any("error", err),
			logger.Uint("user_id", user.Id))
		return err
	}
	return nil
}
