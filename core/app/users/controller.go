package users

import (
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/storage"
	"bookstack/core/types"
)

type UserController struct {
	service *UserService
	storage *storage.ActiveStorage
	logger  logger.Logger
}

func NewUserController(service *UserService, activeStorage *storage.ActiveStorage, log logger.Logger) *UserController {
	return &UserController{
		service: service,
		storage: activeStorage,
		logger:  log,
	}
}

func (c *UserController) Routes(group *router.RouterGroup) {
	// Every authenticated user manages their own profile.
	group.GET("/profile", c.GetProfile)
	group.PUT("/profile", c.UpdateProfile)
	group.PUT("/profile/avatar", c.UpdateAvatar)
	group.DELETE("/profile/avatar", c.RemoveAvatar)
	group.PUT("/profile/password", c.UpdatePassword)

	// Account administration is admin only.
	adminGroup := group.Group("/users")
	adminGroup.Use(authorization.RequireRole(authorization.RoleAdmin))

	adminGroup.GET("", c.List)
	adminGroup.POST("", c.Create)
	adminGroup.GET("/all", c.ListAll) // literal route, keep before /:id
	adminGroup.GET("/:id", c.Get)
	adminGroup.PUT("/:id", c.Update)
	adminGroup.PUT("/:id/password", c.ChangePassword)
	adminGroup.DELETE("/:id", c.Delete)
}

// listQuery holds the parsed query string of the admin user list.
type listQuery struct {
	search    *string
	page      *int
	limit     *int
	sortBy    *string
	sortOrder *string
}

func parseListQuery(ctx *router.Context) (*listQuery, error) {
	q := &listQuery{}

	if v := ctx.Query("search"); v != "" {
		q.search = &v
	}
	if v := ctx.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, errors.New("invalid page number")
		}
		q.page = &n
	}
	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, errors.New("invalid limit number")
		}
		q.limit = &n
	}
	if v := ctx.Query("sort"); v != "" {
		q.sortBy = &v
	}
	if v := ctx.Query("order"); v != "" {
		if v != "asc" && v != "desc" {
			return nil, errors.New("invalid sort order, use asc or desc")
		}
		q.sortOrder = &v
	}

	return q, nil
}

func pathId(ctx *router.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid id format")
	}
	return uint(id), nil
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Security BearerAuth
// @Tags Core/Profile
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *router.Context) error {
	id := ctx.GetUint("user_id")
	if id == 0 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user id"})
	}

	user, err := c.service.GetById(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		}
		c.logger.Error("failed to load profile", logger.Uint("user_id", id))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch user"})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// UpdateProfile godoc
// @Summary Update the authenticated user's profile
// @Security BearerAuth
// @Tags Core/Profile
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *router.Context) error {
	id := ctx.GetUint("user_id")
	if id == 0 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user id"})
	}

	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	// Role changes only happen through the admin endpoints.
	req.RoleId = 0

	user, err := c.service.Update(id, &req)
	if err != nil {
		c.logger.Error("failed to update profile", logger.Uint("user_id", id))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update user"})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// UpdateAvatar godoc
// @Summary Upload a profile avatar
// @Security BearerAuth
// @Tags Core/Profile
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /profile/avatar [put]
func (c *UserController) UpdateAvatar(ctx *router.Context) error {
	id := ctx.GetUint("user_id")
	if id == 0 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user id"})
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Failed to get avatar file: " + err.Error()})
	}

	user, err := c.service.UpdateAvatar(ctx.Request.Context(), id, file)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		}
		c.logger.Error("failed to update avatar", logger.Uint("user_id", id))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update avatar: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// RemoveAvatar godoc
// @Summary Remove the profile avatar
// @Security BearerAuth
// @Tags Core/Profile
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /profile/avatar [delete]
func (c *UserController) RemoveAvatar(ctx *router.Context) error {
	id := ctx.GetUint("user_id")
	if id == 0 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user id"})
	}

	user, err := c.service.RemoveAvatar(ctx.Request.Context(), id)
	if err != nil {
		c.logger.Error("failed to remove avatar", logger.Uint("user_id", id))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to remove avatar"})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// UpdatePassword godoc
// @Summary Change the authenticated user's password
// @Security BearerAuth
// @Tags Core/Profile
// @Accept json
// @Produce json
// @Param input body UpdatePasswordRequest true "Current and new password"
// @Success 200 {object} types.SuccessResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /profile/password [put]
func (c *UserController) UpdatePassword(ctx *router.Context) error {
	id := ctx.GetUint("user_id")
	if id == 0 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user id"})
	}

	var req UpdatePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	if err := c.service.UpdatePassword(id, &req); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Current password is incorrect"})
		default:
			c.logger.Error("failed to update password", logger.Uint("user_id", id))
			return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update password"})
		}
	}

	return ctx.JSON(http.StatusOK, types.SuccessResponse{Success: true, Message: "Password updated successfully"})
}

// Create godoc
// @Summary Create a user
// @Description Create a user account (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "New user"
// @Success 201 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /users [post]
func (c *UserController) Create(ctx *router.Context) error {
	var req CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	user, err := c.service.Create(&req)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to create user: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, user.ToResponse())
}

// Get godoc
// @Summary Get a user
// @Description Get a user by id (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /users/{id} [get]
func (c *UserController) Get(ctx *router.Context) error {
	id, err := pathId(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	user, err := c.service.GetById(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// List godoc
// @Summary List users
// @Description Paginated user list, optionally filtered by a name or email substring (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name or email substring"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param sort query string false "Sort field (id, created_at, updated_at, name, email, role_id, last_login)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /users [get]
func (c *UserController) List(ctx *router.Context) error {
	q, err := parseListQuery(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	result, err := c.service.GetAll(q.search, q.page, q.limit, q.sortBy, q.sortOrder)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch users"})
	}

	return ctx.JSON(http.StatusOK, result)
}

// ListAll godoc
// @Summary List users for select options
// @Description Id/name pairs of every user (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Produce json
// @Success 200 {array} UserSelectOption
// @Failure 500 {object} types.ErrorResponse
// @Router /users/all [get]
func (c *UserController) ListAll(ctx *router.Context) error {
	items, err := c.service.ListForSelect()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch select options"})
	}

	options := make([]*UserSelectOption, 0, len(items))
	for _, item := range items {
		options = append(options, item.ToSelectOption())
	}

	return ctx.JSON(http.StatusOK, options)
}

// Update godoc
// @Summary Update a user
// @Description Update name, email or role by id (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param user body UpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /users/{id} [put]
func (c *UserController) Update(ctx *router.Context) error {
	id, err := pathId(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	user, err := c.service.Update(id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update user: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}

// Delete godoc
// @Summary Delete a user
// @Description Delete a user by id (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 204 {object} nil
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /users/{id} [delete]
func (c *UserController) Delete(ctx *router.Context) error {
	id, err := pathId(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	if err := c.service.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete user: " + err.Error()})
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

// ChangePassword godoc
// @Summary Set a user's password
// @Description Set a new password for any user without the current one (admin only)
// @Tags Core/Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param request body ChangePasswordRequest true "New password"
// @Success 200 {object} types.SuccessResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /users/{id}/password [put]
func (c *UserController) ChangePassword(ctx *router.Context) error {
	id, err := pathId(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	if err := c.service.ChangePassword(id, req.NewPassword); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to change password"})
	}

	return ctx.JSON(http.StatusOK, types.SuccessResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}
