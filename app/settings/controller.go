package settings

import (
	"net/http"
	"strings"

	"bookstack/app/models"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type SettingsController struct {
	Service *SettingsService
	Logger  logger.Logger
}

func NewSettingsController(service *SettingsService, logger logger.Logger) *SettingsController {
	return &SettingsController{
		Service: service,
		Logger:  logger,
	}
}

func (c *SettingsController) Routes(router *router.RouterGroup) {
	group := router.Group("/settings")

	group.GET("", c.List)
	group.GET("/:key", c.Get)
	group.PUT("/:key", c.Set)
	group.DELETE("/:key", c.Delete)
}

// List godoc
// @Summary List the caller's preferences
// @Tags App/Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SettingResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /settings [get]
func (c *SettingsController) List(ctx *router.Context) error {
	items, err := c.Service.GetAll(ctx.GetUint("user_id"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch settings: " + err.Error()})
	}

	responses := make([]*models.SettingResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	return ctx.JSON(http.StatusOK, responses)
}

// Get godoc
// @Summary Get one preference
// @Tags App/Settings
// @Security BearerAuth
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} models.SettingResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /settings/{key} [get]
func (c *SettingsController) Get(ctx *router.Context) error {
	item, err := c.Service.Get(ctx.GetUint("user_id"), ctx.Param("key"))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Setting not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Set godoc
// @Summary Set one preference
// @Tags App/Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param setting body models.UpdateSettingRequest true "Setting value"
// @Success 200 {object} models.SettingResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /settings/{key} [put]
func (c *SettingsController) Set(ctx *router.Context) error {
	var req models.UpdateSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Set(ctx.GetUint("user_id"), ctx.Param("key"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "unknown setting key") {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to save setting: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Delete godoc
// @Summary Remove one preference
// @Tags App/Settings
// @Security BearerAuth
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} types.SuccessResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /settings/{key} [delete]
func (c *SettingsController) Delete(ctx *router.Context) error {
	if err := c.Service.Delete(ctx.GetUint("user_id"), ctx.Param("key")); err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Setting not found"})
	}

	return ctx.JSON(http.StatusOK, types.SuccessResponse{Message: "Setting removed"})
}
