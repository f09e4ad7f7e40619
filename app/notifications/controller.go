package notifications

import (
	"net/http"
	"strconv"

	"bookstack/app/models"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type NotificationController struct {
	Service *NotificationService
	Logger  logger.Logger
}

func NewNotificationController(service *NotificationService, logger logger.Logger) *NotificationController {
	return &NotificationController{
		Service: service,
		Logger:  logger,
	}
}

func (c *NotificationController) Routes(router *router.RouterGroup) {
	group := router.Group("/notifications")

	group.GET("", c.List)
	group.GET("/unread-count", c.UnreadCount)
	group.PUT("/:id/read", c.MarkRead)
}

// List godoc
// @Summary List notifications
// @Tags App/Notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum number of notifications"
// @Success 200 {array} models.NotificationResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /notifications [get]
func (c *NotificationController) List(ctx *router.Context) error {
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	items, err := c.Service.GetAll(ctx.GetUint("user_id"), limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch notifications: " + err.Error()})
	}

	responses := make([]*models.NotificationResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	return ctx.JSON(http.StatusOK, responses)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags App/Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 500 {object} types.ErrorResponse
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *router.Context) error {
	count, err := c.Service.UnreadCount(ctx.GetUint("user_id"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to count notifications: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]int64{"unread": count})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags App/Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification id"
// @Success 200 {object} models.NotificationResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.MarkRead(ctx.GetUint("user_id"), uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Notification not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}
