package activities

import (
	"fmt"
	"net/http"
	"strconv"

	"bookstack/core/app/authorization"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type ActivityController struct {
	Service *ActivityService
	Logger  logger.Logger
}

func NewActivityController(service *ActivityService, logger logger.Logger) *ActivityController {
	return &ActivityController{
		Service: service,
		Logger:  logger,
	}
}

func (c *ActivityController) Routes(router *router.RouterGroup) {
	group := router.Group("/activities")

	group.GET("", c.List)

	adminGroup := group.Group("/all")
	adminGroup.Use(authorization.RequireRole(authorization.RoleAdmin))
	adminGroup.GET("", c.ListAll)
}

// List godoc
// @Summary List the caller's activity
// @Tags App/Activities
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /activities [get]
func (c *ActivityController) List(ctx *router.Context) error {
	page, limit, err := parsePaging(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	paginatedResponse, err := c.Service.GetAll(ctx.GetUint("user_id"), page, limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch activities: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, paginatedResponse)
}

// ListAll godoc
// @Summary List activity across all users
// @Tags App/Activities
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /activities/all [get]
func (c *ActivityController) ListAll(ctx *router.Context) error {
	page, limit, err := parsePaging(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	paginatedResponse, err := c.Service.GetAll(0, page, limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch activities: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, paginatedResponse)
}

func parsePaging(ctx *router.Context) (*int, *int, error) {
	var page, limit *int

	if pageStr := ctx.Query("page"); pageStr != "" {
		pageNum, err := strconv.Atoi(pageStr)
		if err != nil || pageNum < 1 {
			return nil, nil, fmt.Errorf("invalid page number")
		}
		page = &pageNum
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		limitNum, err := strconv.Atoi(limitStr)
		if err != nil || limitNum < 1 {
			return nil, nil, fmt.Errorf("invalid limit number")
		}
		limit = &limitNum
	}

	return page, limit, nil
}
