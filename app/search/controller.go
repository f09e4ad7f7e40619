package search

import (
	"errors"
	"net/http"

	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type SearchController struct {
	Service *SearchService
	Logger  logger.Logger
}

func NewSearchController(service *SearchService, logger logger.Logger) *SearchController {
	return &SearchController{
		Service: service,
		Logger:  logger,
	}
}

func (c *SearchController) Routes(group *router.RouterGroup) {
	group.POST("/transactions/search", c.Search)
	group.GET("/transactions/filter-options", c.GetFilterOptions)
}

// AdminRoutes holds the cache management endpoints, registered under
// /transactions/search; the caller wraps them in the admin role check.
func (c *SearchController) AdminRoutes(group *router.RouterGroup) {
	group.POST("/clear-cache", c.ClearCache)
	group.GET("/cache-stats", c.CacheStats)
}

// Search godoc
// @Summary Search transactions
// @Description Run a faceted search over the caller's transactions
// @Tags App/Search
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Search request"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/search [post]
func (c *SearchController) Search(ctx *router.Context) error {
	var req SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	result, err := c.Service.Search(ctx.GetUint("user_id"), &req)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: vErr.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Search failed: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, result)
}

// GetFilterOptions godoc
// @Summary List filter options
// @Description List the caller's books plus the shared subjects, tags and rating values
// @Tags App/Search
// @Security BearerAuth
// @Produce json
// @Success 200 {object} FilterOptions
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/filter-options [get]
func (c *SearchController) GetFilterOptions(ctx *router.Context) error {
	opts, err := c.Service.GetFilterOptions(ctx.GetUint("user_id"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to load filter options: " + err.Error()})
	}
	return ctx.JSON(http.StatusOK, opts)
}

// ClearCache godoc
// @Summary Clear the search result cache
// @Tags App/Search
// @Security BearerAuth
// @Produce json
// @Success 200 {object} types.SuccessResponse
// @Router /transactions/search/clear-cache [post]
func (c *SearchController) ClearCache(ctx *router.Context) error {
	c.Service.ClearCache()
	return ctx.JSON(http.StatusOK, types.SuccessResponse{Message: "Search cache cleared"})
}

// CacheStats godoc
// @Summary Search cache statistics
// @Tags App/Search
// @Security BearerAuth
// @Produce json
// @Success 200 {object} CacheStats
// @Router /transactions/search/cache-stats [get]
func (c *SearchController) CacheStats(ctx *router.Context) error {
	return ctx.JSON(http.StatusOK, c.Service.Cache.Stats())
}
