package subjects

import (
	"net/http"
	"strconv"
	"strings"

	"bookstack/app/models"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type SubjectController struct {
	Service *SubjectService
	Logger  logger.Logger
}

func NewSubjectController(service *SubjectService, logger logger.Logger) *SubjectController {
	return &SubjectController{
		Service: service,
		Logger:  logger,
	}
}

func (c *SubjectController) Routes(router *router.RouterGroup) {
	group := router.Group("/subjects")

	group.GET("", c.List)
	group.POST("", c.Create)
	group.GET("/all", c.ListAll) // MUST be before /:id
	group.GET("/export", c.ExportCSV)
	group.POST("/import", c.ImportCSV)
	group.GET("/:id", c.Get)
	group.PUT("/:id", c.Update)
	group.DELETE("/:id", c.Delete)
}

// Create godoc
// @Summary Create a new Subject
// @Tags App/Subjects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param subject body models.CreateSubjectRequest true "Create Subject request"
// @Success 201 {object} models.SubjectResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects [post]
func (c *SubjectController) Create(ctx *router.Context) error {
	var req models.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Create(&req)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to create subject: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

// Get godoc
// @Summary Get a Subject
// @Tags App/Subjects
// @Security BearerAuth
// @Produce json
// @Param id path int true "Subject id"
// @Success 200 {object} models.SubjectResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /subjects/{id} [get]
func (c *SubjectController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.GetById(uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Subject not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// List godoc
// @Summary List subjects
// @Tags App/Subjects
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Param sort query string false "Sort field (id, created_at, updated_at, name)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects [get]
func (c *SubjectController) List(ctx *router.Context) error {
	var page, limit *int
	var sortBy, sortOrder *string

	if pageStr := ctx.Query("page"); pageStr != "" {
		if pageNum, err := strconv.Atoi(pageStr); err == nil && pageNum > 0 {
			page = &pageNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid page number"})
		}
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		if limitNum, err := strconv.Atoi(limitStr); err == nil && limitNum > 0 {
			limit = &limitNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid limit number"})
		}
	}

	if sortStr := ctx.Query("sort"); sortStr != "" {
		sortBy = &sortStr
	}

	if orderStr := ctx.Query("order"); orderStr != "" {
		if orderStr == "asc" || orderStr == "desc" {
			sortOrder = &orderStr
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid sort order. Use 'asc' or 'desc'"})
		}
	}

	paginatedResponse, err := c.Service.GetAll(page, limit, sortBy, sortOrder)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch subjects: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, paginatedResponse)
}

// ListAll godoc
// @Summary List all subjects for select options
// @Tags App/Subjects
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SubjectSelectOption
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects/all [get]
func (c *SubjectController) ListAll(ctx *router.Context) error {
	items, err := c.Service.GetAllForSelect()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch select options: " + err.Error()})
	}

	selectOptions := make([]*models.SubjectSelectOption, 0, len(items))
	for _, item := range items {
		selectOptions = append(selectOptions, item.ToSelectOption())
	}

	return ctx.JSON(http.StatusOK, selectOptions)
}

// Update godoc
// @Summary Update a Subject
// @Tags App/Subjects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Subject id"
// @Param subject body models.UpdateSubjectRequest true "Update Subject request"
// @Success 200 {object} models.SubjectResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects/{id} [put]
func (c *SubjectController) Update(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	var req models.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Update(uint(id), &req)
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Subject not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update subject: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Delete godoc
// @Summary Delete a Subject
// @Tags App/Subjects
// @Security BearerAuth
// @Produce json
// @Param id path int true "Subject id"
// @Success 204 {object} nil
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Service.Delete(uint(id)); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Subject not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete subject: " + err.Error()})
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

// ExportCSV godoc
// @Summary Export subjects as CSV
// @Tags App/Subjects
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects/export [get]
func (c *SubjectController) ExportCSV(ctx *router.Context) error {
	ctx.Writer.Header().Set("Content-Type", "text/csv")
	ctx.Writer.Header().Set("Content-Disposition", `attachment; filename="subjects.csv"`)
	ctx.Status(http.StatusOK)

	if err := c.Service.ExportCSV(ctx.Writer); err != nil {
		c.Logger.Error("subject export failed", logger.String("error", err.Error()))
		return err
	}
	return nil
}

// ImportCSV godoc
// @Summary Import subjects from a CSV file
// @Description Upserts by normalized name key; progress is broadcast over the websocket hub
// @Tags App/Subjects
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with name,description columns"
// @Success 200 {object} ImportProgress
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /subjects/import [post]
func (c *SubjectController) ImportCSV(ctx *router.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Failed to get file: " + err.Error()})
	}

	progress, err := c.Service.ImportCSV(file)
	if err != nil {
		c.Logger.Error("subject import failed", logger.String("error", err.Error()))
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Import failed: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, progress)
}
