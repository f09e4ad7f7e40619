package books

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookstack/app/models"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/storage"
	"bookstack/core/types"
)

type BookController struct {
	Service *BookService
	Logger  logger.Logger
}

func NewBookController(service *BookService, logger logger.Logger) *BookController {
	return &BookController{
		Service: service,
		Logger:  logger,
	}
}

func (c *BookController) Routes(router *router.RouterGroup) {
	booksGroup := router.Group("/books")

	booksGroup.GET("", c.List)        // Paginated list
	booksGroup.POST("", c.Create)     // Create
	booksGroup.GET("/all", c.ListAll) // Unpaginated list - MUST be before /:id
	booksGroup.GET("/:id", c.Get)
	booksGroup.PUT("/:id", c.Update)
	booksGroup.DELETE("/:id", c.Delete)
	booksGroup.PUT("/:id/cover", c.UploadCover)
	booksGroup.DELETE("/:id/cover", c.RemoveCover)
}

// Create godoc
// @Summary Create a new Book
// @Tags App/Books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param book body models.CreateBookRequest true "Create Book request"
// @Success 201 {object} models.BookResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books [post]
func (c *BookController) Create(ctx *router.Context) error {
	var req models.CreateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Create(ctx.GetUint("user_id"), &req)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to create book: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

// Get godoc
// @Summary Get a Book
// @Tags App/Books
// @Security BearerAuth
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} models.BookResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /books/{id} [get]
func (c *BookController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.GetById(ctx.GetUint("user_id"), uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Book not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// List godoc
// @Summary List books
// @Tags App/Books
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Param sort query string false "Sort field (id, created_at, updated_at, title, author, publisher, published_year)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books [get]
func (c *BookController) List(ctx *router.Context) error {
	page, limit, sortBy, sortOrder, errResp := parseListQuery(ctx)
	if errResp != nil {
		return ctx.JSON(http.StatusBadRequest, *errResp)
	}

	paginatedResponse, err := c.Service.GetAll(ctx.GetUint("user_id"), page, limit, sortBy, sortOrder)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch books: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, paginatedResponse)
}

// ListAll godoc
// @Summary List all books for select options
// @Tags App/Books
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.BookSelectOption
// @Failure 500 {object} types.ErrorResponse
// @Router /books/all [get]
func (c *BookController) ListAll(ctx *router.Context) error {
	items, err := c.Service.GetAllForSelect(ctx.GetUint("user_id"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch select options: " + err.Error()})
	}

	selectOptions := make([]*models.BookSelectOption, 0, len(items))
	for _, item := range items {
		selectOptions = append(selectOptions, item.ToSelectOption())
	}

	return ctx.JSON(http.StatusOK, selectOptions)
}

// Update godoc
// @Summary Update a Book
// @Tags App/Books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Book id"
// @Param book body models.UpdateBookRequest true "Update Book request"
// @Success 200 {object} models.BookResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books/{id} [put]
func (c *BookController) Update(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	var req models.UpdateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Update(ctx.GetUint("user_id"), uint(id), &req)
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Book not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update book: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Delete godoc
// @Summary Delete a Book
// @Tags App/Books
// @Security BearerAuth
// @Produce json
// @Param id path int true "Book id"
// @Success 204 {object} nil
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books/{id} [delete]
func (c *BookController) Delete(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Service.Delete(ctx.GetUint("user_id"), uint(id)); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Book not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete book: " + err.Error()})
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

// UploadCover godoc
// @Summary Upload a cover image for a Book
// @Description Multipart upload; crop_x/crop_y/crop_width/crop_height crop server-side before WebP re-encode
// @Tags App/Books
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Book id"
// @Param file formData file true "Cover image"
// @Param crop_x formData int false "Crop origin X"
// @Param crop_y formData int false "Crop origin Y"
// @Param crop_width formData int false "Crop width"
// @Param crop_height formData int false "Crop height"
// @Success 200 {object} models.BookResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books/{id}/cover [put]
func (c *BookController) UploadCover(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Failed to get file: " + err.Error()})
	}

	crop, err := parseCropRect(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.UploadCover(ctx.GetUint("user_id"), uint(id), file, crop)
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Book not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to upload cover: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// RemoveCover godoc
// @Summary Remove the cover image from a Book
// @Tags App/Books
// @Security BearerAuth
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} models.BookResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /books/{id}/cover [delete]
func (c *BookController) RemoveCover(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.RemoveCover(ctx.GetUint("user_id"), uint(id))
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Book not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to remove cover: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// parseListQuery parses the shared page/limit/sort/order query params.
func parseListQuery(ctx *router.Context) (page, limit *int, sortBy, sortOrder *string, errResp *types.ErrorResponse) {
	if pageStr := ctx.Query("page"); pageStr != "" {
		if pageNum, err := strconv.Atoi(pageStr); err == nil && pageNum > 0 {
			page = &pageNum
		} else {
			return nil, nil, nil, nil, &types.ErrorResponse{Error: "Invalid page number"}
		}
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		if limitNum, err := strconv.Atoi(limitStr); err == nil && limitNum > 0 {
			limit = &limitNum
		} else {
			return nil, nil, nil, nil, &types.ErrorResponse{Error: "Invalid limit number"}
		}
	}

	if sortStr := ctx.Query("sort"); sortStr != "" {
		sortBy = &sortStr
	}

	if orderStr := ctx.Query("order"); orderStr != "" {
		if orderStr == "asc" || orderStr == "desc" {
			sortOrder = &orderStr
		} else {
			return nil, nil, nil, nil, &types.ErrorResponse{Error: "Invalid sort order. Use 'asc' or 'desc'"}
		}
	}

	return page, limit, sortBy, sortOrder, nil
}

// parseCropRect reads the optional crop_* multipart form fields.
func parseCropRect(ctx *router.Context) (storage.CropRect, error) {
	parse := func(name string) (int, error) {
		v := ctx.FormValue(name)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid %s value", name)
		}
		return n, nil
	}

	var crop storage.CropRect
	var err error
	if crop.X, err = parse("crop_x"); err != nil {
		return crop, err
	}
	if crop.Y, err = parse("crop_y"); err != nil {
		return crop, err
	}
	if crop.Width, err = parse("crop_width"); err != nil {
		return crop, err
	}
	if crop.Height, err = parse("crop_height"); err != nil {
		return crop, err
	}
	return crop, nil
}
