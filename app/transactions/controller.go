package transactions

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

type TransactionController struct {
	Service *TransactionService
	Logger  logger.Logger
}

func NewTransactionController(service *TransactionService, logger logger.Logger) *TransactionController {
	return &TransactionController{
		Service: service,
		Logger:  logger,
	}
}

func (c *TransactionController) Routes(router *router.RouterGroup) {
	group := router.Group("/transactions")

	group.GET("", c.List)
	group.POST("", c.Create)
	group.GET("/all", c.ListAll) // MUST be before /:id
	group.GET("/:id", c.Get)
	group.PUT("/:id", c.Update)
	group.DELETE("/:id", c.Delete)
	group.PUT("/:id/image", c.UploadPageImage)
	group.DELETE("/:id/image", c.RemovePageImage)
}

// Create godoc
// @Summary Create a new Transaction
// @Description Create a summary transaction against one of the caller's books
// @Tags App/Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param transaction body models.CreateTransactionRequest true "Create Transaction request"
// @Success 201 {object} models.TransactionResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions [post]
func (c *TransactionController) Create(ctx *router.Context) error {
	var req models.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Create(ctx.GetUint("user_id"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "unknown") {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to create transaction: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

// Get godoc
// @Summary Get a Transaction
// @Tags App/Transactions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction id"
// @Success 200 {object} models.TransactionResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /transactions/{id} [get]
func (c *TransactionController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.GetById(ctx.GetUint("user_id"), uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Transaction not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// List godoc
// @Summary List transactions
// @Tags App/Transactions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Param sort query string false "Sort field (id, created_at, updated_at, sr_no, title, page_no, paragraph_no, information_rating, book_id)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions [get]
func (c *TransactionController) List(ctx *router.Context) error {
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

	paginatedResponse, err := c.Service.GetAll(ctx.GetUint("user_id"), page, limit, sortBy, sortOrder)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch transactions: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, paginatedResponse)
}

// ListAll godoc
// @Summary List all transactions for select options
// @Tags App/Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.TransactionSelectOption
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/all [get]
func (c *TransactionController) ListAll(ctx *router.Context) error {
	items, err := c.Service.GetAllForSelect(ctx.GetUint("user_id"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch select options: " + err.Error()})
	}

	selectOptions := make([]*models.TransactionSelectOption, 0, len(items))
	for _, item := range items {
		selectOptions = append(selectOptions, item.ToSelectOption())
	}

	return ctx.JSON(http.StatusOK, selectOptions)
}

// Update godoc
// @Summary Update a Transaction
// @Tags App/Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Transaction id"
// @Param transaction body models.UpdateTransactionRequest true "Update Transaction request"
// @Success 200 {object} models.TransactionResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/{id} [put]
func (c *TransactionController) Update(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	var req models.UpdateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	item, err := c.Service.Update(ctx.GetUint("user_id"), uint(id), &req)
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Transaction not found"})
		}
		if strings.Contains(err.Error(), "unknown") || strings.Contains(err.Error(), "not found") {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update transaction: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Delete godoc
// @Summary Delete a Transaction
// @Tags App/Transactions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction id"
// @Success 204 {object} nil
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/{id} [delete]
func (c *TransactionController) Delete(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Service.Delete(ctx.GetUint("user_id"), uint(id)); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Transaction not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete transaction: " + err.Error()})
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

// UploadPageImage godoc
// @Summary Upload the scanned page image for a Transaction
// @Description Multipart upload; crop_x/crop_y/crop_width/crop_height crop server-side before WebP re-encode
// @Tags App/Transactions
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Transaction id"
// @Param file formData file true "Page image"
// @Param crop_x formData int false "Crop origin X"
// @Param crop_y formData int false "Crop origin Y"
// @Param crop_width formData int false "Crop width"
// @Param crop_height formData int false "Crop height"
// @Success 200 {object} models.TransactionResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/{id}/image [put]
func (c *TransactionController) UploadPageImage(ctx *router.Context) error {
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

	item, err := c.Service.UploadPageImage(ctx.GetUint("user_id"), uint(id), file, crop)
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Transaction not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to upload page image: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// RemovePageImage godoc
// @Summary Remove the page image from a Transaction
// @Tags App/Transactions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction id"
// @Success 200 {object} models.TransactionResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /transactions/{id}/image [delete]
func (c *TransactionController) RemovePageImage(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.RemovePageImage(ctx.GetUint("user_id"), uint(id))
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Transaction not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to remove page image: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
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
