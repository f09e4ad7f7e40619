package types

// ErrorResponse is the standard error payload returned by controllers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the standard payload for operations without a resource body.
type SuccessResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

// Pagination holds page metadata for list responses.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// PaginatedResponse wraps a page of data with its pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SelectOption is a simplified id/name pair for dropdowns and filter pickers.
type SelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}
