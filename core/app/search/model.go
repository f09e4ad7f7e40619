package search

// SearchResponse groups results per module for one query.
type SearchResponse struct {
	Query    string                    `json:"query"`
	Total    int                       `json:"total"`
	Results  map[string][]SearchResult `json:"results"`
	Modules  []string                  `json:"modules"`
	Duration string                    `json:"duration"`
}

type SearchResult struct {
	Id          uint   `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type SearchRequest struct {
	Query   string `form:"q" binding:"required,min=2" example:"thermodynamics"` // Search query (minimum 2 characters)
	Modules string `form:"modules,omitempty" example:"books,subjects,tags"`     // Comma-separated modules to search
	Limit   int    `form:"limit,omitempty" example:"20"`                        // Results per module (default: 10)
}
