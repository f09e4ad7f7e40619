package search

import "fmt"

// Filterable transaction fields. The set is closed: a request naming
// any other field is rejected up front.
const (
	FieldTitle             = "title"
	FieldInformationRating = "information_rating"
	FieldRemark            = "remark"
	FieldFootnote          = "footnote"
	FieldParagraph         = "paragraph"
)

// Relation filter modes and combinators.
const (
	ModeExact = "exact"
	ModeText  = "text"

	MatchAnd = "AND"
	MatchOr  = "OR"
)

// Text-mode operators for subject/tag filters.
const (
	OpContains   = "contains"
	OpStartsWith = "starts_with"
	OpEndsWith   = "ends_with"
	OpEquals     = "equals"
	OpWholeWord  = "whole_word"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FieldFilter matches one transaction column.
type FieldFilter struct {
	Field         string `json:"field" binding:"required"`
	Value         string `json:"value"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// RelationTerm is one text fragment of a subject/tag filter.
type RelationTerm struct {
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// RelationFilter matches linked subjects or tags, either exactly by id
// set or by text fragments against the linked names.
type RelationFilter struct {
	Mode      string         `json:"mode"`       // exact | text (default exact)
	MatchType string         `json:"match_type"` // AND | OR (default AND)
	Ids       []uint         `json:"ids"`
	Terms     []RelationTerm `json:"terms"`
}

// SearchRequest is the full faceted query specification.
type SearchRequest struct {
	Page      *int            `json:"page"`
	PageSize  *int            `json:"page_size"`
	Query     string          `json:"query"` // free-text term
	Filters   []FieldFilter   `json:"filters"`
	Subjects  *RelationFilter `json:"subjects"`
	Tags      *RelationFilter `json:"tags"`
	SortBy    string          `json:"sort_by"`
	SortOrder string          `json:"sort_order"`
}

// ValidationError reports a rejected request field. Controllers map it
// to a 400 response.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validFields = map[string]bool{
	FieldTitle:             true,
	FieldInformationRating: true,
	FieldRemark:            true,
	FieldFootnote:          true,
	FieldParagraph:         true,
}

var validOperators = map[string]bool{
	OpContains:   true,
	OpStartsWith: true,
	OpEndsWith:   true,
	OpEquals:     true,
	OpWholeWord:  true,
}

// page returns the effective page number after validation.
func (r *SearchRequest) page() int {
	if r.Page == nil {
		return 1
	}
	return *r.Page
}

// pageSize returns the effective page size after validation.
func (r *SearchRequest) pageSize() int {
	if r.PageSize == nil {
		return defaultPageSize
	}
	return *r.PageSize
}

// Validate rejects out-of-range pagination, unknown filter fields and
// bad relation filters before anything touches the store.
func (r *SearchRequest) Validate() error {
	if r.Page != nil && *r.Page < 1 {
		return &ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if r.PageSize != nil && (*r.PageSize < 1 || *r.PageSize > maxPageSize) {
		return &ValidationError{Field: "page_size", Message: fmt.Sprintf("must be between 1 and %d", maxPageSize)}
	}

	for _, f := range r.Filters {
		if !validFields[f.Field] {
			return &ValidationError{Field: "filters", Message: fmt.Sprintf("unknown field %q", f.Field)}
		}
	}

	if err := validateRelation("subjects", r.Subjects); err != nil {
		return err
	}
	if err := validateRelation("tags", r.Tags); err != nil {
		return err
	}

	if r.SortOrder != "" && r.SortOrder != "asc" && r.SortOrder != "desc" {
		return &ValidationError{Field: "sort_order", Message: "must be asc or desc"}
	}

	return nil
}

func validateRelation(name string, f *RelationFilter) error {
	if f == nil {
		return nil
	}
	switch f.Mode {
	case "", ModeExact, ModeText:
	default:
		return &ValidationError{Field: name, Message: fmt.Sprintf("unknown mode %q", f.Mode)}
	}
	switch f.MatchType {
	case "", MatchAnd, MatchOr:
	default:
		return &ValidationError{Field: name, Message: fmt.Sprintf("unknown match_type %q", f.MatchType)}
	}
	if f.mode() == ModeText {
		for _, t := range f.Terms {
			if !validOperators[t.Operator] {
				return &ValidationError{Field: name, Message: fmt.Sprintf("unknown operator %q", t.Operator)}
			}
		}
	}
	return nil
}

func (f *RelationFilter) mode() string {
	if f.Mode == "" {
		return ModeExact
	}
	return f.Mode
}

func (f *RelationFilter) matchType() string {
	if f.MatchType == "" {
		return MatchAnd
	}
	return f.MatchType
}

// active reports whether the filter constrains anything.
func (f *RelationFilter) active() bool {
	if f == nil {
		return false
	}
	if f.mode() == ModeExact {
		return len(f.Ids) > 0
	}
	return len(f.Terms) > 0
}
