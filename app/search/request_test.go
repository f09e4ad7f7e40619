package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestSearchRequestValidate(t *testing.T) {
	t.Run("empty request is valid", func(t *testing.T) {
		req := &SearchRequest{}
		assert.NoError(t, req.Validate())
		assert.Equal(t, 1, req.page())
		assert.Equal(t, defaultPageSize, req.pageSize())
	})

	t.Run("page below one rejected", func(t *testing.T) {
		req := &SearchRequest{Page: intPtr(0)}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "page")
	})

	t.Run("page size zero rejected", func(t *testing.T) {
		req := &SearchRequest{PageSize: intPtr(0)}
		assert.Error(t, req.Validate())
	})

	t.Run("page size above limit rejected", func(t *testing.T) {
		req := &SearchRequest{PageSize: intPtr(101)}
		assert.Error(t, req.Validate())
	})

	t.Run("page size at limit accepted", func(t *testing.T) {
		req := &SearchRequest{PageSize: intPtr(100)}
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown filter field rejected", func(t *testing.T) {
		req := &SearchRequest{
			Filters: []FieldFilter{{Field: "publisher", Value: "x"}},
		}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "publisher")
	})

	t.Run("all known fields accepted", func(t *testing.T) {
		req := &SearchRequest{
			Filters: []FieldFilter{
				{Field: FieldTitle, Value: "a"},
				{Field: FieldInformationRating, Value: "b"},
				{Field: FieldRemark, Value: "c"},
				{Field: FieldFootnote, Value: "d"},
				{Field: FieldParagraph, Value: "e"},
			},
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown relation operator rejected", func(t *testing.T) {
		req := &SearchRequest{
			Subjects: &RelationFilter{
				Mode:  ModeText,
				Terms: []RelationTerm{{Operator: "regex", Value: "x"}},
			},
		}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "regex")
	})

	t.Run("unknown relation mode rejected", func(t *testing.T) {
		req := &SearchRequest{
			Tags: &RelationFilter{Mode: "fuzzy"},
		}
		assert.Error(t, req.Validate())
	})

	t.Run("bad sort order rejected", func(t *testing.T) {
		req := &SearchRequest{SortOrder: "sideways"}
		assert.Error(t, req.Validate())
	})
}

func TestRelationFilterDefaults(t *testing.T) {
	f := &RelationFilter{}
	assert.Equal(t, ModeExact, f.mode())
	assert.Equal(t, MatchAnd, f.matchType())
	assert.False(t, f.active())

	var nilFilter *RelationFilter
	assert.False(t, nilFilter.active())

	f.Ids = []uint{3}
	assert.True(t, f.active())
}

func TestSortExpr(t *testing.T) {
	t.Run("unknown sort column falls back silently", func(t *testing.T) {
		assert.Equal(t, "transactions.sr_no asc", sortExpr("password", ""))
	})

	t.Run("known column kept", func(t *testing.T) {
		assert.Equal(t, "transactions.title desc", sortExpr("title", "desc"))
	})

	t.Run("bad order falls back to asc", func(t *testing.T) {
		assert.Equal(t, "transactions.page_no asc", sortExpr("page_no", "up"))
	})
}
