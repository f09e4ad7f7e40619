package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("filter order does not matter", func(t *testing.T) {
		a := &SearchRequest{
			Filters: []FieldFilter{
				{Field: FieldTitle, Value: "energy"},
				{Field: FieldRemark, Value: "heat"},
			},
		}
		b := &SearchRequest{
			Filters: []FieldFilter{
				{Field: FieldRemark, Value: "heat"},
				{Field: FieldTitle, Value: "energy"},
			},
		}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("subject id order does not matter", func(t *testing.T) {
		a := &SearchRequest{Subjects: &RelationFilter{Ids: []uint{5, 2, 9}}}
		b := &SearchRequest{Subjects: &RelationFilter{Ids: []uint{9, 5, 2}}}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("different values differ", func(t *testing.T) {
		a := &SearchRequest{Query: "deep learning"}
		b := &SearchRequest{Query: "deep learnin"}
		assert.NotEqual(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("user is part of the key", func(t *testing.T) {
		req := &SearchRequest{Query: "deep learning"}
		assert.NotEqual(t, Fingerprint(req, 1, 0), Fingerprint(req, 2, 0))
	})

	t.Run("version is part of the key", func(t *testing.T) {
		req := &SearchRequest{Query: "deep learning"}
		assert.NotEqual(t, Fingerprint(req, 1, 0), Fingerprint(req, 1, 1))
	})

	t.Run("explicit defaults equal implicit defaults", func(t *testing.T) {
		a := &SearchRequest{}
		b := &SearchRequest{Page: intPtr(1), PageSize: intPtr(defaultPageSize)}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("unknown sort field equals the default sort", func(t *testing.T) {
		a := &SearchRequest{Query: "deep learning"}
		b := &SearchRequest{Query: "deep learning", SortBy: "publisher"}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("query whitespace and case are normalized", func(t *testing.T) {
		a := &SearchRequest{Query: "deep learning"}
		b := &SearchRequest{Query: "  Deep Learning  "}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("inactive relation filter equals absent filter", func(t *testing.T) {
		a := &SearchRequest{}
		b := &SearchRequest{Subjects: &RelationFilter{Mode: ModeExact}}
		assert.Equal(t, Fingerprint(a, 1, 0), Fingerprint(b, 1, 0))
	})

	t.Run("original request not mutated", func(t *testing.T) {
		req := &SearchRequest{Subjects: &RelationFilter{Ids: []uint{9, 2}}}
		Fingerprint(req, 1, 0)
		assert.Equal(t, []uint{9, 2}, req.Subjects.Ids)
	})
}
