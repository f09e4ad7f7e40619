package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/storage"
)

func newTestService(t *testing.T) (*SearchService, *emitter.Emitter, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Book{},
		&models.Subject{},
		&models.Tag{},
		&models.Transaction{},
		&storage.Attachment{},
	))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	em := emitter.New()
	cache := NewResultCache(64, time.Minute)
	return NewSearchService(db, em, cache, log), em, db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	books := []*models.Book{
		{UserId: 1, Title: "Thermodynamics"},
		{UserId: 1, Title: "Neural Networks"},
		{UserId: 2, Title: "Gardening"},
	}
	require.NoError(t, db.Create(&books).Error)

	subjects := []*models.Subject{
		{Name: "Physics", Slug: "physics"},
		{Name: "Machine Learning", Slug: "machine-learning"},
		{Name: "Applied Physics", Slug: "applied-physics"},
	}
	require.NoError(t, db.Create(&subjects).Error)

	tags := []*models.Tag{
		{Name: "classic", Slug: "classic"},
		{Name: "modern", Slug: "modern"},
	}
	require.NoError(t, db.Create(&tags).Error)

	rating := func(v string) *string { return &v }
	transactions := []*models.Transaction{
		{
			UserId: 1, BookId: books[0].Id, SrNo: 1,
			Title:             "Specific heat and energy transfer",
			Remark:            "thermal basics",
			InformationRating: rating("A"),
			Paragraph:         models.ParagraphText{"en": "Heat flows from hot to cold bodies."},
			Subjects:          []models.Subject{*subjects[0], *subjects[2]},
			Tags:              []models.Tag{*tags[0]},
		},
		{
			UserId: 1, BookId: books[0].Id, SrNo: 2,
			Title:     "Heat engines",
			Paragraph: models.ParagraphText{"en": "Carnot cycle efficiency."},
			Subjects:  []models.Subject{*subjects[0]},
		},
		{
			UserId: 1, BookId: books[1].Id, SrNo: 3,
			Title:             "Introduction to deep learning",
			Remark:            "gradient descent",
			InformationRating: rating("B"),
			Paragraph: models.ParagraphText{
				"en": "Deep learning stacks many layers.",
				"de": "Tiefes Lernen stapelt viele Schichten.",
			},
			Subjects: []models.Subject{*subjects[1]},
			Tags:     []models.Tag{*tags[1]},
		},
		{
			UserId: 1, BookId: books[1].Id, SrNo: 4,
			Title:     "Backpropagation",
			Footnote:  "see also deep learning chapter",
			Paragraph: models.ParagraphText{"fr": "Retropropagation du gradient."},
			Subjects:  []models.Subject{*subjects[1]},
			Tags:      []models.Tag{*tags[1]},
		},
		{
			UserId: 2, BookId: books[2].Id, SrNo: 1,
			Title:     "Deep learning for plant diseases",
			Paragraph: models.ParagraphText{"en": "Deep learning classifies leaf photos."},
		},
	}
	require.NoError(t, db.Create(&transactions).Error)
}

func TestSearchWordFilters(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	t.Run("every word must match the field", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "heat energy"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Specific heat and energy transfer", resp.Data[0].Title)
	})

	t.Run("word order does not matter", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "energy heat"}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("match is case insensitive by default", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "HEAT"}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("case sensitive flag rejects wrong case", func(t *testing.T) {
		// LIKE alone would match both heat titles here; the in-memory
		// confirmation must throw them out.
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "HEAT", CaseSensitive: true}},
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
		assert.Zero(t, resp.Pagination.Total)
	})

	t.Run("case sensitive flag matches exact case", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "Heat", CaseSensitive: true}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Heat engines", resp.Data[0].Title)
		assert.Equal(t, 1, resp.Pagination.Total)

		resp, err = svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldTitle, Value: "heat", CaseSensitive: true}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Specific heat and energy transfer", resp.Data[0].Title)
	})

	t.Run("rating literal null selects unrated", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldInformationRating, Value: "null"}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
		for _, item := range resp.Data {
			assert.Nil(t, item.InformationRating)
		}
	})

	t.Run("empty rating value selects unrated", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldInformationRating, Value: ""}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("rating exact match", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldInformationRating, Value: "A"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Data[0].SrNo)
	})
}

func TestSearchFreeText(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	t.Run("matches fields and paragraph, owner only, sr_no order", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{Query: "deep learning"})
		require.NoError(t, err)

		// sr_no 3 matches title+paragraph, sr_no 4 matches footnote.
		require.Len(t, resp.Data, 2)
		assert.Equal(t, 3, resp.Data[0].SrNo)
		assert.Equal(t, 4, resp.Data[1].SrNo)
		assert.Equal(t, 2, resp.Pagination.Total)
		for _, item := range resp.Data {
			assert.Equal(t, uint(1), item.UserId)
		}
	})

	t.Run("other user sees only their rows", func(t *testing.T) {
		resp, err := svc.Search(2, &SearchRequest{Query: "deep learning"})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Deep learning for plant diseases", resp.Data[0].Title)
	})

	t.Run("json key is not searchable text", func(t *testing.T) {
		// Serialized paragraph of sr_no 4 contains the key "fr"; no
		// field or language value does.
		resp, err := svc.Search(1, &SearchRequest{Query: `"fr"`})
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
		assert.Equal(t, 0, resp.Pagination.Total)
	})

	t.Run("free text combines with field filters", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Query:   "deep learning",
			Filters: []FieldFilter{{Field: FieldRemark, Value: "gradient"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 3, resp.Data[0].SrNo)
	})
}

func TestSearchParagraphFilter(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	t.Run("all words within any one language", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldParagraph, Value: "layers stacks"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 3, resp.Data[0].SrNo)
	})

	t.Run("matches in a non-english language", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters: []FieldFilter{{Field: FieldParagraph, Value: "Schichten"}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("post filter pagination keeps totals exact", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Filters:  []FieldFilter{{Field: FieldParagraph, Value: "o"}},
			PageSize: intPtr(2),
			Page:     intPtr(2),
		})
		require.NoError(t, err)
		// Rows 1, 2 and 4 have an "o" in a language value; row 3 has
		// none in either language.
		assert.Equal(t, 3, resp.Pagination.Total)
		assert.Len(t, resp.Data, 1)
		assert.True(t, resp.Pagination.HasPrevious)
		assert.False(t, resp.Pagination.HasNext)
	})
}

func TestSearchRelationFilters(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	var physics, ml, applied models.Subject
	require.NoError(t, db.Where("slug = ?", "physics").First(&physics).Error)
	require.NoError(t, db.Where("slug = ?", "machine-learning").First(&ml).Error)
	require.NoError(t, db.Where("slug = ?", "applied-physics").First(&applied).Error)

	t.Run("exact AND requires every id", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Subjects: &RelationFilter{Ids: []uint{physics.Id, applied.Id}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Data[0].SrNo)
	})

	t.Run("exact OR requires any id", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Subjects: &RelationFilter{MatchType: MatchOr, Ids: []uint{physics.Id, ml.Id}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 4)
	})

	t.Run("text starts_with", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Subjects: &RelationFilter{
				Mode:  ModeText,
				Terms: []RelationTerm{{Operator: OpStartsWith, Value: "applied"}},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Data[0].SrNo)
	})

	t.Run("text equals is exact", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Subjects: &RelationFilter{
				Mode:  ModeText,
				Terms: []RelationTerm{{Operator: OpEquals, Value: "physics"}},
			},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("whole_word splits and requires every word", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Subjects: &RelationFilter{
				Mode:  ModeText,
				Terms: []RelationTerm{{Operator: OpWholeWord, Value: "physics applied"}},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Data[0].SrNo)
	})

	t.Run("tag filter", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{
			Tags: &RelationFilter{
				Mode:  ModeText,
				Terms: []RelationTerm{{Operator: OpContains, Value: "modern"}},
			},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})
}

func TestSearchCaching(t *testing.T) {
	svc, em, db := newTestService(t)
	seedCatalog(t, db)

	req := &SearchRequest{
		Filters: []FieldFilter{
			{Field: FieldTitle, Value: "deep"},
			{Field: FieldRemark, Value: "gradient"},
		},
	}

	first, err := svc.Search(1, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Search(1, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Pagination.Total, second.Pagination.Total)

	t.Run("reordered filters still hit", func(t *testing.T) {
		reordered := &SearchRequest{
			Filters: []FieldFilter{
				{Field: FieldRemark, Value: "gradient"},
				{Field: FieldTitle, Value: "deep"},
			},
		}
		resp, err := svc.Search(1, reordered)
		require.NoError(t, err)
		assert.True(t, resp.Cached)
	})

	t.Run("other user never hits the same entry", func(t *testing.T) {
		resp, err := svc.Search(2, req)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
	})

	t.Run("mutation event invalidates", func(t *testing.T) {
		before := svc.Version()
		em.Emit("transactions.update", nil)
		assert.Equal(t, before+1, svc.Version())

		resp, err := svc.Search(1, req)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
	})

	t.Run("taxonomy events invalidate too", func(t *testing.T) {
		before := svc.Version()
		em.Emit("subjects.delete", nil)
		em.Emit("tags.create", nil)
		assert.Equal(t, before+2, svc.Version())
	})
}

func TestSearchPagination(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	t.Run("page past the end is empty with real total", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{Page: intPtr(5), PageSize: intPtr(10)})
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
		assert.Equal(t, 4, resp.Pagination.Total)
	})

	t.Run("sql pagination", func(t *testing.T) {
		resp, err := svc.Search(1, &SearchRequest{Page: intPtr(2), PageSize: intPtr(3)})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 4, resp.Data[0].SrNo)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
		assert.True(t, resp.Pagination.HasPrevious)
	})

	t.Run("invalid request is rejected before hitting the store", func(t *testing.T) {
		_, err := svc.Search(1, &SearchRequest{Page: intPtr(-1)})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "page", vErr.Field)
	})
}

func TestGetFilterOptions(t *testing.T) {
	svc, _, db := newTestService(t)
	seedCatalog(t, db)

	opts, err := svc.GetFilterOptions(1)
	require.NoError(t, err)

	assert.Len(t, opts.Books, 2)
	assert.Len(t, opts.Subjects, 3)
	assert.Len(t, opts.Tags, 2)
	assert.Equal(t, []string{"A", "B"}, opts.Ratings)

	t.Run("books are scoped to the caller", func(t *testing.T) {
		opts, err := svc.GetFilterOptions(2)
		require.NoError(t, err)
		require.Len(t, opts.Books, 1)
		assert.Equal(t, "Gardening", opts.Books[0].Name)
	})
}
