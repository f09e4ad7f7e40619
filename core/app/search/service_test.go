package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/core/logger"
)

type catalogEntry struct {
	Id        uint   `gorm:"primarykey"`
	Title     string `gorm:"size:255"`
	Author    string `gorm:"size:255"`
	Note      *string
	UserId    uint
	DeletedAt gorm.DeletedAt
}

func newTestService(t *testing.T) (*SearchService, *SearchRegistry, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogEntry{}))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	registry := NewSearchRegistry()
	registry.RegisterSimple("entries", SimpleSearchConfig{
		Table:        "catalog_entries",
		Fields:       []string{"title", "author", "note"},
		TenantScoped: true,
	})

	return NewSearchService(db, log, registry), registry, db
}

func seedEntries(t *testing.T, db *gorm.DB) {
	t.Helper()

	note := "classic reference"
	require.NoError(t, db.Create([]*catalogEntry{
		{Title: "Thermodynamics", Author: "Fermi", Note: &note, UserId: 1},
		{Title: "Neural Networks", Author: "Haykin", UserId: 1},
		{Title: "Thermoregulation in Plants", Author: "Gates", UserId: 2},
	}).Error)
}

func TestGlobalSearch(t *testing.T) {
	service, registry, db := newTestService(t)
	seedEntries(t, db)

	t.Run("matches case-insensitively", func(t *testing.T) {
		resp, err := service.GlobalSearch("THERMO", "", 1, 10)
		require.NoError(t, err)
		require.Contains(t, resp.Results, "entries")
		require.Len(t, resp.Results["entries"], 1)
		assert.Equal(t, "Thermodynamics", resp.Results["entries"][0].Title)
		assert.Equal(t, "Fermi", resp.Results["entries"][0].Subtitle)
		assert.Equal(t, "classic reference", resp.Results["entries"][0].Description)
	})

	t.Run("tenant scoping hides other users", func(t *testing.T) {
		resp, err := service.GlobalSearch("thermo", "", 2, 10)
		require.NoError(t, err)
		require.Len(t, resp.Results["entries"], 1)
		assert.Equal(t, "Thermoregulation in Plants", resp.Results["entries"][0].Title)
	})

	t.Run("null columns come back empty", func(t *testing.T) {
		resp, err := service.GlobalSearch("neural", "", 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Results["entries"], 1)
		assert.Equal(t, "", resp.Results["entries"][0].Description)
	})

	t.Run("unknown module is skipped", func(t *testing.T) {
		resp, err := service.GlobalSearch("thermo", "entries, nope", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"entries"}, resp.Modules)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("no matches yields empty response", func(t *testing.T) {
		resp, err := service.GlobalSearch("zzz", "", 1, 10)
		require.NoError(t, err)
		assert.Zero(t, resp.Total)
		assert.Empty(t, resp.Modules)
	})

	t.Run("custom search overrides the default", func(t *testing.T) {
		registry.RegisterWithCustomSearch("fixed", SimpleSearchConfig{Table: "unused", Fields: []string{"x"}},
			func(db *gorm.DB, query string, userId uint, limit int) ([]SearchResult, error) {
				return []SearchResult{{Id: 99, Type: "fixed", Title: query}}, nil
			})

		resp, err := service.GlobalSearch("anything", "fixed", 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Results["fixed"], 1)
		assert.Equal(t, uint(99), resp.Results["fixed"][0].Id)
	})
}
