package search

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookstack/core/logger"
)

type SearchService struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Registry *SearchRegistry
}

func NewSearchService(db *gorm.DB, log logger.Logger, registry *SearchRegistry) *SearchService {
	return &SearchService{
		DB:       db,
		Logger:   log,
		Registry: registry,
	}
}

// GlobalSearch runs the query against every requested module. Tenant
// scoped modules only return rows owned by userId; a module that fails
// is skipped, the others still answer.
func (s *SearchService) GlobalSearch(query, modules string, userId uint, limit int) (*SearchResponse, error) {
	response := &SearchResponse{
		Query:   query,
		Results: make(map[string][]SearchResult),
		Modules: []string{},
	}

	if limit <= 0 {
		limit = 10
	}

	for _, moduleName := range s.resolveModules(modules) {
		config, exists := s.Registry.Get(moduleName)
		if !exists {
			s.Logger.Warn("search module not registered",
				logger.String("module", moduleName))
			continue
		}

		var results []SearchResult
		var err error
		if config.CustomSearchFunc != nil {
			results, err = config.CustomSearchFunc(s.DB, query, userId, limit)
		} else {
			results, err = s.defaultSearch(config, query, userId, limit)
		}
		if err != nil {
			s.Logger.Error("failed to search module",
				logger.String("module", moduleName),
				logger.String("error", err.Error()))
			continue
		}

		if len(results) > 0 {
			response.Results[moduleName] = results
			response.Modules = append(response.Modules, moduleName)
			response.Total += len(results)
		}
	}

	return response, nil
}

func (s *SearchService) resolveModules(modules string) []string {
	if modules == "" {
		return s.Registry.GetNames()
	}
	names := strings.Split(modules, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// defaultSearch matches the query case-insensitively against the
// configured columns and reads back only those columns.
func (s *SearchService) defaultSearch(config *SearchConfig, query string, userId uint, limit int) ([]SearchResult, error) {
	if len(config.Fields) == 0 {
		s.Logger.Warn("no search fields configured for module",
			logger.String("module", config.Name))
		return nil, nil
	}

	term := "%" + strings.ToLower(query) + "%"
	clauses := make([]string, len(config.Fields))
	args := make([]any, len(config.Fields))
	for i, field := range config.Fields {
		clauses[i] = "LOWER(" + field + ") LIKE ?"
		args[i] = term
	}

	tx := s.DB.Table(config.Table).
		Select(append([]string{"id"}, config.Fields...)).
		Where("deleted_at IS NULL").
		Where(strings.Join(clauses, " OR "), args...)
	if config.TenantScoped {
		tx = tx.Where("user_id = ?", userId)
	}

	rows, err := tx.Limit(limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var id uint
		fieldValues := make([]sql.NullString, len(config.Fields))
		dest := make([]any, 0, len(config.Fields)+1)
		dest = append(dest, &id)
		for i := range fieldValues {
			dest = append(dest, &fieldValues[i])
		}
		if err := rows.Scan(dest...); err != nil {
			continue
		}
		results = append(results, buildResult(config, id, fieldValues))
	}

	return results, rows.Err()
}

// buildResult maps the configured columns onto the display slots in
// order: title, subtitle, description.
func buildResult(config *SearchConfig, id uint, fieldValues []sql.NullString) SearchResult {
	result := SearchResult{
		Id:   id,
		Type: config.Type,
		URL:  fmt.Sprintf("/app/%s/%d", config.Name, id),
	}
	if len(fieldValues) > 0 {
		result.Title = collapse(fieldValues[0].String)
	}
	if len(fieldValues) > 1 {
		result.Subtitle = collapse(fieldValues[1].String)
	}
	if len(fieldValues) > 2 {
		result.Description = collapse(fieldValues[2].String)
	}
	return result
}

func collapse(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, "\n", " "))
}
