package search

import "gorm.io/gorm"

// SearchConfig describes how one module's table is searched.
type SearchConfig struct {
	// Name is the module name (e.g. "books", "subjects")
	Name string

	// Fields are the database columns matched against the query
	Fields []string

	// Table is the database table name
	Table string

	// Type is the search result type identifier
	Type string

	// TenantScoped restricts results to rows owned by the requesting
	// user (tables with a user_id column).
	TenantScoped bool

	// CustomSearchFunc overrides the default LIKE search when set.
	CustomSearchFunc func(db *gorm.DB, query string, userId uint, limit int) ([]SearchResult, error)
}

// SearchRegistry holds all registered searchable modules.
type SearchRegistry struct {
	configs map[string]*SearchConfig
}

func NewSearchRegistry() *SearchRegistry {
	return &SearchRegistry{
		configs: make(map[string]*SearchConfig),
	}
}

// SimpleSearchConfig is a minimal registration payload.
type SimpleSearchConfig struct {
	Table        string   // Database table name
	Fields       []string // Fields to search in
	Type         string   // Type identifier for results (defaults to the module name)
	TenantScoped bool     // Restrict rows to the requesting user
}

// RegisterSimple adds a module with minimal configuration.
// Example: registry.RegisterSimple("books", search.SimpleSearchConfig{
//     Table:  "books",
//     Fields: []string{"name", "author"},
// })
func (r *SearchRegistry) RegisterSimple(name string, cfg SimpleSearchConfig) {
	if cfg.Type == "" {
		cfg.Type = name
	}

	r.configs[name] = &SearchConfig{
		Name:         name,
		Fields:       cfg.Fields,
		Table:        cfg.Table,
		Type:         cfg.Type,
		TenantScoped: cfg.TenantScoped,
	}
}

// RegisterWithCustomSearch adds a module with a custom search function.
func (r *SearchRegistry) RegisterWithCustomSearch(name string, cfg SimpleSearchConfig, searchFunc func(db *gorm.DB, query string, userId uint, limit int) ([]SearchResult, error)) {
	r.RegisterSimple(name, cfg)
	r.configs[name].CustomSearchFunc = searchFunc
}

// Get retrieves a search config by name.
func (r *SearchRegistry) Get(name string) (*SearchConfig, bool) {
	config, exists := r.configs[name]
	return config, exists
}

// GetNames returns all registered module names.
func (r *SearchRegistry) GetNames() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}
