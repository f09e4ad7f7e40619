package search

import (
	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *SearchService
	Controller *SearchController
}

// Init creates and initializes the transaction search module. The
// result cache is sized from the application config.
func Init(deps module.Dependencies) module.Module {
	cache := NewResultCache(deps.Config.SearchCacheSize, deps.Config.SearchCacheTTL)
	service := NewSearchService(deps.DB, deps.Emitter, cache, deps.Logger)
	controller := NewSearchController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "transaction-search"
}

// Routes registers the search endpoints. Cache management is admin
// only.
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)

	adminGroup := router.Group("/transactions/search")
	adminGroup.Use(authorization.RequireRole(authorization.RoleAdmin))
	m.Controller.AdminRoutes(adminGroup)
}

// Migrate is a no-op; the search module reads tables owned by the
// transactions, subjects and tags modules.
func (m *Module) Migrate() error {
	return nil
}
