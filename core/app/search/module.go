package search

import (
	"gorm.io/gorm"

	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *SearchService
	Controller *SearchController
	Registry   *SearchRegistry
}

// Init creates and initializes the Search module with all dependencies.
// Pass a registry from app/init.go to configure searchable models.
func Init(deps module.Dependencies, registry *SearchRegistry) module.Module {
	if registry == nil {
		registry = NewSearchRegistry()
	}

	service := NewSearchService(deps.DB, deps.Logger, registry)
	controller := NewSearchController(service)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
		Registry:   registry,
	}
}

func (m *Module) Name() string {
	return "search"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}
