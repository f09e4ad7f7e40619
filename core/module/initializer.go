package module

import (
	"sort"

	"bookstack/core/logger"
	"bookstack/core/router"
)

// Initializer registers, initializes, migrates and routes a set of modules.
type Initializer struct {
	logger logger.Logger
}

// NewInitializer creates a module initializer.
func NewInitializer(log logger.Logger) *Initializer {
	return &Initializer{logger: log}
}

// Initialize runs each module through the register → init → migrate → routes
// lifecycle. A module failing one stage is skipped, not fatal.
// Modules run in name order; migrations that depend on another module's
// tables rely on this (authorization seeds roles before users).
func (i *Initializer) Initialize(modules map[string]Module, deps Dependencies) []Module {
	var initialized []Module

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mod := modules[name]
		if err := RegisterModule(name, mod); err != nil {
			i.logger.Error("Failed to register module",
				logger.String("module", name),
				logger.String("error", err.Error()))
			continue
		}

		if initModule, ok := mod.(interface{ Init() error }); ok {
			if err := initModule.Init(); err != nil {
				i.logger.Error("Failed to initialize module",
					logger.String("module", name),
					logger.String("error", err.Error()))
				continue
			}
		}

		if migrator, ok := mod.(interface{ Migrate() error }); ok {
			if err := migrator.Migrate(); err != nil {
				i.logger.Error("Failed to migrate module",
					logger.String("module", name),
					logger.String("error", err.Error()))
				continue
			}
		}

		if routeModule, ok := mod.(interface{ Routes(*router.RouterGroup) }); ok {
			routeModule.Routes(deps.Router)
		}

		initialized = append(initialized, mod)
	}

	return initialized
}
