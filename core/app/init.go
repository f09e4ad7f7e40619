package app

import (
	"bookstack/core/app/auth"
	"bookstack/core/app/authorization"
	"bookstack/core/app/search"
	"bookstack/core/app/users"
	"bookstack/core/module"
)

// CoreModules provides the framework modules shared by every
// deployment: authorization, auth, users and the global search.
type CoreModules struct {
	registry *search.SearchRegistry
}

func NewCoreModules(registry *search.SearchRegistry) *CoreModules {
	return &CoreModules{registry: registry}
}

func (p *CoreModules) GetCoreModules(deps module.Dependencies) map[string]module.Module {
	return map[string]module.Module{
		"authorization": authorization.Init(deps),
		"auth":          auth.Init(deps),
		"users":         users.Init(deps),
		"search":        search.Init(deps, p.registry),
	}
}
