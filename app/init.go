package app

import (
	"bookstack/app/activities"
	"bookstack/app/books"
	"bookstack/app/notifications"
	"bookstack/app/search"
	"bookstack/app/settings"
	"bookstack/app/subjects"
	"bookstack/app/tags"
	"bookstack/app/transactions"
	globalsearch "bookstack/core/app/search"
	"bookstack/core/emitter"
	"bookstack/core/module"
	"bookstack/core/websocket"
)

// AppModules provides the application's domain modules.
type AppModules struct{}

func NewAppModules() *AppModules {
	return &AppModules{}
}

func (p *AppModules) GetAppModules(deps module.Dependencies) map[string]module.Module {
	return map[string]module.Module{
		"activities":         activities.Init(deps),
		"books":              books.Init(deps),
		"notifications":      notifications.Init(deps),
		"settings":           settings.Init(deps),
		"subjects":           subjects.Init(deps),
		"tags":               tags.Init(deps),
		"transactions":       transactions.Init(deps),
		"transaction-search": search.Init(deps),
	}
}

// GetSearchRegistry declares which modules the global search covers.
// Books and transactions carry a user_id column and are scoped to the
// caller; the subject and tag catalogs are shared.
func GetSearchRegistry() *globalsearch.SearchRegistry {
	registry := globalsearch.NewSearchRegistry()

	registry.RegisterSimple("books", globalsearch.SimpleSearchConfig{
		Table:        "books",
		Fields:       []string{"title", "author", "publisher", "isbn"},
		TenantScoped: true,
	})

	registry.RegisterSimple("transactions", globalsearch.SimpleSearchConfig{
		Table:        "transactions",
		Fields:       []string{"title", "remark", "footnote", "keywords", "summary", "conclusion"},
		TenantScoped: true,
	})

	registry.RegisterSimple("subjects", globalsearch.SimpleSearchConfig{
		Table:  "subjects",
		Fields: []string{"name", "description"},
	})

	registry.RegisterSimple("tags", globalsearch.SimpleSearchConfig{
		Table:  "tags",
		Fields: []string{"name", "description"},
	})

	return registry
}

// Events relayed to websocket clients so the UI can show live progress.
var relayedEvents = []string{
	subjects.ImportProgressEvent,
	tags.ImportProgressEvent,
}

// RelayEvents forwards background job events to connected websocket
// clients.
func RelayEvents(em *emitter.Emitter, hub *websocket.Hub) {
	for _, event := range relayedEvents {
		event := event
		em.On(event, func(data any) {
			hub.Broadcast(websocket.Event{
				Type:    "progress",
				Channel: event,
				Payload: data,
			})
		})
	}
}
