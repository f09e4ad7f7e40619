package module

// CoreModuleProvider supplies the framework modules (auth, users, search, ...).
type CoreModuleProvider interface {
	GetCoreModules(deps Dependencies) map[string]Module
}

// AppModuleProvider supplies the application's domain modules.
type AppModuleProvider interface {
	GetAppModules(deps Dependencies) map[string]Module
}

// Orchestrator initializes module sets from a provider in a fixed order:
// core modules first, then app modules, so app migrations can rely on core
// tables existing.
type Orchestrator struct {
	initializer *Initializer
	core        CoreModuleProvider
	app         AppModuleProvider
}

// NewOrchestrator creates an orchestrator over both providers. Either provider
// may be nil.
func NewOrchestrator(initializer *Initializer, core CoreModuleProvider, app AppModuleProvider) *Orchestrator {
	return &Orchestrator{
		initializer: initializer,
		core:        core,
		app:         app,
	}
}

// InitializeCore initializes the core module set.
func (o *Orchestrator) InitializeCore(deps Dependencies) []Module {
	if o.core == nil {
		return nil
	}
	return o.initializer.Initialize(o.core.GetCoreModules(deps), deps)
}

// InitializeApp initializes the application module set.
func (o *Orchestrator) InitializeApp(deps Dependencies) []Module {
	if o.app == nil {
		return nil
	}
	return o.initializer.Initialize(o.app.GetAppModules(deps), deps)
}
