package module

import (
	"fmt"
	"sync"

	"bookstack/core/config"
	"bookstack/core/email"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/storage"

	"gorm.io/gorm"
)

// Module is the unit of application composition. Optional capabilities
// (Init, Migrate, Routes) are discovered by interface assertion during
// initialization.
type Module interface {
	Name() string
}

// Dependencies is the bundle handed to every module at construction time.
type Dependencies struct {
	DB          *gorm.DB
	Router      *router.RouterGroup
	Logger      logger.Logger
	Emitter     *emitter.Emitter
	Storage     *storage.ActiveStorage
	EmailSender email.Sender
	Config      *config.Config
}

// DefaultModule provides a no-op base so modules only implement what they need.
type DefaultModule struct{}

func (DefaultModule) Name() string { return "" }

var (
	registryMu sync.Mutex
	registry   = make(map[string]Module)
)

// RegisterModule records a module in the global registry. Re-registering a
// name is an error.
func RegisterModule(name string, mod Module) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	registry[name] = mod
	return nil
}

// GetModule returns a registered module by name.
func GetModule(name string) (Module, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	mod, ok := registry[name]
	return mod, ok
}
