package settings

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *SettingsService
	Controller *SettingsController
}

// Init creates and initializes the Settings module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewSettingsService(deps.DB, deps.Emitter, deps.Logger)
	controller := NewSettingsController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "settings"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Setting{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Setting{},
	}
}
