package activities

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *ActivityService
	Controller *ActivityController
}

// Init creates and initializes the Activity module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewActivityService(deps.DB, deps.Emitter, deps.Logger)
	controller := NewActivityController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "activities"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Activity{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Activity{},
	}
}
