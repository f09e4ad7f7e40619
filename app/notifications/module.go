package notifications

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *NotificationService
	Controller *NotificationController
}

// Init creates and initializes the Notification module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewNotificationService(deps.DB, deps.Emitter, deps.Logger)
	controller := NewNotificationController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "notifications"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Notification{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Notification{},
	}
}
