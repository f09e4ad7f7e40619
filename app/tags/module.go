package tags

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *TagService
	Controller *TagController
}

func Init(deps module.Dependencies) module.Module {
	service := NewTagService(deps.DB, deps.Emitter, deps.Logger)
	controller := NewTagController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "tags"
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Tag{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Tag{},
	}
}
