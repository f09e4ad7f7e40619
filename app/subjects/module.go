package subjects

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *SubjectService
	Controller *SubjectController
}

// Init creates and initializes the Subject module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewSubjectService(deps.DB, deps.Emitter, deps.Logger)
	controller := NewSubjectController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "subjects"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Subject{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Subject{},
	}
}
