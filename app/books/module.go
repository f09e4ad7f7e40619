package books

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *BookService
	Controller *BookController
}

// Init creates and initializes the Book module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewBookService(deps.DB, deps.Emitter, deps.Storage, deps.Logger)
	controller := NewBookController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "books"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Book{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Book{},
	}
}
