package transactions

import (
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *TransactionService
	Controller *TransactionController
}

// Init creates and initializes the Transaction module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewTransactionService(deps.DB, deps.Emitter, deps.Storage, deps.Logger)
	controller := NewTransactionController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "transactions"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Transaction{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Transaction{},
	}
}
