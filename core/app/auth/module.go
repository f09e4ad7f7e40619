package auth

import (
	"gorm.io/gorm"

	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *AuthService
	Controller *AuthController
}

func Init(deps module.Dependencies) module.Module {
	service := NewAuthService(deps.DB, deps.Emitter, deps.EmailSender, deps.Logger, deps.Config)
	controller := NewAuthController(service, deps.Config, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	// User table is migrated by the users module
	return nil
}
