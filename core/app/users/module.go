package users

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/module"
	"bookstack/core/router"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *UserService
	Controller *UserController
}

// Init creates and initializes the User module with all dependencies
func Init(deps module.Dependencies) module.Module {
	service := NewUserService(deps.DB, deps.Emitter, deps.Storage, deps.Logger)
	controller := NewUserController(service, deps.Storage, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Name() string {
	return "users"
}

// Routes registers the module routes
func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Init() error {
	return nil
}

func (m *Module) Migrate() error {
	if err := m.DB.AutoMigrate(&User{}); err != nil {
		return err
	}
	return m.SeedDefaultAdmin()
}

// SeedDefaultAdmin creates the bootstrap admin account on an empty
// users table. The password is meant to be changed on first login.
func (m *Module) SeedDefaultAdmin() error {
	var count int64
	if err := m.DB.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var adminRole authorization.Role
	if err := m.DB.Where("name = ? AND is_system = ?", authorization.RoleAdmin, true).First(&adminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	defaultUser := User{
		Name:     "Administrator",
		Email:    "admin@localhost",
		Password: string(hashedPassword),
		RoleId:   adminRole.ID,
	}

	return m.DB.Create(&defaultUser).Error
}

func (m *Module) GetModels() []any {
	return []any{
		&User{},
	}
}
