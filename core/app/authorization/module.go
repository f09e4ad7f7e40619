package authorization

import (
	"net/http"

	"gorm.io/gorm"

	"bookstack/core/logger"
	"bookstack/core/module"
	"bookstack/core/router"
	"bookstack/core/types"
)

type Module struct {
	module.DefaultModule
	DB      *gorm.DB
	service *AuthorizationService
	logger  logger.Logger
}

func Init(deps module.Dependencies) module.Module {
	return &Module{
		DB:      deps.DB,
		service: NewAuthorizationService(deps.DB, deps.Logger),
		logger:  deps.Logger,
	}
}

func (m *Module) Name() string {
	return "authorization"
}

func (m *Module) Migrate() error {
	if err := m.DB.AutoMigrate(&Role{}); err != nil {
		return err
	}
	return m.service.SeedRoles()
}

func (m *Module) Routes(group *router.RouterGroup) {
	rolesGroup := group.Group("/roles")
	rolesGroup.Use(RequireRole(RoleAdmin))
	rolesGroup.GET("", m.listRoles)
}

// @Summary List roles
// @Tags Authorization
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RoleResponse
// @Router /roles [get]
func (m *Module) listRoles(c *router.Context) error {
	roles, err := m.service.GetRoles()
	if err != nil {
		m.logger.Error("failed to list roles", logger.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch roles"})
	}
	out := make([]*RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, roles[i].ToResponse())
	}
	return c.JSON(http.StatusOK, out)
}
