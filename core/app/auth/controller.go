package auth

import (
	"errors"
	"net/http"

	"bookstack/core/config"
	"bookstack/core/logger"
	"bookstack/core/router"
	"bookstack/core/types"
)

type AuthController struct {
	service *AuthService
	config  *config.Config
	logger  logger.Logger
}

func NewAuthController(service *AuthService, cfg *config.Config, log logger.Logger) *AuthController {
	return &AuthController{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

func (c *AuthController) Routes(router *router.RouterGroup) {
	authGroup := router.Group("/auth")
	authGroup.POST("/register", c.Register)
	authGroup.POST("/login", c.Login)
	authGroup.POST("/logout", c.Logout)
}

// Register godoc
// @Summary Register a new account
// @Description Create a Member account and return an access token
// @Tags Core/Auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "Register request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *router.Context) error {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	resp, err := c.service.Register(&req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return ctx.JSON(http.StatusConflict, types.ErrorResponse{Error: "Email already registered"})
		}
		c.logger.Error("registration failed", logger.String("error", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to register"})
	}

	c.setAuthCookie(ctx, resp)
	return ctx.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and return an access token
// @Tags Core/Auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *router.Context) error {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	resp, err := c.service.Login(&req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Invalid email or password"})
		}
		c.logger.Error("login failed", logger.String("error", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to log in"})
	}

	c.setAuthCookie(ctx, resp)
	return ctx.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out
// @Description Clear the auth cookie. Bearer tokens stay valid until expiry.
// @Tags Core/Auth
// @Produce json
// @Success 200 {object} types.SuccessResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *router.Context) error {
	ctx.SetCookie(c.config.CookieName, "", -1, "/", c.config.CookieSecure, true)
	return ctx.JSON(http.StatusOK, types.SuccessResponse{Success: true, Message: "Logged out"})
}

func (c *AuthController) setAuthCookie(ctx *router.Context, resp *AuthResponse) {
	ctx.SetCookie(c.config.CookieName, resp.AccessToken, int(resp.ExpiresIn), "/", c.config.CookieSecure, true)
}
