package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookstack/core/app/authorization"
	"bookstack/core/app/users"
	"bookstack/core/config"
	"bookstack/core/email"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

const (
	RegisterEvent = "auth.register"
	LoginEvent    = "auth.login"
	LogoutEvent   = "auth.logout"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims carried in the access token. Role is embedded so request
// authorization does not need a database round trip.
type Claims struct {
	UserId uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db      *gorm.DB
	emitter *emitter.Emitter
	sender  email.Sender
	logger  logger.Logger
	config  *config.Config
}

func NewAuthService(db *gorm.DB, em *emitter.Emitter, sender email.Sender, log logger.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:      db,
		emitter: em,
		sender:  sender,
		logger:  log,
		config:  cfg,
	}
}

// Register creates a Member account and returns a fresh token.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing users.User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	var memberRole authorization.Role
	if err := s.db.Where("name = ?", authorization.RoleMember).First(&memberRole).Error; err != nil {
		return nil, fmt.Errorf("looking up member role: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := users.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		RoleId:   memberRole.ID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	user.Role = &memberRole

	s.emitter.Emit(RegisterEvent, &user)
	s.sendWelcomeEmail(&user)

	return s.issueToken(&user)
}

// Login verifies credentials and returns a token. Updates last_login.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user users.User
	if err := user.Preload(s.db).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		s.logger.Warn("failed to record last login",
			logger.Uint("user_id", user.Id),
			logger.String("error", err.Error()))
	}

	s.emitter.Emit(LoginEvent, &user)

	return s.issueToken(&user)
}

func (s *AuthService) issueToken(user *users.User) (*AuthResponse, error) {
	expiry := time.Duration(s.config.JWTExpiryHours) * time.Hour
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	claims := Claims{
		UserId: user.Id,
		Role:   roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.Id),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiry.Seconds()),
		User:        user.ToResponse(),
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(tokenString, s.config.JWTSecret)
}

// ValidateToken verifies a token against the given secret. Shared with
// the middleware so it can run without the full service.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sendWelcomeEmail(user *users.User) {
	if s.sender == nil {
		return
	}
	msg := email.Message{
		To:        user.Email,
		Subject:   "Welcome to BookStack",
		PlainText: fmt.Sprintf("Hi %s,\n\nYour account is ready. Sign in with your email address to start cataloguing.\n", user.Name),
	}
	// Email failures must not block registration
	if err := s.sender.Send(msg); err != nil {
		s.logger.Warn("failed to send welcome email",
			logger.String("email", user.Email),
			logger.String("error", err.Error()))
	}
}
