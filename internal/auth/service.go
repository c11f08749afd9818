package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists is returned when registering with an existing email.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidEmail is returned when the email doesn't meet constraints.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName is returned when the name doesn't meet constraints.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRole is returned for roles outside mentor/mentee.
	ErrInvalidRole = errors.New("invalid role")
)

// RegisterParams carries the registration form fields.
type RegisterParams struct {
	Name      string
	Email     string
	Password  string
	Role      store.Role
	Expertise string
	Bio       string
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with a hashed password and returns a JWT token.
func (s *Service) Register(ctx context.Context, p RegisterParams) (string, *store.User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if len(p.Name) < 2 || len(p.Name) > 64 {
		return "", nil, ErrInvalidName
	}
	if !strings.Contains(p.Email, "@") || len(p.Email) > 254 {
		return "", nil, ErrInvalidEmail
	}
	if len(p.Password) < 6 {
		return "", nil, ErrInvalidPassword
	}
	switch p.Role {
	case "":
		p.Role = store.RoleMentee
	case store.RoleMentor, store.RoleMentee:
	default:
		// Admin accounts are provisioned out of band, never self-registered.
		return "", nil, ErrInvalidRole
	}

	existing, err := s.store.GetUserByEmail(ctx, p.Email)
	if err == nil && existing != nil {
		return "", nil, ErrEmailExists
	}

	hashed, err := HashPassword(p.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &store.User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hashed,
		Role:         p.Role,
		Expertise:    strings.TrimSpace(p.Expertise),
		Bio:          strings.TrimSpace(p.Bio),
	})
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
