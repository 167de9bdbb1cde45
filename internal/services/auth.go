package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

const (
	adminUserName     = "admin"
	passwordCharset   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"
	generatedPassword = 12
	bcryptCost        = 10
)

type UserStore interface {
	GetByUserName(ctx context.Context, name string) (*models.User, error)
	HasRole(ctx context.Context, role models.UserRole) (bool, error)
	Create(ctx context.Context, u models.User) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Claims is the payload of a session token.
type Claims struct {
	UserName string          `json:"user_name"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type Session struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewAuthService signs tokens with secret. An empty secret is replaced by a
// random one, which invalidates sessions on every restart.
func NewAuthService(st UserStore, secret string, ttl time.Duration) (*AuthService, error) {
	logger := zap.S().Named("auth_service")

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		logger.Warn("no jwt secret configured, sessions will not survive a restart")
	}

	return &AuthService{
		store:  st,
		secret: key,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Login checks the credentials and opens a session. Unknown users and wrong
// passwords give the same error.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*Session, error) {
	if userName == "" || password == "" {
		return nil, srvErrors.NewValidationError("Username and password are required")
	}

	user, err := s.store.GetByUserName(ctx, userName)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			return nil, srvErrors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, srvErrors.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !user.IsEnabled {
		return nil, srvErrors.NewAccountDisabledError()
	}

	now := time.Now()
	token, expiresAt, err := s.issue(user, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warnw("failed to record last login", "user", user.UserName, "error", err)
	} else {
		user.LastLogin = &now
	}

	s.logger.Infow("user logged in", "user", user.UserName, "role", user.Role)
	return &Session{User: *user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) issue(user *models.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserName: user.UserName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserName,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateToken parses a session token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// SeedAdmin creates the "admin" user with a random password when no admin
// exists. It returns the generated password, or "" when nothing was created.
func (s *AuthService) SeedAdmin(ctx context.Context) (string, error) {
	exists, err := s.store.HasRole(ctx, models.UserRoleAdmin)
	if err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}

	password, err := randomPassword(generatedPassword)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.store.Create(ctx, models.User{
		UserName:     adminUserName,
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
		FirstName:    "System",
		LastName:     "Administrator",
		IsEnabled:    true,
		CreatedBy:    "system",
	}); err != nil {
		return "", err
	}

	s.logger.Infow("admin user created", "user", adminUserName)
	return password, nil
}

func randomPassword(n int) (string, error) {
	limit := big.NewInt(int64(len(passwordCharset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b[i] = passwordCharset[idx.Int64()]
	}
	return string(b), nil
}
