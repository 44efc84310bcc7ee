// Package session maps department credentials to signed bearer tokens
// carrying the actor's identity and derived role.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ghermet/factureflow/internal/auth"
	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	// ErrBadCredentials covers both an unknown department and a wrong
	// secret; callers get no hint which.
	ErrBadCredentials = errors.New("department or secret is incorrect")
	ErrInvalidToken   = errors.New("session token is invalid or expired")
)

// Claims is the JWT payload carried by a session token.
type Claims struct {
	DepartmentID string      `json:"department_id"`
	Name         string      `json:"name"`
	Role         models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates session tokens.
type Manager struct {
	deptRepo *repository.DepartmentRepository
	verifier auth.Verifier
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a new session manager
func NewManager(
	deptRepo *repository.DepartmentRepository,
	verifier auth.Verifier,
	jwtSecret string,
	ttl time.Duration,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		deptRepo: deptRepo,
		verifier: verifier,
		secret:   []byte(jwtSecret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the department's secret and, on success, returns the
// authenticated user and a bearer token. On failure no state changes.
func (m *Manager) Login(departmentID, secret string) (*models.CurrentUser, string, error) {
	dept, err := m.deptRepo.GetByID(departmentID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up department: %w", err)
	}
	if dept == nil || !m.verifier.Verify(dept.Secret, secret) {
		m.logger.Warn("Login refused", zap.String("department", departmentID))
		return nil, "", ErrBadCredentials
	}

	user := &models.CurrentUser{
		DepartmentID: dept.ID,
		Name:         dept.Name,
		Role:         models.RoleFor(dept.ID),
	}

	now := m.now()
	claims := Claims{
		DepartmentID: user.DepartmentID,
		Name:         user.Name,
		Role:         user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	m.logger.Info("Login succeeded",
		zap.String("department", user.DepartmentID),
		zap.String("role", string(user.Role)))
	return user, token, nil
}

// Verify parses a bearer token back into the acting user.
func (m *Manager) Verify(tokenString string) (*models.CurrentUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// The role is always re-derived from the department id rather than
	// trusted from the token.
	return &models.CurrentUser{
		DepartmentID: claims.DepartmentID,
		Name:         claims.Name,
		Role:         models.RoleFor(claims.DepartmentID),
	}, nil
}
