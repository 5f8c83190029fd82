// Package service provides the business logic layer (use cases):
// authentication, the member directory, the approval workflow, admin
// tooling and chat.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

// AuthService issues and validates access tokens for the members book
// API.
type AuthService struct {
	creds     port.CredentialStore
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

func NewAuthService(creds port.CredentialStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	UserType  string `json:"user_type"`
	Hierarchy string `json:"hierarchy,omitempty"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if email == "" || password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email e senha são obrigatórios"}
	}

	cred, err := s.creds.GetCredentialByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	if cred == nil {
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("email", email))
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	token, err := s.signAccessToken(cred.UserID, cred.Email, cred.Name, cred.UserType, cred.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", cred.UserID),
		zap.String("user_type", string(cred.UserType)),
	)

	return &domain.LoginResponse{AccessToken: token, UserType: cred.UserType}, nil
}

// GuestLogin issues a visitor token with read-only permissions. No
// credentials involved.
func (s *AuthService) GuestLogin(ctx context.Context) (*domain.LoginResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.GuestLogin")
	defer span.End()

	guestID := "guest_" + uuid.New().String()
	token, err := s.signAccessToken(guestID, "guest@test.com", "Visitante", domain.UserTypeGuest, "")
	if err != nil {
		return nil, fmt.Errorf("sign guest token: %w", err)
	}

	s.logger.Info("guest logged in", zap.String("user_id", guestID))
	return &domain.LoginResponse{AccessToken: token, UserType: domain.UserTypeGuest}, nil
}

// ValidateAccessToken checks signature and expiry and returns the
// claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}

	return claims, nil
}

// SessionFromClaims rebuilds the session a token represents.
func (s *AuthService) SessionFromClaims(claims *JWTClaims, token string) *domain.Session {
	return &domain.Session{
		UserID:    claims.Sub,
		Email:     claims.Email,
		Name:      claims.Name,
		UserType:  domain.UserType(claims.UserType),
		Hierarchy: domain.MemberHierarchy(claims.Hierarchy),
		Token:     token,
		CreatedAt: claims.IssuedAt.Time,
	}
}

func (s *AuthService) signAccessToken(userID, email, name string, userType domain.UserType, hierarchy domain.MemberHierarchy) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:       userID,
		Email:     email,
		Name:      name,
		UserType:  string(userType),
		Hierarchy: string(hierarchy),
		Type:      "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "members-book-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
