package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
)

func newAuthService() *AuthService {
	return NewAuthService(memstore.NewSeeded(), "test-secret", time.Hour, zap.NewNop())
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(context.Background(), "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.UserType != domain.UserTypeAdmin {
		t.Errorf("user_type = %s, want admin", resp.UserType)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Sub != "admin_001" || claims.Email != "admin@test.com" {
		t.Errorf("claims = %+v", claims)
	}

	sess := svc.SessionFromClaims(claims, resp.AccessToken)
	if sess.UserType != domain.UserTypeAdmin || sess.Token != resp.AccessToken {
		t.Errorf("session = %+v", sess)
	}
}

func TestLoginCarriesHierarchyForMembers(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(context.Background(), "member@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Hierarchy != string(domain.HierarchyInfinity) {
		t.Errorf("hierarchy = %q, want infinity", claims.Hierarchy)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	tests := []struct {
		name            string
		email, password string
	}{
		{"wrong password", "admin@test.com", "wrong"},
		{"unknown email", "nobody@test.com", memstore.DemoPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			var unauthorized *domain.ErrUnauthorized
			if !errors.As(err, &unauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
			if unauthorized.Message != "Credenciais inválidas" {
				t.Errorf("message = %q", unauthorized.Message)
			}
		})
	}
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Login(context.Background(), "", "")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGuestLoginIssuesGuestToken(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.GuestLogin(context.Background())
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if resp.UserType != domain.UserTypeGuest {
		t.Errorf("user_type = %s, want guest", resp.UserType)
	}
	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserType != string(domain.UserTypeGuest) {
		t.Errorf("claims user_type = %q", claims.UserType)
	}
}

func TestValidateAccessTokenRejectsTampering(t *testing.T) {
	svc := newAuthService()
	other := NewAuthService(memstore.NewSeeded(), "other-secret", time.Hour, zap.NewNop())

	resp, err := other.Login(context.Background(), "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = svc.ValidateAccessToken(resp.AccessToken)
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("foreign signature: err = %v, want ErrUnauthorized", err)
	}

	_, err = svc.ValidateAccessToken("not-a-token")
	if !errors.As(err, &unauthorized) {
		t.Errorf("garbage token: err = %v, want ErrUnauthorized", err)
	}
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(memstore.NewSeeded(), "test-secret", -time.Minute, zap.NewNop())

	resp, err := svc.Login(context.Background(), "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, err = svc.ValidateAccessToken(resp.AccessToken)
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
