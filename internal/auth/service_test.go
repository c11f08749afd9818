package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorhub/mentorhub-server/internal/store"
	"github.com/mentorhub/mentorhub-server/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return NewService(st, jwtConfig)
}

func TestRegister_RejectsInvalidFields(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params RegisterParams
		want   error
	}{
		{"short name", RegisterParams{Name: "a", Email: "a@example.com", Password: "password123"}, ErrInvalidName},
		{"whitespace name", RegisterParams{Name: " a ", Email: "a@example.com", Password: "password123"}, ErrInvalidName},
		{"bad email", RegisterParams{Name: "Alice", Email: "not-an-email", Password: "password123"}, ErrInvalidEmail},
		{"short password", RegisterParams{Name: "Alice", Email: "a@example.com", Password: "12345"}, ErrInvalidPassword},
		{"admin role", RegisterParams{Name: "Alice", Email: "a@example.com", Password: "password123", Role: store.RoleAdmin}, ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegister_DefaultsToMenteeAndNormalizesEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, RegisterParams{
		Name:     "Asha",
		Email:    " Asha@Example.COM ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if user.Role != store.RoleMentee {
		t.Fatalf("expected mentee role, got %s", user.Role)
	}
	if user.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}

	// Re-registration collides because emails are normalized before storage.
	if _, _, err := svc.Register(ctx, RegisterParams{
		Name:     "Asha Again",
		Email:    "asha@example.com",
		Password: "password123",
	}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, registered, err := svc.Register(ctx, RegisterParams{
		Name:      "Vanya",
		Email:     "vanya@example.com",
		Password:  "password123",
		Role:      store.RoleMentor,
		Expertise: "Full-Stack",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "vanya@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, user, err := svc.Login(ctx, "vanya@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != registered.ID || claims.Role != string(store.RoleMentor) || claims.Name != "Vanya" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
