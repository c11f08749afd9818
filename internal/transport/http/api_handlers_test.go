package http

import (
	"net/http"
	"testing"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	var reg AuthResponse
	status := env.doJSON(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Name:      "Grace",
		Email:     "grace@example.com",
		Password:  "secret123",
		Role:      "mentor",
		Expertise: "distributed systems",
	}, &reg)
	if status != http.StatusCreated {
		t.Fatalf("register status: %d", status)
	}
	if reg.Token == "" {
		t.Fatal("expected token in register response")
	}
	if reg.User.Role != "mentor" || reg.User.Expertise != "distributed systems" {
		t.Fatalf("unexpected user in register response: %+v", reg.User)
	}

	var login AuthResponse
	status = env.doJSON(t, http.MethodPost, "/api/login", "", LoginRequest{
		Email:    "grace@example.com",
		Password: "secret123",
	}, &login)
	if status != http.StatusOK {
		t.Fatalf("login status: %d", status)
	}

	var me UserResponse
	status = env.doJSON(t, http.MethodGet, "/api/me", login.Token, nil, &me)
	if status != http.StatusOK {
		t.Fatalf("me status: %d", status)
	}
	if me.ID != reg.User.ID || me.Email != "grace@example.com" {
		t.Fatalf("unexpected me response: %+v", me)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "First", "taken@example.com", store.RoleMentee)

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Name:     "Second",
		Email:    "Taken@Example.com",
		Password: "secret123",
	}, &errResp)
	if status != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", status)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Grace", "grace@example.com", store.RoleMentor)

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodPost, "/api/login", "", LoginRequest{
		Email:    "grace@example.com",
		Password: "wrong-password",
	}, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", status)
	}
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	var errResp ErrorResponse
	status := env.doJSON(t, http.MethodGet, "/api/me", "", nil, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", status)
	}
}
