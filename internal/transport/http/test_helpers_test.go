package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/auth"
	"github.com/mentorhub/mentorhub-server/internal/config"
	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/store"
	"github.com/mentorhub/mentorhub-server/internal/store/sqlite"
)

// testEnv bundles everything an HTTP-level test needs.
type testEnv struct {
	ts    *httptest.Server
	st    store.Store
	authS *auth.Service
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	})

	hub := core.NewHub(st, st, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := NewServer(hub, authService, st, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, st: st, authS: authService}
}

// registerUser creates a user through the auth service and returns the
// stored user plus a valid token.
func (env *testEnv) registerUser(t *testing.T, name, email string, role store.Role) (*store.User, string) {
	t.Helper()

	token, user, err := env.authS.Register(context.Background(), auth.RegisterParams{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user, token
}

// doJSON performs a request with an optional bearer token and JSON body,
// decoding the response into out when it is non-nil.
func (env *testEnv) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, env.ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
