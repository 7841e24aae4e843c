package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) == "" && r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	mw := NewMiddleware([]byte("test-secret"), NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ChallengeHeader(t *testing.T) {
	handler := NewMiddleware([]byte("test-secret"), NewDefaultPolicy(nil, nil), nil).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("WWW-Authenticate"); got != `Bearer realm="loan-docs"` {
		t.Fatalf("unexpected challenge %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/schedules", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, []byte("other-secret"), "admin", time.Hour))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Header().Get("WWW-Authenticate"), `error="invalid_token"`) {
		t.Fatalf("expected invalid_token challenge, got %d %q", resp.Code, resp.Header().Get("WWW-Authenticate"))
	}
}

func TestRoleLadder(t *testing.T) {
	role, ok := NormalizeRole(" Operator ")
	if !ok || role != RoleOperator {
		t.Fatalf("expected operator, got %q ok=%v", role, ok)
	}
	if _, ok := NormalizeRole("auditor"); ok {
		t.Fatalf("unknown role accepted")
	}
	cases := []struct {
		role, required Role
		want           bool
	}{
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleOperator, false},
		{RoleOperator, RoleViewer, true},
		{RoleAdmin, RoleOperator, true},
		{Role("auditor"), RoleViewer, false},
		{Role(""), Role(""), false},
	}
	for _, tc := range cases {
		if got := tc.role.Satisfies(tc.required); got != tc.want {
			t.Fatalf("%q satisfies %q: expected %v", tc.role, tc.required, tc.want)
		}
	}
}

func TestAuthMiddleware_ViewerForbiddenDocumentGenerate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "viewer", time.Hour)
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/contract", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_RolesAllowed(t *testing.T) {
	secret := []byte("test-secret")
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil).Wrap(okHandler())
	cases := []struct {
		role, method, path string
	}{
		{"viewer", http.MethodPost, "/api/v1/schedules"},
		{"viewer", http.MethodPost, "/api/v1/schedules/export.xlsx"},
		{"viewer", http.MethodGet, "/api/v1/documents"},
		{"operator", http.MethodPost, "/api/v1/documents/guarantee"},
		{"admin", http.MethodPost, "/api/v1/documents/contract"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, tc.role, time.Hour))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s %s: expected 200, got %d", tc.role, tc.method, tc.path, resp.Code)
		}
	}
}

func TestAuthMiddleware_ExemptAndDisabled(t *testing.T) {
	handler := NewMiddleware([]byte("test-secret"), NewDefaultPolicy([]string{"/healthz"}, nil), nil).Wrap(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected exempt path to pass, got %d", resp.Code)
	}

	disabled := NewMiddleware(nil, NewDefaultPolicy(nil, nil), nil).Wrap(okHandler())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/documents/contract", nil)
	resp = httptest.NewRecorder()
	disabled.ServeHTTP(resp, req)
	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected handler to run without identity, got %d", resp.Code)
	}
}

func TestParseJWTRejects(t *testing.T) {
	secret := []byte("test-secret")
	if _, err := ParseJWT("", secret); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := ParseJWT("x", nil); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
	if _, err := ParseJWT(mustToken(t, secret, "root", time.Hour), secret); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := ParseJWT(mustToken(t, secret, "viewer", -time.Minute), secret); err == nil {
		t.Fatalf("expected expired token error")
	}
	if _, err := ParseJWT(mustToken(t, []byte("other"), "viewer", time.Hour), secret); err == nil {
		t.Fatalf("expected signature error")
	}
}

func mustToken(t *testing.T, secret []byte, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
