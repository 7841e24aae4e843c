package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
)

const bearerChallenge = `Bearer realm="loan-docs"`

// Middleware checks bearer tokens against the route policy.
type Middleware struct {
	secret []byte
	policy Policy
	logger *log.Logger
}

// NewMiddleware constructs the auth middleware. An empty secret turns
// authentication off; logger may be nil.
func NewMiddleware(secret []byte, policy Policy, logger *log.Logger) *Middleware {
	return &Middleware{secret: secret, policy: policy, logger: logger}
}

// Enabled reports whether requests are authenticated.
func (m *Middleware) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Wrap puts the caller's role and subject on the request context before next
// runs, or answers 401/403.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseJWT(bearerToken(r), m.secret)
		if err != nil {
			challenge := bearerChallenge
			if !errors.Is(err, ErrEmptyToken) {
				challenge += `, error="invalid_token"`
			}
			w.Header().Set("WWW-Authenticate", challenge)
			m.deny(r, http.StatusUnauthorized, err.Error())
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !role.Satisfies(required) {
			m.deny(r, http.StatusForbidden, "subject="+claims.Subject+" role="+string(role)+" required="+string(required))
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), role, claims.Subject)))
	})
}

func (m *Middleware) deny(r *http.Request, status int, reason string) {
	if m.logger == nil {
		return
	}
	m.logger.Printf("auth denied: method=%s path=%s status=%d reason=%s", r.Method, r.URL.Path, status, reason)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
