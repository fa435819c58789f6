package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

type adminAuth struct {
	tokens [][]byte
}

func newAdminAuth(tokens []string) *adminAuth {
	a := &adminAuth{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			a.tokens = append(a.tokens, []byte(t))
		}
	}
	return a
}

// require rejects requests without a bearer token (401) or with a token that
// is not an admin token (403). It runs before any handler touches the store.
func (a *adminAuth) require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "Admin access required")
				return
			}
			if !a.isAdmin(token) {
				writeErrorCode(w, http.StatusForbidden, codeForbidden, "Only admins can "+action)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isAdmin compares against every configured token in constant time.
func (a *adminAuth) isAdmin(token string) bool {
	got := []byte(token)
	match := 0
	for _, t := range a.tokens {
		match |= subtle.ConstantTimeCompare(got, t)
	}
	return match == 1
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
