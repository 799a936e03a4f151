package auth

import (
	"errors"
	"net/http"
	"time"

	"archive-service/internal/models"
	"archive-service/internal/repositories"
)

// ErrUnauthenticated means no cookie on the request resolved to a live
// session of either kind.
var ErrUnauthenticated = errors.New("no resolvable session")

// sessionCookieNames are the legacy cookie name variants carrying a
// session token, in priority order.
var sessionCookieNames = []string{"employee-session", "session-token", "session_token"}

// Resolver turns request cookies into a principal. Employee sessions are
// tried first across every candidate token; only when none resolves does
// legacy-user resolution run. An expired session row falls through
// exactly like an absent one.
type Resolver struct {
	sessions repositories.SessionRepository
}

// NewResolver constructs a Resolver.
func NewResolver(sessions repositories.SessionRepository) *Resolver {
	return &Resolver{sessions: sessions}
}

// ResolveRequest resolves the request to a principal or returns
// ErrUnauthenticated. Failures other than a missing or expired session
// are surfaced as-is.
func (r *Resolver) ResolveRequest(req *http.Request, now time.Time) (models.Principal, error) {
	tokens := candidateTokens(req)
	if len(tokens) == 0 {
		return models.Principal{}, ErrUnauthenticated
	}

	for _, token := range tokens {
		principal, err := r.sessions.EmployeeByToken(req.Context(), token, now)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, repositories.ErrSessionNotFound) {
			return models.Principal{}, err
		}
	}

	for _, token := range tokens {
		principal, err := r.sessions.UserByToken(req.Context(), token, now)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, repositories.ErrSessionNotFound) {
			return models.Principal{}, err
		}
	}

	return models.Principal{}, ErrUnauthenticated
}

func candidateTokens(req *http.Request) []string {
	tokens := make([]string, 0, len(sessionCookieNames))
	seen := map[string]struct{}{}
	for _, name := range sessionCookieNames {
		cookie, err := req.Cookie(name)
		if err != nil || cookie.Value == "" {
			continue
		}
		if _, dup := seen[cookie.Value]; dup {
			continue
		}
		seen[cookie.Value] = struct{}{}
		tokens = append(tokens, cookie.Value)
	}
	return tokens
}
