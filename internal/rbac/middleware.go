package rbac

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Authorizer returns the grants of a user. *Resolver satisfies it.
type Authorizer interface {
	Grants(ctx context.Context, userID int64) (Grants, error)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Authorizer Authorizer
	Logger     *slog.Logger
}

// RequireAny ensures the current actor has at least one of the required capabilities.
func (m Middleware) RequireAny(caps ...string) func(http.Handler) http.Handler {
	return m.require("rbac require any", normalizeCapabilities(caps), hasAnyCapability)
}

// RequireAll ensures the current actor has all required capabilities.
func (m Middleware) RequireAll(caps ...string) func(http.Handler) http.Handler {
	return m.require("rbac require all", normalizeCapabilities(caps), hasAllCapabilities)
}

func (m Middleware) require(op string, required []string, check func(Grants, []string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor := shared.ActorFromContext(r.Context())
			if !actor.Authenticated || actor.ID <= 0 {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			grants, err := m.Authorizer.Grants(r.Context(), actor.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error(op, slog.Int64("user_id", actor.ID), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if check(grants, required) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

func normalizeCapabilities(caps []string) []string {
	unique := make(map[string]struct{}, len(caps))
	normalized := make([]string, 0, len(caps))
	for _, c := range caps {
		c = strings.TrimSpace(strings.ToLower(c))
		if c == "" {
			continue
		}
		if _, dup := unique[c]; dup {
			continue
		}
		unique[c] = struct{}{}
		normalized = append(normalized, c)
	}
	return normalized
}

func hasAnyCapability(grants Grants, required []string) bool {
	for _, c := range required {
		if grants.Has(c) {
			return true
		}
	}
	return false
}

func hasAllCapabilities(grants Grants, required []string) bool {
	for _, c := range required {
		if !grants.Has(c) {
			return false
		}
	}
	return true
}
