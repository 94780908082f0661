package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// HeaderToken is the request header carrying the session token.
const HeaderToken = "x-auth-token"

// contextKey is unexported so only this package can read or write the
// request identity values.
type contextKey string

const (
	tokenKey  contextKey = "token"
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// TokenResolver is the slice of the token store the gates need.
type TokenResolver interface {
	LookupValid(ctx context.Context, token string) (int64, error)
	ResolveRole(ctx context.Context, token string) (*model.Role, error)
}

// ProfileGate reads the enabled/accepted pair of a role profile.
type ProfileGate interface {
	Flags(ctx context.Context, kind repository.ProfileKind, userID int64) (repository.ProfileFlags, error)
}

// Middleware implements the route-group gates. The chain order is
// fixed: RequireToken, then the accepted and enabled gates, then role
// resolution and the role check.
type Middleware struct {
	tokens   TokenResolver
	profiles ProfileGate
	logger   *slog.Logger
}

func NewMiddleware(tokens TokenResolver, profiles ProfileGate, logger *slog.Logger) *Middleware {
	return &Middleware{tokens: tokens, profiles: profiles, logger: logger}
}

// RequireToken authenticates the request from the x-auth-token header.
// A missing header and an unknown or revoked token both stop the chain
// with 401; handlers behind this gate can rely on a user id in context.
func (m *Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(HeaderToken)
		if token == "" {
			m.writeGate(w, http.StatusUnauthorized, apperror.MissingCredential())
			return
		}

		userID, err := m.tokens.LookupValid(r.Context(), token)
		if err != nil {
			if errors.Is(err, apperror.ErrInvalidCredential) {
				m.writeGate(w, http.StatusUnauthorized, err)
				return
			}
			m.logger.Error("token lookup failed", slog.String("error", err.Error()))
			m.writeGate(w, http.StatusInternalServerError, err)
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		ctx = context.WithValue(ctx, userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAccepted blocks profiles still waiting for admin approval
// with 405. A missing profile row gets the same status with the
// account-not-found message.
func (m *Middleware) RequireAccepted(kind repository.ProfileKind) func(http.Handler) http.Handler {
	return m.flagGate(kind, http.StatusMethodNotAllowed, apperror.RegistrationPending(),
		func(f repository.ProfileFlags) bool { return f.Accepted })
}

// RequireEnabled blocks administratively disabled profiles with 406.
func (m *Middleware) RequireEnabled(kind repository.ProfileKind) func(http.Handler) http.Handler {
	return m.flagGate(kind, http.StatusNotAcceptable, apperror.AccountDisabled(),
		func(f repository.ProfileFlags) bool { return f.Enabled })
}

func (m *Middleware) flagGate(kind repository.ProfileKind, status int, gateErr error, pass func(repository.ProfileFlags) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				m.writeGate(w, http.StatusUnauthorized, apperror.MissingCredential())
				return
			}

			flags, err := m.profiles.Flags(r.Context(), kind, userID)
			if err != nil {
				if errors.Is(err, apperror.ErrAccountNotFound) {
					m.writeGate(w, status, err)
					return
				}
				m.logger.Error("profile flags lookup failed", slog.String("error", err.Error()))
				m.writeGate(w, http.StatusInternalServerError, err)
				return
			}
			if !pass(flags) {
				m.writeGate(w, status, gateErr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveRole loads the caller's role into context. The token was
// already validated upstream, so any failure here is a resolution
// fault reported as 501.
func (m *Middleware) ResolveRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromContext(r.Context())
		if !ok {
			m.writeGate(w, http.StatusUnauthorized, apperror.MissingCredential())
			return
		}

		role, err := m.tokens.ResolveRole(r.Context(), token)
		if err != nil {
			m.logger.Error("role resolution failed", slog.String("error", err.Error()))
			m.writeGate(w, http.StatusNotImplemented, apperror.Resolution(err))
			return
		}

		ctx := context.WithValue(r.Context(), roleKey, role.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects callers whose resolved role differs from the
// route group's role with 403.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := RoleFromContext(r.Context())
			if !ok || got != role {
				m.writeGate(w, http.StatusForbidden, apperror.ForbiddenRole())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GateForRole returns the full gate chain of a role-scoped route group
// in the canonical order.
func (m *Middleware) GateForRole(role string) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		func(next http.Handler) http.Handler { return m.RequireToken(next) },
	}
	if role != model.RoleAdmin {
		kind := repository.KindForRole(role)
		chain = append(chain, m.RequireAccepted(kind), m.RequireEnabled(kind))
	}
	chain = append(chain,
		func(next http.Handler) http.Handler { return m.ResolveRole(next) },
		m.RequireRole(role),
	)
	return chain
}

// writeGate emits the standard response envelope for a rejected
// request. The gates write their own responses instead of reusing the
// handler package's helper to keep the import direction one-way.
func (m *Middleware) writeGate(w http.ResponseWriter, status int, err error) {
	message := "Hiba a szerver működésében"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
		Data    any      `json:"data"`
	}{Code: status, Message: message, Errors: []string{}}
	if encodeErr := json.NewEncoder(w).Encode(payload); encodeErr != nil {
		m.logger.Error("failed to encode gate response", slog.String("error", encodeErr.Error()))
	}
}

// TokenFromContext returns the validated session token of the request.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// RoleFromContext returns the resolved role name.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}
