package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/token"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog mangles multi-line stack traces
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// resolveClaims reads the access-token cookie and falls back to the refresh
// token exactly once, re-issuing a fresh access cookie on that path. A nil
// return means the request carries no usable session.
func (h *Handler) resolveClaims(w http.ResponseWriter, r *http.Request) *token.Claims {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		if claims, err := h.tokens.Parse(cookie.Value); err == nil {
			return claims
		}
	}

	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		return nil
	}

	claims, err := h.tokens.Parse(cookie.Value)
	if err != nil {
		return nil
	}

	access, accessExp, err := h.tokens.SignAccessToken(token.Claims{
		UserID: claims.UserID,
		Phone:  claims.Phone,
		Role:   claims.Role,
	})
	if err != nil {
		slog.Error("failed to re-issue access token", "error", err)
		return nil
	}
	http.SetCookie(w, h.sessionCookie(accessTokenCookie, access, accessExp))

	return claims
}

// auth resolves the current principal. A valid token alone is not enough: the
// identity it references must still exist and be approved, so a token issued
// before an account was deleted cannot be replayed. Every failure collapses
// to the same 401 and clears the session cookies.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.resolveClaims(w, r)
		if claims == nil {
			h.clearSessionCookies(w)
			h.unauthorized(w, r)
			return
		}

		ac := &AuthContext{
			Role: domain.Role(claims.Role),
		}

		switch ac.Role {
		case domain.RoleSEC:
			sec, err := h.repository.GetSECByPhone(claims.Phone)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("failed to resolve SEC", "error", err)
				}
				h.clearSessionCookies(w)
				h.unauthorized(w, r)
				return
			}
			ac.SEC = sec
		default:
			user, err := h.repository.GetUserByID(claims.UserID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("failed to resolve user", "error", err)
				}
				h.clearSessionCookies(w)
				h.unauthorized(w, r)
				return
			}
			if user.ValidationState != domain.ValidationApproved || user.Role != ac.Role {
				h.clearSessionCookies(w)
				h.unauthorized(w, r)
				return
			}

			profile, err := h.repository.GetRoleProfileByUserID(user.ID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("failed to resolve role profile", "error", err)
				}
				h.clearSessionCookies(w)
				h.unauthorized(w, r)
				return
			}

			ac.User = user
			ac.Profile = profile
		}

		ctx := context.WithValue(r.Context(), PrincipalCtxKey, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability consults the capability table once per request instead of
// re-checking roles inside each handler. After the role check it enforces the
// restricted-tier policy: UAT-flagged accounts are denied unless the
// capability is on their allowlist, so new endpoints are closed to them until
// explicitly opened.
func (h *Handler) RequireCapability(c domain.Capability) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)
			if !ac.Role.Can(c) {
				h.forbidden(w, r)
				return
			}
			if ac.IsUAT() && !c.AllowsRestrictedTier() {
				h.forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
