package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/google/uuid"
)

type ctxKeyRequestID struct{}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(common.RequestIDHeaderName))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		attrs := []any{
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if sw.status >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "http request", attrs...)
			return
		}
		s.logger.Info(r.Context(), "http request", attrs...)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error(r.Context(), "panic recovered", "request_id", RequestIDFromContext(r.Context()), "panic", v)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", RequestID: RequestIDFromContext(r.Context())})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the Authorization header, if any, into an
// auth.Identity. Requests without credentials pass through anonymously;
// bad credentials are rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds, err := auth.ParseAuthorization(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var user *models.User
		switch creds.Scheme {
		case auth.SchemeNone:
			next.ServeHTTP(w, r)
			return
		case auth.SchemeBasic:
			user, err = s.svc.Users.Authenticate(r.Context(), creds.Login, creds.Password)
		case auth.SchemeBearer:
			user, err = s.svc.Users.Identify(r.Context(), creds.Token)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{UserID: user.ID, Login: user.UserID, Name: user.Name})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireIdentity(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}
		next(w, r)
	})
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
