package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"github.com/gorilla/mux"
)

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a copy of ctx carrying the authenticated user id.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey, userID)
}

// PrincipalFromContext returns the user id stored by RequireAuth.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(principalKey).(string)
	return userID, ok && userID != ""
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the principal in the request context otherwise. Handlers behind it
// read the caller with PrincipalFromContext.
func RequireAuth(v auth.TokenVerifier, logger logging.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	if logger == nil {
		logger = logging.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.ResolvePrincipal(v, r.Header)
			reason := auth.FailureReason(err)
			m.RecordTokenVerification(reason)
			if err != nil {
				logger.Debug(r.Context(), "request not authenticated", "reason", reason, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), userID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument logs and counts every routed request, labelled by its route
// template so ids in paths do not explode label cardinality.
func instrument(logger logging.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cr := mux.CurrentRoute(r); cr != nil {
				if tpl, err := cr.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration", elapsed,
			)
		})
	}
}
