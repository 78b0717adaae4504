// Package httpapi exposes the authentication endpoints over HTTP with
// gorilla/mux and provides the RequireAuth middleware protected handlers are
// mounted behind.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// NewRouter wires the routes:
//
//	POST /auth/register
//	POST /auth/login
//	GET  /auth/me        (bearer token required)
//	GET  /healthz
//	GET  /metrics
//
// Further protected routes can be added to the returned router behind
// RequireAuth.
func NewRouter(users UserService, verifier auth.TokenVerifier, logger logging.Logger, m *metrics.Metrics) *mux.Router {
	if logger == nil {
		logger = logging.Nop{}
	}
	logger = logger.With("module", "httpapi")

	h := &handlers{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}

	r := mux.NewRouter()
	r.Use(instrument(logger, m))

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", h.register).Methods(http.MethodPost)
	a.HandleFunc("/login", h.login).Methods(http.MethodPost)

	requireAuth := RequireAuth(verifier, logger, m)
	a.Handle("/me", requireAuth(http.HandlerFunc(h.me))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	return r
}
