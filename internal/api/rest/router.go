package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// NewRouter wires the HTTP endpoints. metricsHandler may be nil.
func NewRouter(
	authService AuthService,
	tokenService TokenService,
	contextManager model.ContextManager,
	pinger Pinger,
	metricsHandler http.Handler,
	logger *logger.Logger,
) *mux.Router {
	h := NewHandler(authService, contextManager, pinger, logger)

	r := mux.NewRouter()
	r.Use(Logging(logger))

	r.HandleFunc("/token", h.Token).Methods(http.MethodPost)
	r.HandleFunc("/reset", h.RequestReset).Methods(http.MethodPost)
	r.HandleFunc("/reset/complete", h.CompleteReset).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	private := r.PathPrefix("/users").Subrouter()
	private.Use(Authenticate(tokenService, contextManager))
	private.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	return r
}
