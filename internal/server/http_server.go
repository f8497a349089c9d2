package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// NewRouter builds the API router: health endpoint, per-service routes via
// registrars, and the auth middleware handed to each registrar so services
// decide which of their routes require a session.
func NewRouter(appCtx *app.AppContext, registrars ...Registrar) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	authMW := Auth(appCtx)
	for _, reg := range registrars {
		reg.Register(api, authMW)
	}

	return r
}

// Start serves the router with CORS applied, blocking until the listener fails.
func Start(appCtx *app.AppContext, router *mux.Router) error {
	cfg := appCtx.Cfg

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	appCtx.Logger.Info("starting HTTP server", "addr", addr)
	return http.ListenAndServe(addr, handler)
}
