package match

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// Registrar ties the Match engine into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Match engine.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match routes. All of them require a session.
func (reg *Registrar) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	h := NewHandler(NewService(reg.appCtx))

	sub := r.PathPrefix("/matches").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}
