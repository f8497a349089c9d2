package profile

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// Registrar ties the profile service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the profile service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the profile routes. All of them require a session.
func (reg *Registrar) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	h := NewHandler(NewService(reg.appCtx))

	sub := r.PathPrefix("/profile").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("", h.Update).Methods(http.MethodPatch)
	sub.HandleFunc("/photos", h.AddPhoto).Methods(http.MethodPost)
	sub.HandleFunc("/photos/{id}", h.RemovePhoto).Methods(http.MethodDelete)
	sub.HandleFunc("/prompts", h.AddPrompt).Methods(http.MethodPost)
	sub.HandleFunc("/prompts/{id}", h.RemovePrompt).Methods(http.MethodDelete)
}
