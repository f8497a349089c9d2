package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// Registrar ties the auth service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the auth service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the auth routes. Signup and login are public; logout and
// me require a session.
func (reg *Registrar) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	h := NewHandler(NewService(reg.appCtx))

	public := r.PathPrefix("/auth").Subrouter()
	public.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	authed := r.PathPrefix("/auth").Subrouter()
	authed.Use(auth)
	authed.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/me", h.Me).Methods(http.MethodGet)
}
