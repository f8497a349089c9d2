package like

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// Registrar ties the Like engine into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Like engine.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the like routes. All of them require a session.
func (reg *Registrar) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	h := NewHandler(NewService(reg.appCtx))

	sub := r.PathPrefix("/likes").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("/send", h.Send).Methods(http.MethodPost)
	sub.HandleFunc("/incoming", h.Incoming).Methods(http.MethodGet)
	sub.HandleFunc("/sent", h.Sent).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/respond", h.Respond).Methods(http.MethodPost)
	sub.HandleFunc("/{id}", h.Remove).Methods(http.MethodDelete)
}
