package conversation

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/app"
)

// Registrar ties the Conversation engine into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Conversation engine.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the conversation and message routes. All require a
// session. Message deletion addresses the message directly, outside the
// conversation prefix.
func (reg *Registrar) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	h := NewHandler(NewService(reg.appCtx))

	sub := r.PathPrefix("/conversations").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/messages", h.Messages).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/messages", h.SendMessage).Methods(http.MethodPost)

	msgs := r.PathPrefix("/messages").Subrouter()
	msgs.Use(auth)
	msgs.HandleFunc("/{id}", h.DeleteMessage).Methods(http.MethodDelete)
}
