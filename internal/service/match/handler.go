package match

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/server"
)

// Handler adapts the Match engine to HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
