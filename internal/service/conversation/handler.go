package conversation

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/server"
	"github.com/kindred-app/kindred-backend/internal/utils/pagination"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// Handler adapts the Conversation engine to HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.List(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Get(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, detail)
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query())
	views, err := h.svc.Messages(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"], page)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.SendMessage(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"], req.Content)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMessage(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
