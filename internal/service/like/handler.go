package like

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/server"
)

type sendRequest struct {
	ToUserID string        `json:"toUserId"`
	Comment  string        `json:"comment,omitempty"`
	Context  *ContextInput `json:"context,omitempty"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// Handler adapts the Like engine to HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	likeCtx, err := ParseContext(req.Context)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Send(r.Context(), server.UserID(r.Context()), SendInput{
		ToUserID: req.ToUserID,
		Comment:  req.Comment,
		Context:  likeCtx,
	})
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Incoming(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Incoming(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) Sent(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Sent(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	result, err := h.svc.Respond(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"], req.Accept)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveIncoming(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
