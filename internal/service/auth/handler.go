package auth

import (
	"net/http"

	"github.com/kindred-app/kindred-backend/internal/server"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler adapts the auth service to HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	res, err := h.svc.Signup(r.Context(), SignupInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), server.SessionJTI(r.Context()))
	server.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Me(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}
