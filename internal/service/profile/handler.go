package profile

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kindred-app/kindred-backend/internal/server"
)

type profileRequest struct {
	DOB      *time.Time `json:"dob"`
	Location *string    `json:"location"`
	Gender   *string    `json:"gender"`
}

type photoRequest struct {
	URL      string `json:"url"`
	Position *int   `json:"position"`
}

type promptRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Handler adapts the profile service to HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), server.UserID(r.Context()))
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Create(r.Context(), server.UserID(r.Context()),
		UpdateInput{DOB: req.DOB, Location: req.Location, Gender: req.Gender})
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Update(r.Context(), server.UserID(r.Context()),
		UpdateInput{DOB: req.DOB, Location: req.Location, Gender: req.Gender})
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.AddPhoto(r.Context(), server.UserID(r.Context()), req.URL, req.Position)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.RemovePhoto(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) AddPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}

	view, err := h.svc.AddPrompt(r.Context(), server.UserID(r.Context()), req.Question, req.Answer)
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) RemovePrompt(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.RemovePrompt(r.Context(), server.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		server.RespondError(w, h.svc.appCtx.Logger, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, view)
}
