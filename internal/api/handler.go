// Package api exposes the presentation-facing JSON surface. Handlers render
// machine snapshots and never make session state decisions themselves.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/interview"
	"github.com/Djalilu/interview-app/internal/server"
	"github.com/Djalilu/interview-app/internal/storage"
	"github.com/Djalilu/interview-app/internal/tokens"
)

// Handler wires the interview core to HTTP.
type Handler struct {
	registry  *interview.Registry
	model     interview.LanguageModel
	store     storage.SessionStore
	estimator *tokens.Estimator
	logger    *slog.Logger
}

// NewHandler creates the API handler. The estimator may be nil.
func NewHandler(registry *interview.Registry, model interview.LanguageModel, store storage.SessionStore, estimator *tokens.Estimator, logger *slog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		model:     model,
		store:     store,
		estimator: estimator,
		logger:    logger,
	}
}

// Routes mounts all API routes on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/interviews", h.createInterview)
		r.Route("/interviews/{id}", func(r chi.Router) {
			r.Get("/", h.getInterview)
			r.Post("/start", h.startInterview)
			r.Post("/turns", h.submitTurn)
			r.Post("/answers", h.recordAnswer)
			r.Post("/finish", h.finishInterview)
			r.Post("/cancel", h.cancelInterview)
		})
		r.Get("/history", h.listHistory)
		r.Get("/history/{id}", h.getHistorySession)
		r.Get("/catalog/languages", h.listLanguages)
		r.Get("/catalog/roles", h.listRoles)
	})
}

type createInterviewRequest struct {
	Mode       domain.Mode `json:"mode"`
	Company    string      `json:"company"`
	CompanyURL string      `json:"companyUrl"`
	JobRole    string      `json:"jobRole"`
	Language   string      `json:"language"`
}

// createInterview validates the setup fields, registers a new machine, and
// immediately drives it through start. The returned snapshot may already be
// in the error phase; the machine is kept so the client can retry start
// without re-entering the setup fields.
func (h *Handler) createInterview(w http.ResponseWriter, r *http.Request) {
	var req createInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body").WithCause(err))
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	machine, err := interview.NewMachine(interview.Params{
		Mode:       req.Mode,
		Company:    req.Company,
		CompanyURL: req.CompanyURL,
		JobRole:    req.JobRole,
		Language:   req.Language,
	}, h.model, h.store, h.estimator, h.logger)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.registry.Add(machine)
	server.AddLogField(r.Context(), "interview_id", machine.ID())

	snap, err := machine.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) machine(w http.ResponseWriter, r *http.Request) (*interview.Machine, bool) {
	id := chi.URLParam(r, "id")
	machine, ok := h.registry.Get(id)
	if !ok {
		h.writeError(w, r, domain.ErrNotFound("no active interview with id "+id))
		return nil, false
	}
	server.AddLogField(r.Context(), "interview_id", id)
	return machine, true
}

func (h *Handler) getInterview(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, machine.Snapshot())
}

func (h *Handler) startInterview(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	snap, err := machine.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *Handler) submitTurn(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body").WithCause(err))
		return
	}
	snap, err := machine.SubmitTurn(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) recordAnswer(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body").WithCause(err))
		return
	}
	snap, err := machine.RecordAnswer(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) finishInterview(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	snap, err := machine.Finish(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type cancelRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) cancelInterview(w http.ResponseWriter, r *http.Request) {
	machine, ok := h.machine(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body").WithCause(err))
		return
	}
	snap, err := machine.Cancel(req.Confirm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// listHistory returns completed sessions, newest first, optionally filtered
// by exact job role and by calendar day (YYYY-MM-DD).
func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.GetAll(r.Context())
	if err != nil {
		// Store implementations degrade read failures to empty; anything
		// else is still rendered as empty history.
		server.AddError(r.Context(), err)
		sessions = nil
	}

	role := r.URL.Query().Get("role")
	date := r.URL.Query().Get("date")

	filtered := make([]domain.InterviewSession, 0, len(sessions))
	for _, s := range sessions {
		if role != "" && s.JobRole != role {
			continue
		}
		if date != "" && s.Date.Format("2006-01-02") != date {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	h.writeJSON(w, http.StatusOK, filtered)
}

func (h *Handler) getHistorySession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) listLanguages(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, domain.Languages)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, domain.JobCategories)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)

	var ce *domain.CoachError
	if !errors.As(err, &ce) {
		ce = domain.NewError(domain.ErrorTypeStorage, "internal error").WithCause(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.HTTPStatusCode())
	resp := map[string]any{"error": map[string]string{
		"type":    string(ce.Type),
		"message": ce.Message,
	}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}
