package workouts

import (
	"log/slog"
	"net/http"

	"synergy/internal/httpapi"
	"synergy/internal/oracle"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the exercise routes under /api/exercises.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/exercises", h.ListExercises)
	mux.HandleFunc("GET /api/exercises/{id}", h.GetExercise)
	mux.HandleFunc("POST /api/exercises", h.CreateExercise)
	mux.HandleFunc("POST /api/exercises/bulk", h.BulkCreate)
	mux.HandleFunc("POST /api/exercises/propose", h.Propose)
	mux.HandleFunc("POST /api/exercises/accept", h.Accept)
	mux.HandleFunc("POST /api/exercises/generate", h.Generate)
	mux.HandleFunc("PUT /api/exercises/{id}", h.UpdateExercise)
	mux.HandleFunc("DELETE /api/exercises/{id}", h.DeleteExercise)
}

// ListExercises handles GET /api/exercises[?date=YYYY-MM-DD|?week=YYYY-MM-DD]
func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	day, byDay, err := httpapi.QueryDay(r, "date")
	if err != nil {
		httpapi.WriteError(w, h.log, "list exercises", err)
		return
	}
	week, byWeek, err := httpapi.QueryDay(r, "week")
	if err != nil {
		httpapi.WriteError(w, h.log, "list exercises", err)
		return
	}

	var list []Exercise
	switch {
	case byDay:
		list, err = h.svc.ListOn(r.Context(), day)
	case byWeek:
		list, err = h.svc.ListWeek(r.Context(), week)
	default:
		list, err = h.svc.List(r.Context())
	}
	if err != nil {
		httpapi.WriteError(w, h.log, "list exercises", err)
		return
	}
	httpapi.JSON(w, list, http.StatusOK)
}

// GetExercise handles GET /api/exercises/{id}
func (h *Handler) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "get exercise", err)
		return
	}
	ex, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "get exercise", err)
		return
	}
	httpapi.JSON(w, ex, http.StatusOK)
}

// CreateExercise handles POST /api/exercises
func (h *Handler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var input CreateExerciseInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "create exercise", err)
		return
	}
	ex, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "create exercise", err)
		return
	}
	httpapi.JSON(w, ex, http.StatusCreated)
}

// BulkCreate handles POST /api/exercises/bulk with a JSON array body.
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var inputs []CreateExerciseInput
	if err := httpapi.DecodeJSON(w, r, &inputs); err != nil {
		httpapi.WriteError(w, h.log, "create exercises", err)
		return
	}
	list, err := h.svc.BulkCreate(r.Context(), inputs)
	if err != nil {
		httpapi.WriteError(w, h.log, "create exercises", err)
		return
	}
	httpapi.JSON(w, list, http.StatusCreated)
}

// Propose handles POST /api/exercises/propose
func (h *Handler) Propose(w http.ResponseWriter, r *http.Request) {
	var input ProposeInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "propose workout", err)
		return
	}
	p, err := h.svc.Propose(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "propose workout", err)
		return
	}
	httpapi.JSON(w, p, http.StatusOK)
}

// Accept handles POST /api/exercises/accept with a proposal body.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var p oracle.WorkoutScheduleProposal
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "accept workout", err)
		return
	}
	list, err := h.svc.Accept(r.Context(), p)
	if err != nil {
		httpapi.WriteError(w, h.log, "accept workout", err)
		return
	}
	httpapi.JSON(w, list, http.StatusCreated)
}

// Generate handles POST /api/exercises/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input ProposeInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "generate workout", err)
		return
	}
	list, err := h.svc.Generate(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "generate workout", err)
		return
	}
	httpapi.JSON(w, list, http.StatusCreated)
}

// UpdateExercise handles PUT /api/exercises/{id}
func (h *Handler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update exercise", err)
		return
	}
	var p Patch
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "update exercise", err)
		return
	}
	ex, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		httpapi.WriteError(w, h.log, "update exercise", err)
		return
	}
	httpapi.JSON(w, ex, http.StatusOK)
}

// DeleteExercise handles DELETE /api/exercises/{id}
func (h *Handler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "delete exercise", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.log, "delete exercise", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
