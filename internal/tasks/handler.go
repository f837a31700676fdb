package tasks

import (
	"log/slog"
	"net/http"

	"synergy/internal/calendar"
	"synergy/internal/httpapi"
)

type Handler struct {
	svc   *Service
	log   *slog.Logger
	clock calendar.Clock
}

func NewHandler(svc *Service, log *slog.Logger, clock calendar.Clock) *Handler {
	if clock == nil {
		clock = calendar.SystemClock
	}
	return &Handler{svc: svc, log: log, clock: clock}
}

// Register mounts the task routes under /api/todos.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/todos", h.ListTasks)
	mux.HandleFunc("GET /api/todos/stats", h.DayStats)
	mux.HandleFunc("GET /api/todos/{id}", h.GetTask)
	mux.HandleFunc("POST /api/todos", h.CreateTask)
	mux.HandleFunc("PUT /api/todos/{id}", h.UpdateTask)
	mux.HandleFunc("POST /api/todos/{id}/toggle", h.ToggleTask)
	mux.HandleFunc("DELETE /api/todos/{id}", h.DeleteTask)
}

// ListTasks handles GET /api/todos[?date=YYYY-MM-DD]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	day, filtered, err := httpapi.QueryDay(r, "date")
	if err != nil {
		httpapi.WriteError(w, h.log, "list tasks", err)
		return
	}

	var list []Task
	if filtered {
		list, err = h.svc.ListOn(r.Context(), day)
	} else {
		list, err = h.svc.List(r.Context())
	}
	if err != nil {
		httpapi.WriteError(w, h.log, "list tasks", err)
		return
	}
	httpapi.JSON(w, list, http.StatusOK)
}

// DayStats handles GET /api/todos/stats[?date=YYYY-MM-DD]; the day
// defaults to today.
func (h *Handler) DayStats(w http.ResponseWriter, r *http.Request) {
	day, ok, err := httpapi.QueryDay(r, "date")
	if err != nil {
		httpapi.WriteError(w, h.log, "compute task stats", err)
		return
	}
	if !ok {
		day = calendar.KeyOf(h.clock.Now().In(h.svc.loc))
	}

	st, err := h.svc.Stats(r.Context(), day)
	if err != nil {
		httpapi.WriteError(w, h.log, "compute task stats", err)
		return
	}
	httpapi.JSON(w, st, http.StatusOK)
}

// GetTask handles GET /api/todos/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "get task", err)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "get task", err)
		return
	}
	httpapi.JSON(w, t, http.StatusOK)
}

// CreateTask handles POST /api/todos
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input CreateTaskInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "create task", err)
		return
	}
	t, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "create task", err)
		return
	}
	httpapi.JSON(w, t, http.StatusCreated)
}

// UpdateTask handles PUT /api/todos/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update task", err)
		return
	}
	var p Patch
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "update task", err)
		return
	}
	t, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		httpapi.WriteError(w, h.log, "update task", err)
		return
	}
	httpapi.JSON(w, t, http.StatusOK)
}

// ToggleTask handles POST /api/todos/{id}/toggle
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "toggle task", err)
		return
	}
	t, err := h.svc.Toggle(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "toggle task", err)
		return
	}
	httpapi.JSON(w, t, http.StatusOK)
}

// DeleteTask handles DELETE /api/todos/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "delete task", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.log, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
