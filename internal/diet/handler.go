package diet

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

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

// Register mounts the diet routes under /api/diet.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/diet", h.ListItems)
	mux.HandleFunc("GET /api/diet/summary", h.Summary)
	mux.HandleFunc("GET /api/diet/{id}", h.GetItem)
	mux.HandleFunc("POST /api/diet", h.CreateItem)
	mux.HandleFunc("PUT /api/diet/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/diet/{id}", h.DeleteItem)
	mux.HandleFunc("POST /api/diet/estimate", h.Estimate)
	mux.HandleFunc("POST /api/diet/scan", h.Scan)
	mux.HandleFunc("POST /api/diet/log", h.LogEstimate)
}

// ListItems handles GET /api/diet[?date=YYYY-MM-DD]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	day, filtered, err := httpapi.QueryDay(r, "date")
	if err != nil {
		httpapi.WriteError(w, h.log, "list diet items", err)
		return
	}
	var items []Item
	if filtered {
		items, err = h.svc.ListOn(r.Context(), day)
	} else {
		items, err = h.svc.List(r.Context())
	}
	if err != nil {
		httpapi.WriteError(w, h.log, "list diet items", err)
		return
	}
	httpapi.JSON(w, items, http.StatusOK)
}

// Summary handles GET /api/diet/summary[?date=YYYY-MM-DD]; the day
// defaults to today.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	day, ok, err := httpapi.QueryDay(r, "date")
	if err != nil {
		httpapi.WriteError(w, h.log, "summarize diet", err)
		return
	}
	if !ok {
		day = calendar.KeyOf(h.clock.Now().In(h.svc.loc))
	}
	totals, err := h.svc.Summary(r.Context(), day)
	if err != nil {
		httpapi.WriteError(w, h.log, "summarize diet", err)
		return
	}
	httpapi.JSON(w, totals, http.StatusOK)
}

// GetItem handles GET /api/diet/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "get diet item", err)
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "get diet item", err)
		return
	}
	httpapi.JSON(w, item, http.StatusOK)
}

// CreateItem handles POST /api/diet
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input CreateItemInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "create diet item", err)
		return
	}
	item, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "create diet item", err)
		return
	}
	httpapi.JSON(w, item, http.StatusCreated)
}

// UpdateItem handles PUT /api/diet/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update diet item", err)
		return
	}
	var p Patch
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "update diet item", err)
		return
	}
	item, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		httpapi.WriteError(w, h.log, "update diet item", err)
		return
	}
	httpapi.JSON(w, item, http.StatusOK)
}

// DeleteItem handles DELETE /api/diet/{id}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "delete diet item", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.log, "delete diet item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estimate handles POST /api/diet/estimate {"query": "..."}
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Query string `json:"query"`
	}
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "estimate nutrition", err)
		return
	}
	if strings.TrimSpace(input.Query) == "" {
		httpapi.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	est, err := h.svc.Estimate(r.Context(), input.Query)
	if err != nil {
		httpapi.WriteError(w, h.log, "estimate nutrition", err)
		return
	}
	httpapi.JSON(w, est, http.StatusOK)
}

// Scan handles POST /api/diet/scan. The photo arrives as a multipart
// "image" field, a raw image body or JSON {"image": "<data URI>"}.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(w, r)
	if err != nil {
		httpapi.WriteError(w, h.log, "scan food", err)
		return
	}
	est, err := h.svc.Scan(r.Context(), img)
	if err != nil {
		httpapi.WriteError(w, h.log, "scan food", err)
		return
	}
	httpapi.JSON(w, est, http.StatusOK)
}

// LogEstimate handles POST /api/diet/log
func (h *Handler) LogEstimate(w http.ResponseWriter, r *http.Request) {
	var input LogEstimateInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "log estimate", err)
		return
	}
	item, err := h.svc.LogEstimate(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "log estimate", err)
		return
	}
	httpapi.JSON(w, item, http.StatusCreated)
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, httpapi.MaxBodyBytes)
		if err := r.ParseMultipartForm(httpapi.MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("%w: image field is required", httpapi.ErrBadRequest)
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, httpapi.MaxBodyBytes))
	case strings.HasPrefix(mediaType, "image/"):
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httpapi.MaxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
		}
		return data, nil
	default:
		var input struct {
			Image string `json:"image"`
		}
		if err := httpapi.DecodeJSON(w, r, &input); err != nil {
			return nil, err
		}
		return decodeDataURI(input.Image)
	}
}

// decodeDataURI accepts "data:<type>;base64,<payload>" or bare base64.
func decodeDataURI(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: image must be a base64 data URI", httpapi.ErrBadRequest)
		}
		payload = data
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: image is required", httpapi.ErrBadRequest)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", httpapi.ErrBadRequest)
	}
	return data, nil
}
