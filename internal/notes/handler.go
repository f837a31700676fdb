package notes

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"

	"synergy/internal/blocks"
	"synergy/internal/httpapi"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the note routes under /api/notes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("GET /api/notes/categories", h.ListCategories)
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("POST /api/notes/save", h.SaveNote)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("PUT /api/notes/{id}", h.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)
	mux.HandleFunc("GET /api/notes/{id}/html", h.ExportHTML)

	mux.HandleFunc("GET /api/notes/{id}/blocks", h.GetBlocks)
	mux.HandleFunc("POST /api/notes/{id}/blocks", h.AddBlock)
	mux.HandleFunc("PUT /api/notes/{id}/blocks/{blockId}", h.UpdateBlock)
	mux.HandleFunc("DELETE /api/notes/{id}/blocks/{blockId}", h.RemoveBlock)
	mux.HandleFunc("POST /api/notes/{id}/blocks/{blockId}/rows", h.AppendTableRow)
	mux.HandleFunc("PUT /api/notes/{id}/blocks/{blockId}/cells", h.UpdateTableCell)
}

// --- REST API Handlers ---

// ListNotes handles GET /api/notes[?category=&q=&limit=&offset=]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
		Limit:    httpapi.ParseInt(r.URL.Query().Get("limit"), 0),
		Offset:   httpapi.ParseInt(r.URL.Query().Get("offset"), 0),
	}
	list, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpapi.WriteError(w, h.log, "list notes", err)
		return
	}
	httpapi.JSON(w, list, http.StatusOK)
}

// ListCategories handles GET /api/notes/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.log, "list categories", err)
		return
	}
	httpapi.JSON(w, categories, http.StatusOK)
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input CreateNoteInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "create note", err)
		return
	}
	note, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "create note", err)
		return
	}
	httpapi.JSON(w, note, http.StatusCreated)
}

// SaveNote handles POST /api/notes/save. A discarded note answers 204.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	var input SaveInput
	if err := httpapi.DecodeJSON(w, r, &input); err != nil {
		httpapi.WriteError(w, h.log, "save note", err)
		return
	}
	note, saved, err := h.svc.Save(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, h.log, "save note", err)
		return
	}
	switch {
	case !saved:
		w.WriteHeader(http.StatusNoContent)
	case input.ID == nil:
		httpapi.JSON(w, note, http.StatusCreated)
	default:
		httpapi.JSON(w, note, http.StatusOK)
	}
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "get note", err)
		return
	}
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "get note", err)
		return
	}
	httpapi.JSON(w, note, http.StatusOK)
}

// UpdateNote handles PUT /api/notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update note", err)
		return
	}
	var p Patch
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "update note", err)
		return
	}
	note, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		httpapi.WriteError(w, h.log, "update note", err)
		return
	}
	httpapi.JSON(w, note, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "delete note", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.log, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportHTML handles GET /api/notes/{id}/html
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "export note", err)
		return
	}
	note, body, err := h.svc.HTML(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "export note", err)
		return
	}
	title := html.EscapeString(note.DisplayTitle())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n<h1>%s</h1>\n%s</body>\n</html>\n",
		title, title, body)
}

// --- Block editing ---

// GetBlocks handles GET /api/notes/{id}/blocks
func (h *Handler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "get blocks", err)
		return
	}
	doc, err := h.svc.Blocks(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.log, "get blocks", err)
		return
	}
	h.writeDoc(w, "get blocks", doc, http.StatusOK)
}

// AddBlock handles POST /api/notes/{id}/blocks
func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "add block", err)
		return
	}
	var in BlockInput
	if err := httpapi.DecodeJSON(w, r, &in); err != nil {
		httpapi.WriteError(w, h.log, "add block", err)
		return
	}
	doc, err := h.svc.AddBlock(r.Context(), id, in)
	if err != nil {
		httpapi.WriteError(w, h.log, "add block", err)
		return
	}
	h.writeDoc(w, "add block", doc, http.StatusCreated)
}

// UpdateBlock handles PUT /api/notes/{id}/blocks/{blockId}
func (h *Handler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update block", err)
		return
	}
	var in struct {
		Content json.RawMessage `json:"content"`
	}
	if err := httpapi.DecodeJSON(w, r, &in); err != nil {
		httpapi.WriteError(w, h.log, "update block", err)
		return
	}
	doc, err := h.svc.UpdateBlock(r.Context(), id, r.PathValue("blockId"), in.Content)
	if err != nil {
		httpapi.WriteError(w, h.log, "update block", err)
		return
	}
	h.writeDoc(w, "update block", doc, http.StatusOK)
}

// RemoveBlock handles DELETE /api/notes/{id}/blocks/{blockId}
func (h *Handler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "remove block", err)
		return
	}
	doc, err := h.svc.RemoveBlock(r.Context(), id, r.PathValue("blockId"))
	if err != nil {
		httpapi.WriteError(w, h.log, "remove block", err)
		return
	}
	h.writeDoc(w, "remove block", doc, http.StatusOK)
}

// AppendTableRow handles POST /api/notes/{id}/blocks/{blockId}/rows
func (h *Handler) AppendTableRow(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "append table row", err)
		return
	}
	doc, err := h.svc.AppendTableRow(r.Context(), id, r.PathValue("blockId"))
	if err != nil {
		httpapi.WriteError(w, h.log, "append table row", err)
		return
	}
	h.writeDoc(w, "append table row", doc, http.StatusOK)
}

// UpdateTableCell handles PUT /api/notes/{id}/blocks/{blockId}/cells
func (h *Handler) UpdateTableCell(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteError(w, h.log, "update table cell", err)
		return
	}
	var in CellInput
	if err := httpapi.DecodeJSON(w, r, &in); err != nil {
		httpapi.WriteError(w, h.log, "update table cell", err)
		return
	}
	doc, err := h.svc.UpdateTableCell(r.Context(), id, r.PathValue("blockId"), in)
	if err != nil {
		httpapi.WriteError(w, h.log, "update table cell", err)
		return
	}
	h.writeDoc(w, "update table cell", doc, http.StatusOK)
}

// writeDoc answers with the document in its stored form.
func (h *Handler) writeDoc(w http.ResponseWriter, op string, doc blocks.Document, status int) {
	raw, err := blocks.Serialize(doc)
	if err != nil {
		httpapi.WriteError(w, h.log, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, raw)
}
