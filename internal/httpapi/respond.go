// Package httpapi holds the JSON plumbing shared by the REST handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"synergy/internal/calendar"
)

// MaxBodyBytes caps request bodies; image payloads arrive as data URIs.
const MaxBodyBytes = 20 << 20

func JSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, message string, status int) {
	JSON(w, map[string]string{"error": message}, status)
}

// DecodeJSON reads the request body into v. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", ErrBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}

// PathID parses the numeric path parameter name.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return id, nil
}

func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// QueryDay reads a "YYYY-MM-DD" query parameter. ok is false when the
// parameter is absent.
func QueryDay(r *http.Request, name string) (day calendar.DayKey, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return calendar.DayKey{}, false, nil
	}
	day, err = calendar.ParseKey(raw)
	if err != nil {
		return calendar.DayKey{}, false, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, name)
	}
	return day, true, nil
}
