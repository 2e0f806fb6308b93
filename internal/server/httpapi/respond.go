package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	msg := err.Error()

	switch status {
	case http.StatusInternalServerError:
		s.logger.Error(r.Context(), "request failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		msg = "internal error"
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", `Basic realm="issuetracker"`)
	}

	writeJSON(w, status, errorBody{Error: msg, RequestID: RequestIDFromContext(r.Context())})
}

// wantsJSON reports whether the caller sent or asked for JSON. Everything
// else is treated as a browser form post and answered with a redirect.
func wantsJSON(r *http.Request) bool {
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && ct == "application/json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSONBody(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// decodeInput fills dst from a JSON body, or from form values through
// fromForm.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any, fromForm func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSONBody(r) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("invalid json body: %v: %w", err, common.ErrorValidation)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form: %v: %w", err, common.ErrorValidation)
	}
	fromForm(r.PostForm.Get)
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, r.PathValue(name), common.ErrorNotFound)
	}
	return id, nil
}

// respond writes body as JSON for API callers and redirects form posts.
func respond(w http.ResponseWriter, r *http.Request, status int, body any, redirectTo string) {
	if !wantsJSON(r) {
		http.Redirect(w, r, redirectTo, http.StatusFound)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}
