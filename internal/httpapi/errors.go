package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
)

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) Error() string { return e.Body.Message }

func newAPIError(status int, code, message string) *apiError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

func badRequest(message string) *apiError {
	return newAPIError(http.StatusBadRequest, "", message)
}

// toAPIError maps service errors onto statuses. Unknown errors are reported
// as internal without their text.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return newAPIError(http.StatusNotFound, "", err.Error())
	case errors.Is(err, domain.ErrDeleteRestricted):
		return newAPIError(http.StatusConflict, "delete_restricted", err.Error())
	case errors.Is(err, domain.ErrUnknownReference):
		return newAPIError(http.StatusUnprocessableEntity, "unknown_reference", err.Error())
	case errors.Is(err, domain.ErrInvalidWorkProgram),
		errors.Is(err, domain.ErrInvalidHierarchy),
		errors.Is(err, domain.ErrInvalidEntity):
		return newAPIError(http.StatusUnprocessableEntity, "", err.Error())
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return newAPIError(http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
	}
	return newAPIError(http.StatusInternalServerError, "", "internal error")
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAPIError(err)
	if ae.status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "http_handler_failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, ae.status, ae)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
