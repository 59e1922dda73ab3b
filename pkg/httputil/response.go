package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
	Line    int       `json:"line,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an [ErrorBody] with the status from [StatusFor].
func WriteError(w http.ResponseWriter, err error) error {
	status := StatusFor(err)
	body := ErrorBody{
		Code:    errs.GetCode(err),
		Message: errs.UserMessage(err),
		Line:    errs.GetLine(err),
	}
	if status == http.StatusInternalServerError {
		body = ErrorBody{Code: errs.ErrCodeInternal, Message: "internal error"}
	}
	return WriteJSON(w, status, body)
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return http.StatusNotFound
	}
	switch errs.GetKind(err) {
	case errs.KindParse, errs.KindInput:
		return http.StatusBadRequest
	case errs.KindInvariant:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
