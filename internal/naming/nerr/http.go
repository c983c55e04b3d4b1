package nerr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Exception is the wire shape every error response carries, per §6/§7:
// {exception_type, exception_info} plus the HTTP status code.
type Exception struct {
	Type string `json:"exception_type"`
	Info string `json:"exception_info"`
}

// statusFor maps an error Kind to the status code used throughout §6's table.
// NotFound and InvalidArgument both surface as 400 at the service endpoint
// (the table never distinguishes them by status, only by exception_type);
// IllegalState (duplicate registration) is the one 409 in the system.
func statusFor(k Kind) int {
	switch k {
	case NotFound, InvalidArgument, IndexOutOfBounds, IOError:
		return http.StatusBadRequest
	case IllegalState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapError turns any error into a status code and Exception body. Errors
// that are not *Error are treated as internal errors with a generic type,
// mirroring the teacher's MapStoreError default case.
func MapError(err error) (int, Exception) {
	var e *Error
	if errors.As(err, &e) {
		return statusFor(e.Kind), Exception{Type: e.Kind.String(), Info: e.Detail}
	}
	return http.StatusInternalServerError, Exception{Type: "InternalError", Info: err.Error()}
}

// WriteException writes the exception body for err at its mapped status code.
func WriteException(w http.ResponseWriter, err error) {
	status, exc := MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(exc)
}

// WriteJSON writes a 200 OK JSON response, the success shape for every
// non-error endpoint in §6.
func WriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
