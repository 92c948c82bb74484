// Package shared centralizes JSON response and error envelope writing so all
// feature handlers answer in the same shape.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	derrors "bloodbank/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error into the HTTP envelope. Errors without
// a code answer 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	var derr *derrors.Error
	if errors.As(err, &derr) {
		resp.Message = derr.Message
	}
	WriteJSON(w, derrors.ToHTTPStatus(code), resp)
}

// DecodeJSON parses the request body into dst, answering a coded error when
// the payload is malformed.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return derrors.New(derrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
