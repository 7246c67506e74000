package types

import (
	"net/http"
)

// ErrorBody is the flat error payload returned to callers.
type ErrorBody struct {
	Error string `json:"error"`
}

// Messages used by the relay's own error responses.
const (
	MsgMethodNotAllowed = "Method not allowed"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	body, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(body)
	return err
}

// WriteRawJSON writes an already encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, statusCode int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err := w.Write(body)
	return err
}

// WriteError writes {"error": message} with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	_ = WriteJSON(w, statusCode, ErrorBody{Error: message})
}
