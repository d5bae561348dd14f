package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Error string            `json:"error"`
	Code  string            `json:"code,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// MessageEnvelope is the success counterpart for mutation endpoints.
type MessageEnvelope struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:  code,
		Error: message,
		Meta:  meta,
	})
}

func WriteMessage(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, &MessageEnvelope{Message: message})
}
