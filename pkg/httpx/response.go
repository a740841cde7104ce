package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Response is the uniform envelope every public operation returns. The
// HTTP status code carries transport semantics; Status carries the
// operation outcome.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func WriteSuccess(w http.ResponseWriter, message string, data any, code int) error {
	return WriteJSON(w, Response{Status: StatusSuccess, Message: message, Data: data}, code)
}

func WriteFailure(w http.ResponseWriter, message string, code int) error {
	return WriteJSON(w, Response{Status: StatusFailure, Message: message}, code)
}

// ValidationErrorResponse contains field-specific validation messages
// swagger:model ValidationErrorResponse
type ValidationErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func WriteValidationError(w http.ResponseWriter, err error) error {
	res := ValidationErrorResponse{
		Status:  StatusFailure,
		Message: "invalid request",
		Fields:  make(map[string]string),
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, err := range ve {
			field := err.Field()
			res.Fields[field] = err.Tag()
		}
	}

	return WriteJSON(w, res, http.StatusBadRequest)
}
