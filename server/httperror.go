package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"dhammasound/logger"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPError is a failure that already knows its transport mapping.
// Handlers raise it; writeError is the single place that serializes it.
type HTTPError struct {
	Code    int
	Message string
	Fields  []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// BadRequest is a 400 with a plain message.
func BadRequest(message string) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message}
}

// ValidationFailed is a 422 carrying field-level detail. The detail is
// preserved all the way to the response body.
func ValidationFailed(fields []FieldError) *HTTPError {
	return &HTTPError{Code: http.StatusUnprocessableEntity, Message: "ข้อมูลไม่ถูกต้อง กรุณาตรวจสอบข้อมูลและลองใหม่อีกครั้ง", Fields: fields}
}

// Unauthorized is a 401.
func Unauthorized(message string) *HTTPError {
	return &HTTPError{Code: http.StatusUnauthorized, Message: message}
}

// Forbidden is a 403.
func Forbidden(message string) *HTTPError {
	return &HTTPError{Code: http.StatusForbidden, Message: message}
}

// NotFound is a 404.
func NotFound(message string) *HTTPError {
	return &HTTPError{Code: http.StatusNotFound, Message: message}
}

// Conflict is a 409.
func Conflict(message string) *HTTPError {
	return &HTTPError{Code: http.StatusConflict, Message: message}
}

// errorBody is the JSON envelope every failure is reported in.
type errorBody struct {
	Code   int          `json:"code"`
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// writeError maps any error onto the response. Unexpected errors become a
// 500; their detail is only exposed outside production mode.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, errorBody{
			Code:   httpErr.Code,
			Error:  httpErr.Message,
			Fields: httpErr.Fields,
		})
		return
	}

	logger.Error("unexpected error", logger.ErrorField(err))
	body := errorBody{Code: http.StatusInternalServerError, Error: "Something went wrong"}
	if h.cfg.AppMode != "production" {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}
