package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/models/dto"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pagination *dto.Pagination `json:"pagination,omitempty"`
}

// JSON writes a success response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	Write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Paged writes one page of a listing together with its pagination metadata.
func Paged(w http.ResponseWriter, data any, p dto.Pagination) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Error writes a failure envelope with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Error: message})
}

// Err renders err through its apperror kind. Anything that is not an
// apperror becomes a generic 500 and is logged; with debug set the cause is
// echoed back in message.
func Err(w http.ResponseWriter, log logrus.FieldLogger, err error, debug bool) {
	appErr := apperror.From(err)
	env := Envelope{Error: appErr.Message}
	if appErr.Kind == apperror.KindInternal {
		log.WithError(err).Error("request failed")
		if debug {
			env.Message = err.Error()
		}
	}
	Write(w, appErr.Status(), env)
}

// Write encodes payload with the given status.
func Write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("respond: encode payload failed")
	}
}
