package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/spicetable/pos-service/internal/models"
)

// errorResponse is the JSON body returned for any failed request
type errorResponse struct {
	Error struct {
		Kind     string `json:"kind"`
		Entity   string `json:"entity,omitempty"`
		EntityID string `json:"entity_id,omitempty"`
		Message  string `json:"message"`
	} `json:"error"`
}

// RespondJSON writes a JSON response with the given status code
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// RespondError maps an error to an HTTP status and JSON error body.
// Domain errors map by kind; anything else is an internal error whose
// details stay in the server log.
func RespondError(w http.ResponseWriter, err error) {
	var body errorResponse

	var de *models.DomainError
	if errors.As(err, &de) {
		body.Error.Kind = string(de.Kind)
		body.Error.Entity = de.Entity
		body.Error.EntityID = de.EntityID
		body.Error.Message = de.Message
		RespondJSON(w, statusForKind(de.Kind), body)
		return
	}

	log.Printf("Internal error: %v", err)
	body.Error.Kind = "INTERNAL"
	body.Error.Message = "internal server error"
	RespondJSON(w, http.StatusInternalServerError, body)
}

// RespondUnauthorized writes a 401 in the API's error envelope
func RespondUnauthorized(w http.ResponseWriter, message string) {
	var body errorResponse
	body.Error.Kind = "UNAUTHORIZED"
	body.Error.Message = message
	RespondJSON(w, http.StatusUnauthorized, body)
}

// RespondForbidden writes a 403 in the API's error envelope
func RespondForbidden(w http.ResponseWriter, message string) {
	var body errorResponse
	body.Error.Kind = "FORBIDDEN"
	body.Error.Message = message
	RespondJSON(w, http.StatusForbidden, body)
}

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case models.KindInvalidState, models.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case models.KindConfiguration:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

var validate = validator.New()

// DecodeAndValidate parses a JSON request body into req and runs its
// validation tags
func DecodeAndValidate(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return models.NewValidationError("invalid request body: %s", err)
	}
	if err := validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return models.NewValidationError("invalid request body")
		}
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return models.NewValidationError("invalid field %s: failed %s validation",
				fields[0].Field(), fields[0].Tag())
		}
		return models.NewValidationError("invalid request body")
	}
	return nil
}
