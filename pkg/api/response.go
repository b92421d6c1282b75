package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// WriteSuccessResponse writes a successful JSON response
func WriteSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSONResponse(w, statusCode, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteErrorResponse writes an error JSON response
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	response := models.APIResponse{
		Success: false,
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}
	writeJSONResponse(w, statusCode, response)
}

// WriteValidationErrorResponse writes the fields that failed validation.
func WriteValidationErrorResponse(w http.ResponseWriter, message string, errs models.ValidationErrors) {
	writeJSONResponse(w, http.StatusBadRequest, models.APIResponse{
		Success: false,
		Message: message,
		Data:    map[string]interface{}{"validation_errors": errs},
		Error:   errs.Error(),
	})
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Err(err).
			Int("status_code", statusCode).
			Msg("Failed to encode JSON response")
	}
}
