package main

import (
	"encoding/json"
	"net/http"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondResult wraps a successful payload in the response envelope.
func respondResult(w http.ResponseWriter, result interface{}) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// respondTimedResult is respondResult with the elapsed pipeline time included
// at the envelope level.
func respondTimedResult(w http.ResponseWriter, result interface{}, processingMs int64) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"result":           result,
		"processingTimeMs": processingMs,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondGatewayError maps a pipeline error to an HTTP status by its kind.
func respondGatewayError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}

// respondTimedGatewayError is respondGatewayError with the elapsed pipeline
// time included, so callers learn how long the failed run took.
func respondTimedGatewayError(w http.ResponseWriter, err error, processingMs int64) {
	respondJSON(w, statusForError(err), map[string]interface{}{
		"success":          false,
		"error":            err.Error(),
		"processingTimeMs": processingMs,
	})
}

func statusForError(err error) int {
	switch gateway.KindOf(err) {
	case gateway.KindValidation:
		return http.StatusBadRequest
	case gateway.KindConfiguration:
		return http.StatusInternalServerError
	case gateway.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// decodeRequest parses a JSON request body into dst, enforcing a size cap.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}
