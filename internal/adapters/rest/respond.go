package rest

import (
	"errors"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

const (
	errCodeInvalidInput = "INVALID_INPUT"
	errCodeNoValidSongs = "NO_VALID_SONGS"
	errCodeInternal     = "INTERNAL"
)

// maxBodyBytes bounds request bodies; seed lists and id lists are small.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps domain errors onto status codes. Internal failures
// are logged by the caller and hidden from the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var invalid domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeErrorWithCode(w, http.StatusBadRequest, invalid.Error(), errCodeInvalidInput)
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorWithCode(w, http.StatusBadRequest, domain.ErrInvalidInput.Error(), errCodeInvalidInput)
	case errors.Is(err, domain.ErrNoMatch):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, domain.ErrNoMatch.Error(), errCodeNoValidSongs)
	default:
		writeErrorWithCode(w, http.StatusInternalServerError, "internal server error", errCodeInternal)
	}
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNoMatch)
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
