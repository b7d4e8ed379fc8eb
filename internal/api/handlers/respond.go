package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps domain errors to status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var queryErr *contracts.QueryError
	var loadErr *contracts.DataLoadError
	var insufficient *contracts.InsufficientDataError

	switch {
	case errors.As(err, &queryErr):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": queryErr.Error(),
			"field": queryErr.Field,
		})
	case errors.Is(err, contracts.ErrNoModel):
		respondError(w, http.StatusServiceUnavailable, "Model is not trained yet")
	case errors.As(err, &loadErr):
		log.WithError(err).Error("Dataset load failed")
		respondError(w, http.StatusBadGateway, "Failed to load dataset")
	case errors.As(err, &insufficient):
		log.WithError(err).Warn("Dataset has no usable records")
		respondError(w, http.StatusUnprocessableEntity, insufficient.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryInt parses an optional integer query parameter within [1, max]
func queryInt(r *http.Request, name string, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > max {
		return 0, false
	}
	return v, true
}
