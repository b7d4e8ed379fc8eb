package handlers

import (
	"net/http"
	"time"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/forest"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/modelconfig"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// defaultTopImportances columns listed by GET /api/model
const defaultTopImportances = 10

// ModelHandler handles model info and refresh endpoints
type ModelHandler struct {
	service    *estimation.Service
	loader     estimation.Loader
	config     *modelconfig.Config
	configYAML []byte
	logger     *logger.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(
	service *estimation.Service,
	loader estimation.Loader,
	cfg *modelconfig.Config,
	configYAML []byte,
	log *logger.Logger,
) *ModelHandler {
	return &ModelHandler{
		service:    service,
		loader:     loader,
		config:     cfg,
		configYAML: configYAML,
		logger:     log,
	}
}

// ModelInfo describes the model in service
type ModelInfo struct {
	Version     string                         `json:"version"`
	TrainedAt   time.Time                      `json:"trained_at"`
	Source      string                         `json:"source"`
	Records     int                            `json:"records"`
	Columns     int                            `json:"columns"`
	Cleaning    normalize.Report               `json:"cleaning"`
	Forest      forest.Config                  `json:"forest"`
	Importances []estimation.FeatureImportance `json:"importances"`
	Config      *modelconfig.TrainingSnapshot  `json:"config"`
}

// Info returns the current model
// GET /api/model?top=10
func (h *ModelHandler) Info(w http.ResponseWriter, r *http.Request) {
	top, ok := queryInt(r, "top", 1000)
	if !ok {
		respondError(w, http.StatusBadRequest, "top must be an integer in [1, 1000]")
		return
	}
	if top == 0 {
		top = defaultTopImportances
	}

	tm := h.service.Current()
	if tm == nil {
		respondError(w, http.StatusServiceUnavailable, "Model is not trained yet")
		return
	}

	snapshot, err := modelconfig.NewTrainingSnapshot(h.config, h.configYAML, tm.Version())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	snapshot.CreatedAt = tm.TrainedAt()

	respondJSON(w, http.StatusOK, ModelInfo{
		Version:     tm.Version(),
		TrainedAt:   tm.TrainedAt(),
		Source:      h.loader.Name(),
		Records:     len(tm.Records()),
		Columns:     tm.Space().Len(),
		Cleaning:    tm.Report(),
		Forest:      tm.ForestConfig(),
		Importances: tm.Importances(top),
		Config:      snapshot,
	})
}

// RefreshResponse reports whether the model was replaced
type RefreshResponse struct {
	Changed bool   `json:"changed"`
	Version string `json:"version"`
}

// Refresh reloads the dataset and retrains if it changed
// POST /api/model/refresh
func (h *ModelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.WithField("source", h.loader.Name()).Info("Model refresh triggered")

	changed, err := h.service.Reload(r.Context(), h.loader)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	resp := RefreshResponse{Changed: changed}
	if tm := h.service.Current(); tm != nil {
		resp.Version = tm.Version()
	}
	respondJSON(w, http.StatusOK, resp)
}
