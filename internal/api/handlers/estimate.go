package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/similar"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// EstimateHandler handles price estimation endpoints
// ⭐ SSOT: 추정 API 핸들러는 이 구조체에서만
type EstimateHandler struct {
	service *estimation.Service
	similar similar.Options
	logger  *logger.Logger
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(service *estimation.Service, similarOpts similar.Options, log *logger.Logger) *EstimateHandler {
	return &EstimateHandler{
		service: service,
		similar: similarOpts,
		logger:  log,
	}
}

// EstimateResponse is the estimate plus comparable listings from the same model snapshot
type EstimateResponse struct {
	Price        float64                 `json:"price"`
	ModelVersion string                  `json:"model_version"`
	Similar      []contracts.HouseRecord `json:"similar"`
}

// Estimate predicts the price of one house
// POST /api/estimate
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var q contracts.Query
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&q); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	price, tm, err := h.service.Estimate(q)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, EstimateResponse{
		Price:        price,
		ModelVersion: tm.Version(),
		Similar:      similar.Find(tm.Records(), similar.FromQuery(q), h.similar),
	})
}

// Similar lists comparable listings without estimating
// GET /api/similar?province=&district=&neighborhood=&area=
func (h *EstimateHandler) Similar(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	c := similar.Criteria{
		Province:     params.Get("province"),
		District:     params.Get("district"),
		Neighborhood: params.Get("neighborhood"),
	}
	if c.Province == "" || c.District == "" {
		respondError(w, http.StatusBadRequest, "province and district are required")
		return
	}
	area, err := strconv.ParseFloat(params.Get("area"), 64)
	if err != nil || area <= 0 {
		respondError(w, http.StatusBadRequest, "area must be a positive number")
		return
	}
	c.Area = area

	tm := h.service.Current()
	if tm == nil {
		respondServiceError(w, h.logger, contracts.ErrNoModel)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model_version": tm.Version(),
		"similar":       similar.Find(tm.Records(), c, h.similar),
	})
}
