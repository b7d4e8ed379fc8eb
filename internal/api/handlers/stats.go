package handlers

import (
	"net/http"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/analytics"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

const (
	maxBins    = 500
	maxScatter = 10000
)

// StatsHandler serves chart data and selection options
type StatsHandler struct {
	stats  *analytics.Service
	logger *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *analytics.Service, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: log,
	}
}

// Regions returns mean price per province
// GET /api/stats/regions
func (h *StatsHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.stats.Regions(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, regions)
}

// Prices returns the price histogram
// GET /api/stats/prices?bins=50
func (h *StatsHandler) Prices(w http.ResponseWriter, r *http.Request) {
	bins, ok := queryInt(r, "bins", maxBins)
	if !ok {
		respondError(w, http.StatusBadRequest, "bins must be an integer in [1, 500]")
		return
	}
	hist, err := h.stats.Prices(r.Context(), bins)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, hist)
}

// Scatter returns the area–price sample
// GET /api/stats/scatter?n=1000
func (h *StatsHandler) Scatter(w http.ResponseWriter, r *http.Request) {
	n, ok := queryInt(r, "n", maxScatter)
	if !ok {
		respondError(w, http.StatusBadRequest, "n must be an integer in [1, 10000]")
		return
	}
	points, err := h.stats.Scatter(r.Context(), n)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// Provinces lists provinces
// GET /api/options/provinces
func (h *StatsHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	c, err := h.stats.Catalog()
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Provinces())
}

// Districts lists the districts of a province
// GET /api/options/districts?province=
func (h *StatsHandler) Districts(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	if province == "" {
		respondError(w, http.StatusBadRequest, "province is required")
		return
	}
	c, err := h.stats.Catalog()
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Districts(province))
}

// Neighborhoods lists the neighborhoods of a district
// GET /api/options/neighborhoods?province=&district=
func (h *StatsHandler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	district := r.URL.Query().Get("district")
	if province == "" || district == "" {
		respondError(w, http.StatusBadRequest, "province and district are required")
		return
	}
	c, err := h.stats.Catalog()
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Neighborhoods(province, district))
}

// SellerTypes lists seller types
// GET /api/options/seller-types
func (h *StatsHandler) SellerTypes(w http.ResponseWriter, r *http.Request) {
	c, err := h.stats.Catalog()
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c.SellerTypes())
}
