package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-collage/internal/config"
	"github.com/kozaktomas/photo-collage/internal/constants"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Defaults config.LayoutConfig      `json:"defaults"`
	Bounds   Bounds                   `json:"bounds"`
	Presets  map[string]config.Preset `json:"presets"`
}

// Bounds are the parameter ranges accepted by the API.
type Bounds struct {
	MinCells     int     `json:"min_cells"`
	MaxCells     int     `json:"max_cells"`
	MinSpacingMM float64 `json:"min_spacing_mm"`
	MaxSpacingMM float64 `json:"max_spacing_mm"`
}

// Get returns the layout defaults, accepted ranges and presets
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	presets := h.config.Presets.Presets
	if presets == nil {
		presets = map[string]config.Preset{}
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		Defaults: h.config.Layout,
		Bounds: Bounds{
			MinCells:     constants.MinGridCells,
			MaxCells:     constants.MaxGridCells,
			MinSpacingMM: constants.MinSpacingMM,
			MaxSpacingMM: constants.MaxSpacingMM,
		},
		Presets: presets,
	})
}
