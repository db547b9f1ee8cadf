package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/constants"
)

//go:embed presets.yaml
var presetsYAML []byte

type Config struct {
	Input   string        `yaml:"input" toml:"input"`
	Output  string        `yaml:"output" toml:"output"`
	Title   string        `yaml:"title" toml:"title"`
	Layout  LayoutConfig  `yaml:"layout" toml:"layout"`
	Web     WebConfig     `yaml:"web" toml:"web"`
	Presets PresetsConfig `yaml:"-" toml:"-"`
}

// LayoutConfig holds the page and grid parameters of a collage.
type LayoutConfig struct {
	PageWidthMM  float64 `yaml:"page_width_mm" toml:"page_width_mm" json:"page_width_mm"`
	PageHeightMM float64 `yaml:"page_height_mm" toml:"page_height_mm" json:"page_height_mm"`
	Cols         int     `yaml:"cols" toml:"cols" json:"cols"`
	Rows         int     `yaml:"rows" toml:"rows" json:"rows"`
	MarginMM     float64 `yaml:"margin_mm" toml:"margin_mm" json:"margin_mm"`
	GapMM        float64 `yaml:"gap_mm" toml:"gap_mm" json:"gap_mm"`
	LowResDPI    float64 `yaml:"low_res_dpi" toml:"low_res_dpi" json:"low_res_dpi"`
}

type WebConfig struct {
	Host       string `yaml:"host" toml:"host"`
	Port       int    `yaml:"port" toml:"port"`
	ImagesRoot string `yaml:"images_root" toml:"images_root"` // directories served by the API must live below this
}

type PresetsConfig struct {
	Presets map[string]Preset `yaml:"presets"`
}

type Preset struct {
	Description string  `yaml:"description" json:"description"`
	Cols        int     `yaml:"cols" json:"cols"`
	Rows        int     `yaml:"rows" json:"rows"`
	MarginMM    float64 `yaml:"margin_mm" json:"margin_mm"`
	GapMM       float64 `yaml:"gap_mm" json:"gap_mm"`
}

// DefaultLayoutConfig returns the A4 portrait 2x3 layout.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageWidthMM:  constants.PageWidthMM,
		PageHeightMM: constants.PageHeightMM,
		Cols:         constants.DefaultCols,
		Rows:         constants.DefaultRows,
		MarginMM:     constants.DefaultMarginMM,
		GapMM:        constants.DefaultGapMM,
		LowResDPI:    constants.LowResDPIThreshold,
	}
}

// Grid converts the configuration into the layout engine's grid.
func (c LayoutConfig) Grid() collage.Grid {
	return collage.Grid{
		PageWidth:  c.PageWidthMM,
		PageHeight: c.PageHeightMM,
		Margin:     c.MarginMM,
		Gap:        c.GapMM,
		Cols:       c.Cols,
		Rows:       c.Rows,
	}
}

// CheckBounds enforces the ranges the front-ends offer:
// cols and rows in [1,10], margin and gap in [0,50] mm.
func (c LayoutConfig) CheckBounds() error {
	if c.Cols < constants.MinGridCells || c.Cols > constants.MaxGridCells {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d",
			collage.ErrInvalidConfiguration, constants.MinGridCells, constants.MaxGridCells, c.Cols)
	}
	if c.Rows < constants.MinGridCells || c.Rows > constants.MaxGridCells {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d",
			collage.ErrInvalidConfiguration, constants.MinGridCells, constants.MaxGridCells, c.Rows)
	}
	if c.MarginMM < constants.MinSpacingMM || c.MarginMM > constants.MaxSpacingMM {
		return fmt.Errorf("%w: margin must be between %.0f and %.0f mm, got %.2f",
			collage.ErrInvalidConfiguration, constants.MinSpacingMM, constants.MaxSpacingMM, c.MarginMM)
	}
	if c.GapMM < constants.MinSpacingMM || c.GapMM > constants.MaxSpacingMM {
		return fmt.Errorf("%w: gap must be between %.0f and %.0f mm, got %.2f",
			collage.ErrInvalidConfiguration, constants.MinSpacingMM, constants.MaxSpacingMM, c.GapMM)
	}
	return nil
}

// ApplyPreset replaces the grid shape and spacing with the preset's values.
func (c *LayoutConfig) ApplyPreset(p Preset) {
	c.Cols = p.Cols
	c.Rows = p.Rows
	c.MarginMM = p.MarginMM
	c.GapMM = p.GapMM
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a non-negative float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envString returns the environment variable or the default when unset.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	defaults := DefaultLayoutConfig()
	return &Config{
		Input:  envString("COLLAGE_INPUT", constants.DefaultInputDir),
		Output: envString("COLLAGE_OUTPUT", constants.DefaultOutputFile),
		Title:  os.Getenv("COLLAGE_TITLE"),
		Layout: LayoutConfig{
			PageWidthMM:  defaults.PageWidthMM,
			PageHeightMM: defaults.PageHeightMM,
			Cols:         envInt("COLLAGE_COLS", defaults.Cols),
			Rows:         envInt("COLLAGE_ROWS", defaults.Rows),
			MarginMM:     envFloat("COLLAGE_MARGIN", defaults.MarginMM),
			GapMM:        envFloat("COLLAGE_GAP", defaults.GapMM),
			LowResDPI:    envFloat("COLLAGE_LOW_RES_DPI", defaults.LowResDPI),
		},
		Web: WebConfig{
			Host:       envString("WEB_HOST", constants.DefaultWebHost),
			Port:       envInt("WEB_PORT", constants.DefaultWebPort),
			ImagesRoot: envString("COLLAGE_IMAGES_ROOT", "."),
		},
		Presets: presets,
	}
}

// LoadFile overlays a YAML (.yaml, .yml) or TOML (.toml) file on top of c.
// Keys missing from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file format %q (use .yaml, .yml or .toml)", ext)
	}
	return nil
}

// GetPreset returns a named preset.
func (c *Config) GetPreset(name string) (Preset, bool) {
	p, ok := c.Presets.Presets[name]
	return p, ok
}

// PresetNames returns the preset names in alphabetical order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets.Presets))
	for name := range c.Presets.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
