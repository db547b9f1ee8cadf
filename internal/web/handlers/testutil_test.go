package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photo-collage/internal/config"
	"github.com/kozaktomas/photo-collage/internal/generator"
)

// testConfig creates a config rooted at a temporary images directory
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.Layout = config.DefaultLayoutConfig()
	cfg.Title = ""
	cfg.Web.ImagesRoot = t.TempDir()
	return cfg
}

// testCollageHandler creates a handler that logs nowhere
func testCollageHandler(cfg *config.Config) *CollageHandler {
	logger := log.New(io.Discard)
	return NewCollageHandler(cfg, generator.New(logger), logger)
}

// writeTestImages writes small PNG files into root/dir
func writeTestImages(t *testing.T, root, dir string, names ...string) {
	t.Helper()
	target := filepath.Join(root, dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", target, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := range 30 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{200, 120, 40, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(target, name), buf.Bytes(), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// jsonRequest creates a POST request with body encoded as JSON
func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
