package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/config"
	"github.com/kozaktomas/photo-collage/internal/constants"
	"github.com/kozaktomas/photo-collage/internal/generator"
)

// CollageIDHeader carries the id assigned to every layout or collage request.
const CollageIDHeader = "X-Collage-ID"

// CollageHandler lays out and renders folders below the configured images root.
type CollageHandler struct {
	config    *config.Config
	generator *generator.Generator
	logger    *log.Logger
}

// NewCollageHandler creates a new collage handler
func NewCollageHandler(cfg *config.Config, gen *generator.Generator, logger *log.Logger) *CollageHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CollageHandler{config: cfg, generator: gen, logger: logger}
}

// CollageRequest selects a folder and optionally overrides the layout.
// Unset fields keep the server defaults, or the preset's values.
type CollageRequest struct {
	Dir      string   `json:"dir"`
	Preset   string   `json:"preset,omitempty"`
	Cols     *int     `json:"cols,omitempty"`
	Rows     *int     `json:"rows,omitempty"`
	MarginMM *float64 `json:"margin_mm,omitempty"`
	GapMM    *float64 `json:"gap_mm,omitempty"`
	Title    string   `json:"title,omitempty"`
}

// LayoutResponse is returned by the layout endpoint. Image paths are
// relative to the images root.
type LayoutResponse struct {
	ID         string                `json:"id"`
	Grid       collage.Grid          `json:"grid"`
	Pages      int                   `json:"pages"`
	Placements []collage.Placement   `json:"placements"`
	Report     *collage.ExportReport `json:"report"`
}

// Layout computes placements without rendering.
func (h *CollageHandler) Layout(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(CollageIDHeader, id)

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	plan, dir, err := h.plan(req)
	if err != nil {
		h.fail(w, id, req, err)
		return
	}

	placements := make([]collage.Placement, len(plan.Placements))
	for i, p := range plan.Placements {
		if rel, err := filepath.Rel(dir, p.Image.Path); err == nil {
			p.Image.Path = filepath.ToSlash(filepath.Join(req.Dir, rel))
		}
		placements[i] = p
	}

	h.logger.Info("Layout computed", "id", id, "dir", sanitizeForLog(req.Dir),
		"images", len(placements), "pages", plan.Pages())
	respondJSON(w, http.StatusOK, LayoutResponse{
		ID:         id,
		Grid:       plan.Grid,
		Pages:      plan.Pages(),
		Placements: placements,
		Report:     plan.Report,
	})
}

// Collage renders the folder and returns the PDF.
func (h *CollageHandler) Collage(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(CollageIDHeader, id)

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	plan, _, err := h.plan(req)
	if err != nil {
		h.fail(w, id, req, err)
		return
	}

	title := req.Title
	if title == "" {
		title = h.config.Title
	}

	// Rendered into memory first so a failed run never sends a partial PDF.
	var buf bytes.Buffer
	if _, err := h.generator.Stream(r.Context(), plan, title, &buf); err != nil {
		h.fail(w, id, req, err)
		return
	}

	h.logger.Info("Collage rendered", "id", id, "dir", sanitizeForLog(req.Dir),
		"images", len(plan.Placements), "pages", plan.Pages(), "bytes", buf.Len())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdfFilename(req.Dir)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *CollageHandler) decode(w http.ResponseWriter, r *http.Request) (CollageRequest, bool) {
	var req CollageRequest
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return req, false
	}
	return req, true
}

// plan resolves the request into a layout and computes it.
func (h *CollageHandler) plan(req CollageRequest) (*generator.Plan, string, error) {
	dir, err := resolveDir(h.config.Web.ImagesRoot, req.Dir)
	if err != nil {
		return nil, "", err
	}
	layout, err := h.layoutFor(req)
	if err != nil {
		return nil, "", err
	}
	plan, err := h.generator.Plan(dir, layout)
	if err != nil {
		return nil, "", err
	}
	return plan, dir, nil
}

func (h *CollageHandler) layoutFor(req CollageRequest) (config.LayoutConfig, error) {
	layout := h.config.Layout
	if req.Preset != "" {
		preset, ok := h.config.GetPreset(req.Preset)
		if !ok {
			return layout, fmt.Errorf("%w: unknown preset %q", collage.ErrInvalidConfiguration, req.Preset)
		}
		layout.ApplyPreset(preset)
	}
	if req.Cols != nil {
		layout.Cols = *req.Cols
	}
	if req.Rows != nil {
		layout.Rows = *req.Rows
	}
	if req.MarginMM != nil {
		layout.MarginMM = *req.MarginMM
	}
	if req.GapMM != nil {
		layout.GapMM = *req.GapMM
	}
	if err := layout.CheckBounds(); err != nil {
		return layout, err
	}
	return layout, nil
}

func (h *CollageHandler) fail(w http.ResponseWriter, id string, req CollageRequest, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Collage request failed", "id", id, "dir", sanitizeForLog(req.Dir), "err", err)
		respondError(w, status, "failed to render collage")
		return
	}
	h.logger.Warn("Collage request rejected", "id", id, "dir", sanitizeForLog(req.Dir), "err", err)
	respondError(w, status, h.publicMessage(err))
}

// publicMessage returns err's message with the images root stripped, so
// clients see the paths they asked for and not where they live on disk.
func (h *CollageHandler) publicMessage(err error) string {
	msg := err.Error()
	root, absErr := filepath.Abs(h.config.Web.ImagesRoot)
	if absErr != nil {
		return msg
	}
	roots := []string{root}
	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
		roots = append(roots, resolved)
	}
	// Longest first, one form may end with the other.
	sort.Slice(roots, func(i, j int) bool { return len(roots[i]) > len(roots[j]) })
	for _, r := range roots {
		msg = strings.ReplaceAll(msg, r+string(filepath.Separator), "")
		msg = strings.ReplaceAll(msg, r, ".")
	}
	return msg
}

// resolveDir joins dir onto root and rejects results that escape root,
// including through symlinks.
func resolveDir(root, dir string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving images root: %w", err)
	}
	if realRoot, err := filepath.EvalSymlinks(rootAbs); err == nil {
		rootAbs = realRoot
	}

	target := filepath.Join(rootAbs, filepath.FromSlash(dir))
	if !within(rootAbs, target) {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, dir)
	}

	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		if os.IsNotExist(err) {
			// Reported as not found by the scan.
			return target, nil
		}
		return "", fmt.Errorf("resolving %q: %w", dir, err)
	}
	if !within(rootAbs, resolved) {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, dir)
	}
	return resolved, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// pdfFilename names the download after the requested folder.
func pdfFilename(dir string) string {
	name := filepath.Base(filepath.Clean("/" + filepath.FromSlash(dir)))
	if name == "/" || name == "." || name == string(filepath.Separator) {
		return "collage.pdf"
	}
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, name) + ".pdf"
}
