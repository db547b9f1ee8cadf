// Package imagesource lists the images of a directory together with their
// pixel dimensions, in the order they are laid out in the collage.
package imagesource

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-collage/internal/collage"
)

// supportedExtensions are matched case-insensitively.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsSupported reports whether name has an image extension the collage can embed.
func IsSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// SortKey returns the key images are ordered by: the NFC form of the name,
// so decomposed names (as stored by some filesystems) sort like composed ones.
func SortKey(name string) string {
	return norm.NFC.String(name)
}

// Scan returns all supported images in dir, sorted by file name.
// An empty result is not an error; the caller decides how to report it.
func Scan(dir string) ([]collage.Image, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", collage.ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", collage.ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !IsSupported(e.Name()) || !isRegularFile(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.SliceStable(names, func(i, j int) bool {
		ki, kj := SortKey(names[i]), SortKey(names[j])
		if ki != kj {
			return ki < kj
		}
		return names[i] < names[j]
	})

	images := make([]collage.Image, 0, len(names))
	for _, name := range names {
		img, err := Inspect(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// isRegularFile reports whether e is a regular file, following symlinks.
// Directories, dangling links and links to directories are skipped.
func isRegularFile(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Inspect reads the header of one image file and returns its dimensions.
func Inspect(path string) (collage.Image, error) {
	name := filepath.Base(path)
	f, err := os.Open(path) //nolint:gosec // path comes from a directory listing
	if err != nil {
		return collage.Image{}, fmt.Errorf("%w: %s: %w", collage.ErrInvalidImage, name, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return collage.Image{}, fmt.Errorf("%w: %s: failed to decode image config: %w", collage.ErrInvalidImage, name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return collage.Image{}, fmt.Errorf("%w: %s has zero size (%dx%d)", collage.ErrInvalidImage, name, cfg.Width, cfg.Height)
	}

	return collage.Image{
		ID:     name,
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
