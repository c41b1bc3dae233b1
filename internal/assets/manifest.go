package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Manifest is the build-time description of the bundle.
type Manifest struct {
	PosterLabel string      `yaml:"poster_label"`
	VideoExt    string      `yaml:"video_ext"`
	Surface     SurfaceSize `yaml:"surface"`
	Videos      []string    `yaml:"videos"`
}

// SurfaceSize is the video plane extent in meters.
type SurfaceSize struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// DefaultManifest decodes the manifest embedded in the binary.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(defaultManifest)
}

// LoadManifest reads and validates a manifest from fsys.
func LoadManifest(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.VideoExt == "" {
		m.VideoExt = "mp4"
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the invariants the gallery relies on.
func (m *Manifest) Validate() error {
	if m.PosterLabel == "" {
		return errors.New("manifest: poster_label is required")
	}
	if len(m.Videos) == 0 {
		return errors.New("manifest: video catalog is empty")
	}
	if m.Surface.Width <= 0 || m.Surface.Height <= 0 {
		return fmt.Errorf("manifest: invalid surface size %gx%g", m.Surface.Width, m.Surface.Height)
	}
	seen := make(map[string]bool, len(m.Videos))
	for _, v := range m.Videos {
		if v == "" {
			return errors.New("manifest: empty video id")
		}
		if seen[v] {
			return fmt.Errorf("manifest: duplicate video id %q", v)
		}
		seen[v] = true
	}
	return nil
}
