package config

import (
	"errors"
	"fmt"
	"time"
)

// Media backends.
const (
	BackendSim   = "sim"
	BackendProbe = "probe"
)

type Config struct {
	// AssetDir holds the catalog videos. Empty means the embedded manifest
	// is served virtually.
	AssetDir     string
	ManifestPath string
	MediaBackend string
	ReadyDelay   time.Duration

	ScriptPath    string
	ScriptDir     string
	ScriptSaveDir string
	Timeout       time.Duration

	PosterOutput string
	PosterArt    string
	PosterWidth  int
	PosterHeight int
	PosterDPI    int

	LogLevel     string
	LogJSON      bool
	ShowStats    bool
	BuildVersion string
}

// PosterMode reports whether the run renders the reference poster instead
// of replaying a script.
func (c *Config) PosterMode() bool {
	return c.PosterOutput != ""
}

func (c *Config) Validate() error {
	switch c.MediaBackend {
	case BackendSim:
	case BackendProbe:
		if c.AssetDir == "" {
			return errors.New("probe backend needs -assets")
		}
	default:
		return fmt.Errorf("unknown media backend %q", c.MediaBackend)
	}
	if c.ReadyDelay < 0 {
		return errors.New("ready delay must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.PosterMode() {
		if c.PosterWidth < 200 || c.PosterHeight < 200 {
			return fmt.Errorf("poster %dx%d is too small", c.PosterWidth, c.PosterHeight)
		}
		if c.PosterDPI <= 0 {
			return errors.New("poster dpi must be positive")
		}
	}
	return nil
}
