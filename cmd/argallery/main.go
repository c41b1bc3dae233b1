package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ivlev/argallery/internal/assets"
	"github.com/ivlev/argallery/internal/config"
	applog "github.com/ivlev/argallery/internal/log"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	assetsPtr := flag.String("assets", "", "Directory with catalog videos (empty: serve the embedded catalog virtually)")
	manifestPtr := flag.String("manifest", "", "Manifest YAML overriding the embedded one")
	backendPtr := flag.String("media", config.BackendSim, "Media backend: sim, probe (ffprobe over -assets)")
	readyDelayPtr := flag.Duration("ready-delay", 0, "sim backend: players become ready on their own after this delay")
	scriptPtr := flag.String("script", "", "Event script to replay (default: newest script in -script-dir, else a walk through the catalog)")
	scriptDirPtr := flag.String("script-dir", "", "Directory searched for the newest script")
	saveScriptPtr := flag.String("save-script", "", "Directory to save the replayed script to")
	timeoutPtr := flag.Duration("timeout", 2*time.Minute, "Maximum run time")
	posterPtr := flag.String("poster", "", "Render the reference poster to this PNG and exit")
	artPtr := flag.String("art", "", "Poster artwork: PDF, PNG or JPEG (default: newest in input/)")
	posterWPtr := flag.Int("poster-width", 1240, "Poster width in pixels")
	posterHPtr := flag.Int("poster-height", 1754, "Poster height in pixels")
	dpiPtr := flag.Int("dpi", 150, "DPI used to render PDF artwork")
	levelPtr := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	jsonPtr := flag.Bool("log-json", false, "Log JSON lines instead of console output")
	statsPtr := flag.Bool("stats", false, "Print a run report")
	versionPtr := flag.Bool("version", false, "Print the version and exit")

	flag.Parse()

	if *versionPtr {
		fmt.Println(version)
		return
	}

	cfg := &config.Config{
		AssetDir:      *assetsPtr,
		ManifestPath:  *manifestPtr,
		MediaBackend:  *backendPtr,
		ReadyDelay:    *readyDelayPtr,
		ScriptPath:    *scriptPtr,
		ScriptDir:     *scriptDirPtr,
		ScriptSaveDir: *saveScriptPtr,
		Timeout:       *timeoutPtr,
		PosterOutput:  *posterPtr,
		PosterArt:     *artPtr,
		PosterWidth:   *posterWPtr,
		PosterHeight:  *posterHPtr,
		PosterDPI:     *dpiPtr,
		LogLevel:      *levelPtr,
		LogJSON:       *jsonPtr,
		ShowStats:     *statsPtr,
		BuildVersion:  version,
	}

	if err := applog.Setup(cfg.LogLevel, cfg.LogJSON); err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		os.Exit(2)
	}
	logger := applog.L()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	manifest, err := loadManifest(cfg.ManifestPath)
	if err != nil {
		// No poster to track means nothing can ever start.
		logger.Fatal().Err(err).Msg("tracking configuration unavailable")
	}

	if cfg.PosterMode() {
		if err := renderPoster(cfg, manifest); err != nil {
			logger.Fatal().Err(err).Msg("poster")
		}
		fmt.Printf("[+] Poster written: %s\n", cfg.PosterOutput)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := run(ctx, cfg, manifest)
	if cfg.ShowStats {
		printReport(ctx, cfg, res)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
	logger.Info().Int("steps", res.Steps).Str("video", res.Final.Video).Msg("run complete")
}

func loadManifest(path string) (*assets.Manifest, error) {
	if path == "" {
		return assets.DefaultManifest()
	}
	return assets.LoadManifest(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
