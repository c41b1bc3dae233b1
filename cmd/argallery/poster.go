package main

import (
	"image"

	"github.com/ivlev/argallery/internal/assets"
	"github.com/ivlev/argallery/internal/config"
	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/poster"
	"github.com/ivlev/argallery/internal/system"
)

const artDir = "input"

// renderPoster writes the reference poster for the manifest's label.
func renderPoster(cfg *config.Config, m *assets.Manifest) error {
	logger := applog.L()

	artPath := cfg.PosterArt
	if artPath == "" {
		latest, err := system.FindLatest(artDir, ".pdf", ".png", ".jpg", ".jpeg")
		if err != nil {
			logger.Warn().Err(err).Msg("no artwork found, using a placeholder")
		} else {
			artPath = latest
			logger.Info().Str("art", artPath).Msg("artwork selected")
		}
	}

	var img image.Image
	if artPath != "" {
		art, err := poster.OpenArt(artPath)
		if err != nil {
			return err
		}
		defer art.Close()

		img, err = art.Render(cfg.PosterDPI)
		if err != nil {
			return err
		}
	}

	canvas, err := poster.Compose(img, poster.Layout{
		Width:   cfg.PosterWidth,
		Height:  cfg.PosterHeight,
		Label:   m.PosterLabel,
		Caption: m.PosterLabel + " / " + cfg.BuildVersion,
	})
	if err != nil {
		return err
	}

	layout := poster.Layout{Width: cfg.PosterWidth, Height: cfg.PosterHeight}
	if d := poster.Detail(canvas, layout.ArtRect()); d < poster.MinDetail {
		logger.Warn().Float64("detail", d).Msg("artwork has little texture and may track poorly")
	}
	return poster.WritePNG(canvas, cfg.PosterOutput)
}
