// Package poster renders the printable reference poster the tracker is
// trained on: the artwork, a QR marker carrying the poster label and a
// caption.
package poster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Art is the artwork printed on the poster.
type Art interface {
	Render(dpi int) (image.Image, error)
	Close() error
}

// OpenArt picks an Art implementation by file extension.
func OpenArt(path string) (Art, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFArt(path)
	case ".png", ".jpg", ".jpeg":
		return NewImageArt(path)
	default:
		return nil, fmt.Errorf("unsupported artwork %s", path)
	}
}

// PDFArt renders the first page of a PDF.
type PDFArt struct {
	doc *fitz.Document
}

func NewPDFArt(path string) (*PDFArt, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("%s has no pages", path)
	}
	return &PDFArt{doc: doc}, nil
}

func (a *PDFArt) Render(dpi int) (image.Image, error) {
	return a.doc.ImageDPI(0, float64(dpi))
}

func (a *PDFArt) Close() error {
	return a.doc.Close()
}

// ImageArt is a PNG or JPEG file. DPI is ignored.
type ImageArt struct {
	path string
}

func NewImageArt(path string) (*ImageArt, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &ImageArt{path: path}, nil
}

func (a *ImageArt) Render(int) (image.Image, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.path, err)
	}
	return img, nil
}

func (a *ImageArt) Close() error { return nil }
