package poster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Layout controls the poster canvas.
type Layout struct {
	Width   int
	Height  int
	Label   string
	Caption string
}

// Poster areas as fractions of the canvas.
const (
	margin     = 0.05
	artHeight  = 0.70
	markerSize = 0.22
)

var placeholder = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}

func (l Layout) validate() error {
	if l.Width < 200 || l.Height < 200 {
		return fmt.Errorf("poster %dx%d is too small", l.Width, l.Height)
	}
	if l.Label == "" {
		return errors.New("poster label is required")
	}
	return nil
}

// ArtRect is where the artwork is fitted.
func (l Layout) ArtRect() image.Rectangle {
	m := int(float64(l.Width) * margin)
	return image.Rect(m, m, l.Width-m, int(float64(l.Height)*artHeight))
}

// MarkerRect is where the QR marker goes.
func (l Layout) MarkerRect() image.Rectangle {
	m := int(float64(l.Width) * margin)
	side := int(float64(l.Width) * markerSize)
	bottom := l.Height - m
	return image.Rect(m, bottom-side, m+side, bottom)
}

// Compose draws the poster. A nil art leaves a grey placeholder.
func Compose(art image.Image, l Layout) (*image.RGBA, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	xdraw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, xdraw.Src)

	area := l.ArtRect()
	if art == nil {
		xdraw.Draw(canvas, area, image.NewUniform(placeholder), image.Point{}, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(canvas, fit(art.Bounds(), area), art, art.Bounds(), xdraw.Over, nil)
	}

	qr, err := qrcode.New(l.Label, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr marker: %w", err)
	}
	marker := l.MarkerRect()
	code := qr.Image(marker.Dx())
	xdraw.NearestNeighbor.Scale(canvas, marker, code, code.Bounds(), xdraw.Src, nil)

	caption := l.Caption
	if caption == "" {
		caption = l.Label
	}
	drawCaption(canvas, caption, marker)
	return canvas, nil
}

// fit returns the largest rectangle with src's aspect ratio centred in dst.
func fit(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	if sw <= 0 || sh <= 0 {
		return dst
	}
	scale := dw / sw
	if sh*scale > dh {
		scale = dh / sh
	}
	w, h := int(sw*scale), int(sh*scale)
	x := dst.Min.X + (dst.Dx()-w)/2
	y := dst.Min.Y + (dst.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// drawCaption writes text right of the marker, vertically centred on it.
func drawCaption(dst *image.RGBA, text string, marker image.Rectangle) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
	}
	x := marker.Max.X + marker.Dx()/4
	y := marker.Min.Y + marker.Dy()/2 + face.Ascent/2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// WritePNG saves img to path.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
