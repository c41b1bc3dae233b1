package poster

import (
	"image"
	"image/color"
	"math"
)

// MinDetail is the edge density below which artwork tends to track poorly.
const MinDetail = 0.02

// EdgeThreshold is the Sobel gradient magnitude counted as an edge.
const EdgeThreshold = 30.0

// Detail returns the fraction of pixels inside r that lie on an edge.
// Image trackers need texture; flat artwork scores near zero.
func Detail(img image.Image, r image.Rectangle) float64 {
	r = r.Intersect(img.Bounds())
	if r.Dx() < 3 || r.Dy() < 3 {
		return 0
	}
	gray := grayscale(img, r)

	edges, total := 0, 0
	for y := r.Min.Y + 1; y < r.Max.Y-1; y++ {
		for x := r.Min.X + 1; x < r.Max.X-1; x++ {
			total++
			if sobel(gray, x, y) > EdgeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(total)
}

func grayscale(img image.Image, r image.Rectangle) *image.Gray {
	gray := image.NewGray(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// sobel returns the gradient magnitude at (x, y).
func sobel(g *image.Gray, x, y int) float64 {
	var gx, gy float64
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			p := float64(g.GrayAt(x+kx, y+ky).Y)
			gx += p * sobelX[ky+1][kx+1]
			gy += p * sobelY[ky+1][kx+1]
		}
	}
	return math.Hypot(gx, gy)
}
