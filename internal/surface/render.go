package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Render converts the height map to a grayscale image, darkest at the
// lowest sample and brightest at the highest. Row 0 of the map is the
// front of the stock and is drawn at the bottom of the image.
func Render(hm *HeightMap) *image.Gray {
	cols, rows := hm.Config.Cols(), hm.Config.Rows()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	min, max := hm.MinMax()
	span := max - min
	if span <= 0 {
		span = 1
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v := (hm.At(col, row) - min) / span
			img.SetGray(col, rows-1-row, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img
}

// WritePNG renders the height map and writes it as a PNG, resampled so
// the longer side is maxDim pixels. maxDim <= 0 keeps the native grid
// resolution.
func WritePNG(hm *HeightMap, path string, maxDim int) error {
	img := Render(hm)

	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewGray(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %v", path, err)
	}
	return f.Close()
}
