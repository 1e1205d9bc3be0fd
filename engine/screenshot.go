package engine

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// writePNG saves tightly packed RGBA pixels as a PNG file.
func writePNG(path string, pixels []byte, width, height int) error {
	if len(pixels) < width*height*4 {
		return fmt.Errorf("pixel buffer too small: %d bytes for %dx%d", len(pixels), width, height)
	}

	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
