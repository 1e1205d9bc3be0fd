// package texture packs scene textures into a flat atlas: one RGBA pixel
// buffer plus per-texture descriptors, both uploaded as storage buffers so
// the compute kernel can sample without texture arrays.
package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("texture")

// Info is the metadata for a single texture in the atlas. 16 bytes, matching
// the WGSL TextureInfo struct.
type Info struct {
	Width  uint32
	Height uint32

	// Offset is the pixel offset into the atlas pixel buffer.
	Offset uint32

	Pad uint32
}

// Atlas is a flat texture atlas: all textures packed into a single RGBA u32
// pixel buffer (0xAABBGGRR).
type Atlas struct {
	Pixels []uint32
	Infos  []Info
}

// NewAtlas returns an atlas whose slot 0 is a 1x1 gray fallback so a valid
// descriptor always exists.
func NewAtlas() *Atlas {
	return &Atlas{
		Pixels: []uint32{0xFF808080},
		Infos:  []Info{{Width: 1, Height: 1}},
	}
}

// LoadTexture decodes an image from disk, appends it to the atlas, and
// returns its ID. PNG, JPEG, BMP and TIFF are supported.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - int32: the atlas ID usable as a material texture_id
//   - error: a wrapped open or decode error
func (a *Atlas) LoadTexture(path string) (int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())
	offset := uint32(len(a.Pixels))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, alpha := img.At(x, y).RGBA()
			a.Pixels = append(a.Pixels, packRGBA(
				uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(alpha>>8),
			))
		}
	}

	id := int32(len(a.Infos))
	a.Infos = append(a.Infos, Info{Width: width, Height: height, Offset: offset})

	logger.Infof("Loaded texture '%s' (%dx%d) as ID %d", path, width, height, id)
	return id, nil
}

// BuildCache loads every distinct texture path in paths, returning the
// path→ID map. Failures are logged once and the path maps to nothing, which
// leaves the material untextured.
func BuildCache(a *Atlas, paths []string) map[string]int32 {
	cache := make(map[string]int32)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := cache[p]; ok {
			continue
		}
		id, err := a.LoadTexture(p)
		if err != nil {
			logger.Warningf("Failed to load texture '%s': %v", p, err)
			continue
		}
		cache[p] = id
	}
	return cache
}

func packRGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}
