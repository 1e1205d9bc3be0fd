package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GpuShape is the 112-byte tagged shape record. Layout and field packing
// must match the WGSL Figure struct exactly: seven 16-byte rows.
type GpuShape struct {
	ShapeType   uint32
	MaterialIdx uint32
	Radius      float32
	Radius2     float32

	Position [3]float32
	Height   float32

	Normal [3]float32
	CsgOp  uint32

	Rotation     [3]float32
	TextureScale float32

	V0   [3]float32
	Pad2 float32

	V1   [3]float32
	Pad3 float32

	V2   [3]float32
	Pad4 float32
}

// GpuMaterial is the 48-byte material record matching the WGSL Material
// struct layout.
type GpuMaterial struct {
	BaseColor        [3]float32
	Metallic         float32
	Emission         [3]float32
	Roughness        float32
	EmissionStrength float32
	IOR              float32
	Transmission     float32
	TextureID        int32
}

// LowerMaterial converts a scene material to its GPU record. Roughness is
// clamped to 0.04 to avoid the GGX normal distribution singularity.
func LowerMaterial(m *Material) GpuMaterial {
	return GpuMaterial{
		BaseColor:        m.BaseColor,
		Metallic:         m.Metallic,
		Emission:         m.Emission,
		Roughness:        float32(math.Max(float64(m.Roughness), 0.04)),
		EmissionStrength: m.EmissionStrength,
		IOR:              m.IOR,
		Transmission:     m.Transmission,
		TextureID:        m.TextureID,
	}
}

// LowerShape converts a scene shape to its GPU record. Fractals pack
// (power, max_iterations) into V0, which they do not otherwise use; triangle
// UVs ride in the three per-row spare floats as packed half floats matching
// WGSL unpack2x16float.
func LowerShape(s *Shape, materialIdx uint32) GpuShape {
	normal := mgl32.Vec3(s.Normal)
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}

	v0 := s.V0
	if s.IsFractal() {
		v0 = [3]float32{s.Power, float32(s.MaxIterations), 0}
	}

	csgOp := uint32(0)
	if s.Negative {
		csgOp = 1
	}

	textureScale := s.TextureScale
	if textureScale == 0 {
		textureScale = 1
	}

	return GpuShape{
		ShapeType:    uint32(s.Type),
		MaterialIdx:  materialIdx,
		Radius:       s.Radius,
		Radius2:      s.Radius2,
		Position:     s.Position,
		Height:       s.Height,
		Normal:       [3]float32(normal),
		CsgOp:        csgOp,
		Rotation:     s.Rotation,
		TextureScale: textureScale,
		V0:           v0,
		Pad2:         PackHalf2(s.UV0[0], s.UV0[1]),
		V1:           s.V1,
		Pad3:         PackHalf2(s.UV1[0], s.UV1[1]),
		V2:           s.V2,
		Pad4:         PackHalf2(s.UV2[0], s.UV2[1]),
	}
}

// BuildGPUData flattens shapes into parallel GPU shape and material arrays
// plus the light index list. Each shape gets its own material slot; a shape
// whose material is emissive and area-sampleable (spheres) is a light.
//
// Parameters:
//   - shapes: the logical shape list
//   - texCache: texture path to atlas id mapping; nil when no atlas exists
//
// Returns:
//   - []GpuShape: lowered shape records, index-aligned with shapes
//   - []GpuMaterial: lowered material records
//   - []uint32: light indices into the shape array
func BuildGPUData(shapes []Shape, texCache map[string]int32) ([]GpuShape, []GpuMaterial, []uint32) {
	gpuShapes := make([]GpuShape, 0, len(shapes))
	gpuMaterials := make([]GpuMaterial, 0, len(shapes))
	var lightIndices []uint32

	for i := range shapes {
		shape := &shapes[i]
		mat := LowerMaterial(&shape.Material)

		if shape.Texture != "" {
			if id, ok := texCache[shape.Texture]; ok {
				mat.TextureID = id
			}
		}

		matIdx := uint32(len(gpuMaterials))
		gpuMaterials = append(gpuMaterials, mat)
		gpuShapes = append(gpuShapes, LowerShape(shape, matIdx))

		if shape.Material.IsEmissive() && shape.Type == ShapeSphere {
			lightIndices = append(lightIndices, uint32(i))
		}
	}

	return gpuShapes, gpuMaterials, lightIndices
}

// PackHalf2 packs two f32 values into a single f32 bit pattern using IEEE
// 754 half-float encoding, matching WGSL pack2x16float/unpack2x16float.
func PackHalf2(a, b float32) float32 {
	ha := uint32(f32ToF16Bits(a))
	hb := uint32(f32ToF16Bits(b))
	return math.Float32frombits(ha | (hb << 16))
}

// UnpackHalf2 is the inverse of PackHalf2, used by tests.
func UnpackHalf2(packed float32) (float32, float32) {
	bits := math.Float32bits(packed)
	return f16BitsToF32(uint16(bits & 0xFFFF)), f16BitsToF32(uint16(bits >> 16))
}

// f32ToF16Bits converts an f32 to the IEEE 754 binary16 bit pattern.
func f32ToF16Bits(val float32) uint16 {
	bits := math.Float32bits(val)
	sign := (bits >> 16) & 0x8000
	exponent := int32((bits >> 23) & 0xFF)
	mantissa := bits & 0x007FFFFF

	if exponent == 0 {
		return uint16(sign) // zero / subnormal -> f16 zero
	}
	if exponent == 0xFF {
		if mantissa != 0 {
			return uint16(sign | 0x7E00) // NaN
		}
		return uint16(sign | 0x7C00) // Inf
	}

	newExp := exponent - 127 + 15
	if newExp >= 31 {
		return uint16(sign | 0x7C00) // overflow -> Inf
	}
	if newExp <= 0 {
		// Subnormal half or underflow.
		if newExp < -10 {
			return uint16(sign)
		}
		m := (mantissa | 0x00800000) >> uint32(1-newExp+13)
		return uint16(sign | m)
	}

	return uint16(sign | (uint32(newExp) << 10) | (mantissa >> 13))
}

// f16BitsToF32 widens a binary16 bit pattern back to f32.
func f16BitsToF32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exponent := uint32(h>>10) & 0x1F
	mantissa := uint32(h & 0x03FF)

	switch {
	case exponent == 0:
		if mantissa == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal half: renormalize.
		e := uint32(127 - 15 + 1)
		for mantissa&0x0400 == 0 {
			mantissa <<= 1
			e--
		}
		mantissa &= 0x03FF
		return math.Float32frombits(sign | (e << 23) | (mantissa << 13))
	case exponent == 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | (mantissa << 13))
	default:
		return math.Float32frombits(sign | ((exponent - 15 + 127) << 23) | (mantissa << 13))
	}
}
