package sampling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Onb is a right-handed orthonormal basis around a normal.
type Onb struct {
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	Normal    mgl32.Vec3
}

// BuildOnb constructs the basis with the branchless Duff et al. method.
// n must be unit length.
func BuildOnb(n mgl32.Vec3) Onb {
	sign := float32(math.Copysign(1, float64(n[2])))
	a := -1.0 / (sign + n[2])
	b := n[0] * n[1] * a
	return Onb{
		Tangent:   mgl32.Vec3{1 + sign*n[0]*n[0]*a, sign * b, -sign * n[0]},
		Bitangent: mgl32.Vec3{b, sign + n[1]*n[1]*a, -n[1]},
		Normal:    n,
	}
}

// ToWorld maps a local-space vector (z up) into the basis frame.
func (o Onb) ToWorld(v mgl32.Vec3) mgl32.Vec3 {
	return o.Tangent.Mul(v[0]).Add(o.Bitangent.Mul(v[1])).Add(o.Normal.Mul(v[2]))
}

// CosineHemisphere samples a direction about n with pdf cosθ/π.
func CosineHemisphere(n mgl32.Vec3, r1, r2 float32) mgl32.Vec3 {
	phi := 2 * math.Pi * float64(r1)
	sinTheta := float32(math.Sqrt(float64(r2)))
	cosTheta := float32(math.Sqrt(float64(1 - r2)))
	local := mgl32.Vec3{
		float32(math.Cos(phi)) * sinTheta,
		float32(math.Sin(phi)) * sinTheta,
		cosTheta,
	}
	return BuildOnb(n).ToWorld(local)
}
