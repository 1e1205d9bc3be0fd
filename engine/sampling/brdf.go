package sampling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BrdfSample is the result of importance-sampling the surface BRDF.
type BrdfSample struct {
	// Direction is the sampled incoming direction (unit length).
	Direction mgl32.Vec3

	// Weight is brdf * cosθ for the sampled direction.
	Weight mgl32.Vec3

	// Pdf is the combined lobe pdf: p·pdf_spec + (1−p)·pdf_diff.
	Pdf float32

	// IsSpecular marks Dirac-like lobes that NEE must not double count.
	IsSpecular bool
}

// SurfaceParams is the material slice the BRDF math needs.
type SurfaceParams struct {
	BaseColor mgl32.Vec3
	Metallic  float32
	Roughness float32
}

// GgxD is the Trowbridge-Reitz normal distribution,
// D = α² / (π ((n·h)²(α²−1)+1)²).
func GgxD(nDotH, alpha float32) float32 {
	a2 := alpha * alpha
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

// SmithG1 is the GGX masking term for a single direction.
func SmithG1(nDotV, alpha float32) float32 {
	a2 := alpha * alpha
	return 2 * nDotV / (nDotV + float32(math.Sqrt(float64(a2+(1-a2)*nDotV*nDotV))))
}

// SmithG2 is the separable Smith geometry term, the product of the two G1s.
func SmithG2(nDotV, nDotL, alpha float32) float32 {
	return SmithG1(nDotV, alpha) * SmithG1(nDotL, alpha)
}

// FresnelSchlick is the scalar Schlick approximation.
func FresnelSchlick(cosTheta, f0 float32) float32 {
	m := clamp01(1 - cosTheta)
	return f0 + (1-f0)*m*m*m*m*m
}

// FresnelSchlickVec is the vector Schlick approximation for conductor tint.
func FresnelSchlickVec(cosTheta float32, f0 mgl32.Vec3) mgl32.Vec3 {
	m := clamp01(1 - cosTheta)
	m5 := m * m * m * m * m
	one := mgl32.Vec3{1, 1, 1}
	return f0.Add(one.Sub(f0).Mul(m5))
}

// specularF0 mixes the dielectric 0.04 base reflectance toward the metal
// tint by the metallic factor.
func specularF0(p SurfaceParams) mgl32.Vec3 {
	d := mgl32.Vec3{0.04, 0.04, 0.04}
	return d.Add(p.BaseColor.Sub(d).Mul(p.Metallic))
}

// EvalBrdf evaluates the Cook-Torrance BRDF (specular + energy-weighted
// diffuse) for the direction pair, without the cosine factor.
func EvalBrdf(p SurfaceParams, n, wo, wi mgl32.Vec3) mgl32.Vec3 {
	nDotV := n.Dot(wo)
	nDotL := n.Dot(wi)
	if nDotV <= 0 || nDotL <= 0 {
		return mgl32.Vec3{}
	}

	h := wo.Add(wi).Normalize()
	nDotH := clamp01(n.Dot(h))
	vDotH := clamp01(wo.Dot(h))

	alpha := p.Roughness * p.Roughness
	d := GgxD(nDotH, alpha)
	g := SmithG2(nDotV, nDotL, alpha)
	f := FresnelSchlickVec(vDotH, specularF0(p))

	specular := f.Mul(d * g / (4 * nDotV * nDotL))

	kd := (1 - p.Metallic)
	diffuse := p.BaseColor.Mul(kd / math.Pi)

	one := mgl32.Vec3{1, 1, 1}
	return diffuse.Mul(avg(one.Sub(f))).Add(specular)
}

// BrdfPdf returns the combined lobe pdf for the pair, mirroring SampleBrdf.
func BrdfPdf(p SurfaceParams, n, wo, wi mgl32.Vec3) float32 {
	nDotL := n.Dot(wi)
	if nDotL <= 0 {
		return 0
	}
	h := wo.Add(wi).Normalize()
	nDotH := clamp01(n.Dot(h))
	vDotH := clamp01(wo.Dot(h))

	alpha := p.Roughness * p.Roughness
	pdfSpec := GgxD(nDotH, alpha) * nDotH / (4 * vDotH)
	pdfDiff := nDotL / math.Pi

	pSpec := specProbability(p)
	return pSpec*pdfSpec + (1-pSpec)*pdfDiff
}

func specProbability(p SurfaceParams) float32 {
	ps := 0.04 + (1-0.04)*p.Metallic
	if ps < 0.25 {
		ps = 0.25
	}
	return ps
}

// SampleBrdf importance-samples the BRDF: a Bernoulli pick between the GGX
// specular lobe and the cosine diffuse lobe, with the combined pdf.
func SampleBrdf(p SurfaceParams, n, wo mgl32.Vec3, rng *Rng) (BrdfSample, bool) {
	pSpec := specProbability(p)
	alpha := p.Roughness * p.Roughness

	var wi mgl32.Vec3
	specularBranch := rng.Float32() < pSpec
	if specularBranch {
		r1, r2 := rng.Float32Pair()
		h := sampleGgxHalfVector(n, alpha, r1, r2)
		wi = reflect(wo.Mul(-1), h)
	} else {
		r1, r2 := rng.Float32Pair()
		wi = CosineHemisphere(n, r1, r2)
	}

	nDotL := n.Dot(wi)
	if nDotL <= 0 {
		return BrdfSample{}, false
	}

	pdf := BrdfPdf(p, n, wo, wi)
	if pdf < 1e-6 {
		return BrdfSample{}, false
	}

	brdf := EvalBrdf(p, n, wo, wi)
	return BrdfSample{
		Direction:  wi,
		Weight:     brdf.Mul(nDotL),
		Pdf:        pdf,
		IsSpecular: specularBranch && p.Roughness <= 0.04,
	}, true
}

// sampleGgxHalfVector draws a half-vector from the GGX NDF around n.
func sampleGgxHalfVector(n mgl32.Vec3, alpha, r1, r2 float32) mgl32.Vec3 {
	phi := 2 * math.Pi * float64(r1)
	cosTheta := float32(math.Sqrt(float64((1 - r2) / (1 + (alpha*alpha-1)*r2))))
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
	local := mgl32.Vec3{
		float32(math.Cos(phi)) * sinTheta,
		float32(math.Sin(phi)) * sinTheta,
		cosTheta,
	}
	return BuildOnb(n).ToWorld(local)
}

func reflect(v, n mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func avg(v mgl32.Vec3) float32 {
	return (v[0] + v[1] + v[2]) / 3
}
