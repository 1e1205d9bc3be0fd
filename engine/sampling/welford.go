package sampling

import "github.com/go-gl/mathgl/mgl32"

// WelfordMean is the numerically stable running mean the accumulation
// buffer maintains per pixel: mean += (x − mean)/n.
type WelfordMean struct {
	Mean  mgl32.Vec3
	Count uint32
}

// Add folds one sample into the running mean.
func (w *WelfordMean) Add(x mgl32.Vec3) {
	w.Count++
	n := float32(w.Count)
	w.Mean = w.Mean.Add(x.Sub(w.Mean).Mul(1 / n))
}

// Luminance is the Rec.709 luma used for the firefly clamp and Russian
// Roulette survival.
func Luminance(c mgl32.Vec3) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}
