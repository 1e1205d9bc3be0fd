package renderer

// PostEffect identifies one post-process effect in the chain. Values are a
// wire contract with the post_process shader.
type PostEffect uint32

const (
	PostNone PostEffect = iota
	PostNegative
	PostSepia
	PostGrayscale
	PostFxaa
	PostOilPainting
	PostBlackAndWhite
	PostComic
	PostCasting
)

// PostMaxEffects bounds the chain length carried in the params uniform.
const PostMaxEffects = 8

// Default spatial-effect tuning.
const (
	DefaultOilRadius   = 3
	DefaultComicLevels = 4
)

// AllPostEffects lists the selectable effects (excluding PostNone).
var AllPostEffects = []PostEffect{
	PostNegative, PostSepia, PostGrayscale, PostFxaa,
	PostOilPainting, PostBlackAndWhite, PostComic, PostCasting,
}

// Label returns the effect's display name.
func (e PostEffect) Label() string {
	switch e {
	case PostNegative:
		return "Negative"
	case PostSepia:
		return "Sepia"
	case PostGrayscale:
		return "Grayscale"
	case PostFxaa:
		return "FXAA"
	case PostOilPainting:
		return "Oil Painting"
	case PostBlackAndWhite:
		return "B&W"
	case PostComic:
		return "Comic"
	case PostCasting:
		return "Casting"
	default:
		return "None"
	}
}

// postParams is the 16-u32 params uniform: dims+count+oil radius, the
// effect chain, and the comic quantization level count.
type postParams struct {
	Width     uint32
	Height    uint32
	Count     uint32
	OilRadius uint32

	Effects [PostMaxEffects]uint32

	ComicLevels uint32
	Pad         [3]uint32
}

func buildPostParams(width, height uint32, effects []PostEffect, oilRadius, comicLevels uint32) postParams {
	p := postParams{
		Width:       width,
		Height:      height,
		OilRadius:   oilRadius,
		ComicLevels: comicLevels,
	}
	n := len(effects)
	if n > PostMaxEffects {
		n = PostMaxEffects
	}
	p.Count = uint32(n)
	for i := 0; i < n; i++ {
		p.Effects[i] = uint32(effects[i])
	}
	return p
}

func (r *renderer) SetPostEffects(effects []PostEffect) {
	r.activeEffects = append(r.activeEffects[:0], effects...)
	params := buildPostParams(r.Width(), r.Height(), r.activeEffects, DefaultOilRadius, DefaultComicLevels)
	updateUniformBuffer(r.queue, r.postParamsBuffer, &params)
}
