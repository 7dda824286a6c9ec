package sticker

// SizeCeiling is WhatsApp's upper bound for a sticker payload.
const SizeCeiling = 1024 * 1024

// MaxAttempts bounds the quality fallback: full quality, then reduced.
const MaxAttempts = 2

const (
	// MinStaticQuality is the lowest accepted first-attempt quality. It
	// leaves room for a strictly lower fallback.
	MinStaticQuality = 10

	fallbackQualityStep = 10
	minFallbackQuality  = 5
)

// Policy decides the parameters of each conversion attempt.
type Policy struct {
	StaticDimension int
	StaticQuality   [MaxAttempts]int

	AnimatedDuration  [MaxAttempts]int
	AnimatedFPS       [MaxAttempts]int
	AnimatedDimension [MaxAttempts]int
	AnimatedQuality   [MaxAttempts]int
}

// DefaultPolicy returns the budget used in production.
//
// The second animated attempt keeps the first attempt's quality: for libwebp a
// higher -qscale means a bigger file, so raising it would work against the
// fallback.
func DefaultPolicy() Policy {
	return Policy{
		StaticDimension:   512,
		StaticQuality:     [MaxAttempts]int{90, 60},
		AnimatedDuration:  [MaxAttempts]int{10, 8},
		AnimatedFPS:       [MaxAttempts]int{15, 10},
		AnimatedDimension: [MaxAttempts]int{512, 256},
		AnimatedQuality:   [MaxAttempts]int{50, 50},
	}
}

// WithOverrides replaces the first-attempt quality and clip length. The
// static fallback stays strictly below the first attempt; the animated
// fallback never exceeds it.
func (p Policy) WithOverrides(staticQuality, videoLimitSeconds int) Policy {
	if staticQuality >= MinStaticQuality && staticQuality <= 100 {
		p.StaticQuality[0] = staticQuality
	}
	if videoLimitSeconds > 0 {
		p.AnimatedDuration[0] = videoLimitSeconds
	}
	p.StaticQuality[1] = max(min(p.StaticQuality[1], p.StaticQuality[0]-fallbackQualityStep), minFallbackQuality)
	p.AnimatedDuration[1] = min(p.AnimatedDuration[1], p.AnimatedDuration[0])
	p.AnimatedFPS[1] = min(p.AnimatedFPS[1], p.AnimatedFPS[0])
	p.AnimatedDimension[1] = min(p.AnimatedDimension[1], p.AnimatedDimension[0])
	p.AnimatedQuality[1] = min(p.AnimatedQuality[1], p.AnimatedQuality[0])
	return p
}

// Attempt returns the parameters for the given attempt index. Indexes outside
// [0, MaxAttempts) are clamped.
func (p Policy) Attempt(animated bool, index int) ConversionAttempt {
	if index < 0 {
		index = 0
	}
	if index >= MaxAttempts {
		index = MaxAttempts - 1
	}

	if !animated {
		return ConversionAttempt{
			Index:     index,
			Dimension: p.StaticDimension,
			Quality:   p.StaticQuality[index],
		}
	}

	return ConversionAttempt{
		Index:              index,
		MaxDurationSeconds: p.AnimatedDuration[index],
		FPS:                p.AnimatedFPS[index],
		Dimension:          p.AnimatedDimension[index],
		Quality:            p.AnimatedQuality[index],
	}
}

// Exceeds reports whether a payload of n bytes is over the sticker ceiling.
func Exceeds(n int) bool {
	return n > SizeCeiling
}
