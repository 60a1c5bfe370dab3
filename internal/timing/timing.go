// Package timing holds the pure duration-fitting math of the pipeline:
// converting text to expected speech seconds, deciding whether generated
// text must shrink or grow for a target duration, computing a safe playback
// speed multiplier, and deriving contiguous segment timings.
package timing

import "strings"

// Adjustment is the verdict on whether generated text fits a target duration.
type Adjustment int

const (
	// AdjustNone means the estimate is inside the acceptance band.
	AdjustNone Adjustment = iota
	// AdjustShorter means the text overshoots the target and must shrink.
	AdjustShorter
	// AdjustLonger means the text materially undershoots and should grow.
	AdjustLonger
)

// String returns the adjustment direction as the wire value used in prompts.
func (a Adjustment) String() string {
	switch a {
	case AdjustShorter:
		return "shorter"
	case AdjustLonger:
		return "longer"
	default:
		return "ok"
	}
}

const (
	// DefaultWordsPerSecond approximates a typical TTS narration rate.
	DefaultWordsPerSecond = 2.5

	// defaultMinFillRatio is the lower edge of the acceptance band. The
	// band is asymmetric on purpose: overshoot forces audible speed-up
	// artifacts downstream, undershoot only costs a little silence, so
	// anything in [0.95*target, target] is accepted and overshoot never is.
	defaultMinFillRatio = 0.95

	// defaultSafetyMargin is the single word-budget margin used everywhere
	// text is cut to length.
	defaultSafetyMargin = 0.97

	// Playback-speed clamp. Ratios outside this range distort audibly;
	// callers must regenerate text instead of stretching audio.
	defaultMinSpeed = 0.90
	defaultMaxSpeed = 1.15
)

// Fitter carries the speaking rate and tolerance band for one pipeline
// configuration. The zero value is not usable; construct with NewFitter.
type Fitter struct {
	WordsPerSecond float64
	MinFillRatio   float64
	SafetyMargin   float64
	MinSpeed       float64
	MaxSpeed       float64
}

// NewFitter returns a Fitter with the default band and the given speaking
// rate. A non-positive rate falls back to DefaultWordsPerSecond.
func NewFitter(wordsPerSecond float64) Fitter {
	if wordsPerSecond <= 0 {
		wordsPerSecond = DefaultWordsPerSecond
	}
	return Fitter{
		WordsPerSecond: wordsPerSecond,
		MinFillRatio:   defaultMinFillRatio,
		SafetyMargin:   defaultSafetyMargin,
		MinSpeed:       defaultMinSpeed,
		MaxSpeed:       defaultMaxSpeed,
	}
}

// EstimateSpeakingDuration predicts how many seconds the text takes to
// narrate at the configured rate. Deterministic; used to pre-flight text
// length before any TTS call.
func (f Fitter) EstimateSpeakingDuration(text string) float64 {
	return float64(countWords(text)) / f.WordsPerSecond
}

// NeedsAdjustment decides whether text estimated at estimatedSeconds fits
// a targetSeconds budget. The system targets 95-100% of the budget, never
// over.
func (f Fitter) NeedsAdjustment(estimatedSeconds, targetSeconds float64) Adjustment {
	if estimatedSeconds > targetSeconds {
		return AdjustShorter
	}
	if estimatedSeconds < targetSeconds*f.MinFillRatio {
		return AdjustLonger
	}
	return AdjustNone
}

// SpeedMultiplier returns the playback-speed ratio that would fit audio of
// actualSeconds into targetSeconds, clamped to the safe range. within is
// false when the raw ratio fell outside the clamp; callers must treat that
// as a signal to regenerate the text rather than play it back distorted.
func (f Fitter) SpeedMultiplier(actualSeconds, targetSeconds float64) (multiplier float64, within bool) {
	ratio := actualSeconds / targetSeconds
	if ratio < f.MinSpeed {
		return f.MinSpeed, false
	}
	if ratio > f.MaxSpeed {
		return f.MaxSpeed, false
	}
	return ratio, true
}

// WordBudget returns the maximum word count for targetSeconds of narration
// after applying the safety margin.
func (f Fitter) WordBudget(targetSeconds float64) int {
	return int(targetSeconds * f.WordsPerSecond * f.SafetyMargin)
}

// FitTextToDuration truncates text to the word budget for targetSeconds.
// The result always estimates at or under the margin-adjusted target, so a
// second call (or a NeedsAdjustment check) converges instead of asking for
// another shrink.
func (f Fitter) FitTextToDuration(text string, targetSeconds float64) string {
	words := strings.Fields(text)
	budget := f.WordBudget(targetSeconds)
	if budget <= 0 || len(words) <= budget {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:budget], " ")
}

// Interval is one half-open slice of the final timeline.
type Interval struct {
	Start float64
	End   float64
}

// SegmentTimings prefix-sums per-segment durations into contiguous,
// non-overlapping intervals covering [0, sum(durations)]. This is the
// single source of truth for segment boundaries; deriving them anywhere
// else misaligns segments and assets.
func SegmentTimings(durations []float64) []Interval {
	intervals := make([]Interval, len(durations))
	cursor := 0.0
	for i, d := range durations {
		intervals[i] = Interval{Start: cursor, End: cursor + d}
		cursor += d
	}
	return intervals
}

// DistributeDuration splits total across len(weights) segments
// proportionally to the weights. The last segment absorbs rounding error so
// the parts always sum to exactly total. Non-positive weight sums fall back
// to an equal split.
func DistributeDuration(total float64, weights []float64) []float64 {
	if len(weights) == 0 {
		return nil
	}
	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	parts := make([]float64, len(weights))
	accumulated := 0.0
	for i, w := range weights {
		if i == len(weights)-1 {
			parts[i] = total - accumulated
			break
		}
		var share float64
		if sum > 0 {
			if w < 0 {
				w = 0
			}
			share = total * w / sum
		} else {
			share = total / float64(len(weights))
		}
		parts[i] = share
		accumulated += share
	}
	return parts
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
