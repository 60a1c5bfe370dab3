package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/voxreel/voxreel/internal/domain"
)

var durationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-?\s*(seconds?|secs?|minutes?|mins?)\b`)

var animatedKeywords = []string{"animation", "animated", "anime", "cartoon"}

var storyKeywords = []string{"story", "parable", "fable", "tale"}

// parseInstructions scans the voice note and request description for
// inline overrides spoken before the content, e.g. "make me a 1 minute
// animation video about discipline". Pure text heuristics; the LLM is
// never consulted here.
func parseInstructions(transcript, description string) *domain.JobInstructions {
	text := strings.ToLower(transcript + " " + description)

	instr := &domain.JobInstructions{}

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil && value > 0 {
			if strings.HasPrefix(m[2], "min") {
				value *= 60
			}
			instr.TargetDurationSeconds = value
		}
	} else if strings.Contains(text, "a minute") || strings.Contains(text, "one minute") {
		instr.TargetDurationSeconds = 60
	}

	instr.AnimatedMode = containsAny(text, animatedKeywords)
	instr.StoryMode = containsAny(text, storyKeywords)

	return instr
}

// wantsParable reports whether the request text alone pins the content
// mode to parable, letting the mode step bypass the LLM detector.
func wantsParable(transcript, description string) bool {
	text := strings.ToLower(transcript + " " + description)
	return containsAny(text, animatedKeywords) || containsAny(text, storyKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
