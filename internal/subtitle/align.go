package subtitle

import (
	"context"
	"log"
	"strings"
)

// FailedTranslationPrefix tags text whose translation could not be produced.
// Downstream rendering treats it as ordinary text; callers decide whether to
// surface or retry.
const FailedTranslationPrefix = "[TRANSLATION FAILED]"

// MarkFailed wraps the original text in the failure sentinel.
func MarkFailed(text string) string {
	return FailedTranslationPrefix + " " + text
}

// IsFailedTranslation reports whether text carries the failure sentinel.
func IsFailedTranslation(text string) bool {
	return strings.HasPrefix(text, FailedTranslationPrefix)
}

// LineTranslator translates a single line of dialogue. Implementations never
// return an error: a failed translation comes back marked with the sentinel.
type LineTranslator func(ctx context.Context, text, targetLang string) string

// Align maps independently translated dialogue lines onto the cue timeline by
// position. Every original cue produces exactly one aligned cue with its
// index and timestamps preserved verbatim. When the translated stream runs
// out before the cues do, the remaining cues are translated one line at a
// time via translateOne. A sentinel-marked result gets exactly one retry.
// Surplus translated lines are dropped with a warning.
func Align(ctx context.Context, cues []Cue, lines []TranslatedLine, targetLang string, translateOne LineTranslator) []AlignedCue {
	aligned := make([]AlignedCue, 0, len(cues))
	cursor := 0

	for _, cue := range cues {
		var text string
		if cursor < len(lines) {
			text = lines[cursor].Text
			cursor++
		} else {
			text = translateOne(ctx, cue.Text, targetLang)
		}

		if IsFailedTranslation(text) {
			if retry := translateOne(ctx, cue.Text, targetLang); !IsFailedTranslation(retry) {
				text = retry
			}
		}

		aligned = append(aligned, AlignedCue{
			Index: cue.Index,
			Start: cue.Start,
			End:   cue.End,
			Text:  text,
		})
	}

	if cursor < len(lines) {
		log.Printf("[align] %d translated lines unused (%d cues, %d lines)",
			len(lines)-cursor, len(cues), len(lines))
	}

	return aligned
}
