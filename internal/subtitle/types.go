package subtitle

import "fmt"

// Default segmentation and layout parameters. Callers pass explicit values;
// these are only applied when a zero value is given.
const (
	DefaultPauseThreshold = 1.0 // seconds of silence that ends a cue
	DefaultMaxCueDuration = 8.0 // seconds a single cue may span
	DefaultMaxLineChars   = 42  // characters per rendered subtitle line
)

// UnknownSpeaker is assigned when the transcription collaborator provides no
// speaker label for a word, or when a speaker-prefixed line has no colon.
const UnknownSpeaker = "Unknown"

// TimedWord is a single word from the transcription collaborator, with
// word-level timestamps in seconds and an optional diarization label.
type TimedWord struct {
	Text    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Cue is one subtitle display event. Speaker is carried as a first-class
// field; the "Speaker: text" prefix only exists in rendered output.
// Index is 1-based and assigned at render time (or read back by ParseSRT).
type Cue struct {
	Index   int     `json:"index"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// DialogueBlock is one or more consecutive same-speaker cues merged into a
// single whitespace-normalized paragraph.
type DialogueBlock struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TranslatedLine is one line of the translation collaborator's output,
// re-parsed from the "Speaker: text" convention.
type TranslatedLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// AlignedCue pairs a translated text with the timing of its original cue.
// Index, Start and End are copied verbatim from the source cue.
type AlignedCue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"translated_text"`
}

// SegmentOptions control how timed words are grouped into cues.
type SegmentOptions struct {
	PauseThreshold float64 // max silence gap inside one cue, seconds
	MaxDuration    float64 // max cue duration, seconds
}

// DefaultSegmentOptions returns the standard segmentation parameters.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{
		PauseThreshold: DefaultPauseThreshold,
		MaxDuration:    DefaultMaxCueDuration,
	}
}

func validateWord(w TimedWord, i int) error {
	if w.Start < 0 {
		return fmt.Errorf("word %d (%q): negative start %v", i, w.Text, w.Start)
	}
	if w.End < w.Start {
		return fmt.Errorf("word %d (%q): end %v before start %v", i, w.Text, w.End, w.Start)
	}
	return nil
}
