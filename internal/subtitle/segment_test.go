package subtitle

import (
	"strings"
	"testing"
)

func wordsOf(cues []Cue) int {
	total := 0
	for _, c := range cues {
		total += len(strings.Fields(c.Text))
	}
	return total
}

func TestSegment_Empty(t *testing.T) {
	cues, err := Segment(nil, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 0 {
		t.Errorf("expected no cues for empty input, got %d", len(cues))
	}
}

func TestSegment_SingleCue(t *testing.T) {
	words := []TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.4, Speaker: "SPEAKER_00"},
		{Text: "world.", Start: 0.5, End: 0.9, Speaker: "SPEAKER_00"},
	}
	cues, err := Segment(words, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	c := cues[0]
	if c.Text != "Hello world." {
		t.Errorf("text = %q, want %q", c.Text, "Hello world.")
	}
	if c.Speaker != "SPEAKER_00" {
		t.Errorf("speaker = %q, want SPEAKER_00", c.Speaker)
	}
	if c.Start != 0.0 || c.End != 0.9 {
		t.Errorf("timing = [%v, %v], want [0, 0.9]", c.Start, c.End)
	}
}

func TestSegment_PauseSplits(t *testing.T) {
	words := []TimedWord{
		{Text: "First.", Start: 0.0, End: 0.5},
		{Text: "Second.", Start: 2.0, End: 2.5}, // 1.5s gap > 1.0s threshold
	}
	cues, err := Segment(words, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "First." || cues[1].Text != "Second." {
		t.Errorf("cue texts = %q, %q", cues[0].Text, cues[1].Text)
	}
	if cues[0].End != 0.5 || cues[1].Start != 2.0 {
		t.Errorf("boundary timing = end %v / start %v", cues[0].End, cues[1].Start)
	}
}

func TestSegment_SpeakerChangeSplits(t *testing.T) {
	words := []TimedWord{
		{Text: "Hi", Start: 0.0, End: 0.3, Speaker: "Alice"},
		{Text: "there", Start: 0.4, End: 0.7, Speaker: "Alice"},
		{Text: "Hello", Start: 0.8, End: 1.1, Speaker: "Bob"},
	}
	cues, err := Segment(words, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Speaker != "Alice" || cues[1].Speaker != "Bob" {
		t.Errorf("speakers = %q, %q", cues[0].Speaker, cues[1].Speaker)
	}
}

func TestSegment_MissingSpeakerDefaultsToUnknown(t *testing.T) {
	words := []TimedWord{
		{Text: "one", Start: 0.0, End: 0.2},
		{Text: "two", Start: 0.3, End: 0.5},
	}
	cues, err := Segment(words, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Speaker != UnknownSpeaker {
		t.Errorf("speaker = %q, want %q", cues[0].Speaker, UnknownSpeaker)
	}
}

// A max-duration split closes at the last punctuated word and the unconsumed
// words carry into the next cue.
func TestSegment_MaxDurationResplitAtPunctuation(t *testing.T) {
	opts := SegmentOptions{PauseThreshold: 10, MaxDuration: 1.5}
	words := []TimedWord{
		{Text: "Hello,", Start: 0.0, End: 1.0},
		{Text: "world", Start: 1.0, End: 2.0},
		{Text: "today", Start: 2.0, End: 3.0}, // elapsed 2.0 >= 1.5 triggers here
	}
	cues, err := Segment(words, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "Hello," {
		t.Errorf("first cue = %q, want %q", cues[0].Text, "Hello,")
	}
	if cues[0].End != 1.0 {
		t.Errorf("first cue end = %v, want 1.0", cues[0].End)
	}
	if cues[1].Text != "world today" {
		t.Errorf("second cue = %q, want %q", cues[1].Text, "world today")
	}
	// The re-seeded cue starts at the incoming word's timestamp.
	if cues[1].Start != 2.0 {
		t.Errorf("second cue start = %v, want 2.0", cues[1].Start)
	}
}

func TestSegment_MaxDurationNoPunctuation(t *testing.T) {
	opts := SegmentOptions{PauseThreshold: 10, MaxDuration: 1.5}
	words := []TimedWord{
		{Text: "alpha", Start: 0.0, End: 1.0},
		{Text: "beta", Start: 1.0, End: 2.0},
		{Text: "gamma", Start: 2.0, End: 3.0},
	}
	cues, err := Segment(words, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "alpha beta" {
		t.Errorf("first cue = %q, want %q", cues[0].Text, "alpha beta")
	}
	if cues[1].Text != "gamma" {
		t.Errorf("second cue = %q, want %q", cues[1].Text, "gamma")
	}
}

// A single word longer than the max duration is emitted as its own cue; the
// elapsed check compares against the previous word's end, so it cannot loop.
func TestSegment_SingleLongWord(t *testing.T) {
	opts := SegmentOptions{PauseThreshold: 1.0, MaxDuration: 2.0}
	words := []TimedWord{
		{Text: "Aaaaaaaah", Start: 0.0, End: 5.0},
	}
	cues, err := Segment(words, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Start != 0.0 || cues[0].End != 5.0 {
		t.Errorf("timing = [%v, %v], want [0, 5]", cues[0].Start, cues[0].End)
	}
}

func TestSegment_NoWordLostOrDuplicated(t *testing.T) {
	cases := []struct {
		name  string
		opts  SegmentOptions
		words []TimedWord
	}{
		{
			name: "mixed speakers and gaps",
			opts: DefaultSegmentOptions(),
			words: []TimedWord{
				{Text: "a", Start: 0, End: 0.2, Speaker: "A"},
				{Text: "b,", Start: 0.3, End: 0.5, Speaker: "A"},
				{Text: "c", Start: 2.0, End: 2.2, Speaker: "A"},
				{Text: "d", Start: 2.3, End: 2.5, Speaker: "B"},
				{Text: "e.", Start: 2.6, End: 2.8, Speaker: "B"},
			},
		},
		{
			name: "max duration resplits",
			opts: SegmentOptions{PauseThreshold: 10, MaxDuration: 1.0},
			words: []TimedWord{
				{Text: "one,", Start: 0, End: 0.5},
				{Text: "two", Start: 0.5, End: 1.0},
				{Text: "three,", Start: 1.0, End: 1.5},
				{Text: "four", Start: 1.5, End: 2.0},
				{Text: "five", Start: 2.0, End: 2.5},
				{Text: "six.", Start: 2.5, End: 3.0},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cues, err := Segment(tc.words, tc.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := wordsOf(cues); got != len(tc.words) {
				t.Errorf("word count = %d, want %d (cues: %+v)", got, len(tc.words), cues)
			}
			prevEnd := -1.0
			for i, c := range cues {
				if c.End < c.Start {
					t.Errorf("cue %d: end %v before start %v", i, c.End, c.Start)
				}
				if c.Start < prevEnd {
					t.Errorf("cue %d: start %v before previous end %v", i, c.Start, prevEnd)
				}
				prevEnd = c.End
			}
		})
	}
}

func TestSegment_InvalidWordFails(t *testing.T) {
	cases := []struct {
		name  string
		words []TimedWord
	}{
		{"negative start", []TimedWord{{Text: "x", Start: -1, End: 0.5}}},
		{"end before start", []TimedWord{{Text: "x", Start: 1.0, End: 0.5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Segment(tc.words, DefaultSegmentOptions()); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
