package subtitle

import (
	"context"
	"testing"
)

// recordingTranslator counts calls and returns canned results in order.
type recordingTranslator struct {
	calls   []string
	results []string
}

func (r *recordingTranslator) translate(_ context.Context, text, _ string) string {
	r.calls = append(r.calls, text)
	if len(r.results) > 0 {
		out := r.results[0]
		r.results = r.results[1:]
		return out
	}
	return "translated(" + text + ")"
}

func testCues(n int) []Cue {
	cues := make([]Cue, n)
	for i := range cues {
		cues[i] = Cue{
			Index:   i + 1,
			Start:   float64(i),
			End:     float64(i) + 0.9,
			Speaker: "Alice",
			Text:    "line",
		}
	}
	return cues
}

func TestAlign_ExactMatch(t *testing.T) {
	cues := testCues(3)
	lines := []TranslatedLine{
		{Speaker: "Alice", Text: "un"},
		{Speaker: "Alice", Text: "deux"},
		{Speaker: "Alice", Text: "trois"},
	}
	tr := &recordingTranslator{}

	aligned := Align(context.Background(), cues, lines, "fr", tr.translate)

	if len(aligned) != 3 {
		t.Fatalf("expected 3 aligned cues, got %d", len(aligned))
	}
	for i, a := range aligned {
		if a.Text != lines[i].Text {
			t.Errorf("cue %d text = %q, want %q", i, a.Text, lines[i].Text)
		}
		if a.Index != cues[i].Index || a.Start != cues[i].Start || a.End != cues[i].End {
			t.Errorf("cue %d timing mutated: %+v vs %+v", i, a, cues[i])
		}
	}
	if len(tr.calls) != 0 {
		t.Errorf("translateOne called %d times, want 0", len(tr.calls))
	}
}

func TestAlign_DeficitFallsBackOncePerCue(t *testing.T) {
	cues := testCues(4)
	lines := []TranslatedLine{
		{Speaker: "Alice", Text: "un"},
		{Speaker: "Alice", Text: "deux"},
	}
	tr := &recordingTranslator{}

	aligned := Align(context.Background(), cues, lines, "fr", tr.translate)

	if len(aligned) != 4 {
		t.Fatalf("expected 4 aligned cues, got %d", len(aligned))
	}
	if aligned[2].Text != "translated(line)" || aligned[3].Text != "translated(line)" {
		t.Errorf("fallback texts = %q, %q", aligned[2].Text, aligned[3].Text)
	}
	if len(tr.calls) != 2 {
		t.Errorf("translateOne called %d times, want 2 (one per missing line)", len(tr.calls))
	}
}

func TestAlign_RetriesSentinelOnce(t *testing.T) {
	cues := testCues(1)
	tr := &recordingTranslator{results: []string{
		MarkFailed("line"),
		"enfin",
	}}

	aligned := Align(context.Background(), cues, nil, "fr", tr.translate)

	if len(tr.calls) != 2 {
		t.Fatalf("translateOne called %d times, want 2 (fallback + retry)", len(tr.calls))
	}
	if aligned[0].Text != "enfin" {
		t.Errorf("text = %q, want retry result", aligned[0].Text)
	}
}

func TestAlign_KeepsSentinelWhenRetryFails(t *testing.T) {
	cues := testCues(1)
	tr := &recordingTranslator{results: []string{
		MarkFailed("line"),
		MarkFailed("line"),
	}}

	aligned := Align(context.Background(), cues, nil, "fr", tr.translate)

	if len(tr.calls) != 2 {
		t.Fatalf("translateOne called %d times, want 2", len(tr.calls))
	}
	if !IsFailedTranslation(aligned[0].Text) {
		t.Errorf("text = %q, want sentinel preserved", aligned[0].Text)
	}
}

func TestAlign_RetriesSentinelFromConsumedLine(t *testing.T) {
	cues := testCues(1)
	lines := []TranslatedLine{{Speaker: "Alice", Text: MarkFailed("line")}}
	tr := &recordingTranslator{results: []string{"réparé"}}

	aligned := Align(context.Background(), cues, lines, "fr", tr.translate)

	if len(tr.calls) != 1 {
		t.Fatalf("translateOne called %d times, want 1 (single retry)", len(tr.calls))
	}
	if aligned[0].Text != "réparé" {
		t.Errorf("text = %q, want retry result", aligned[0].Text)
	}
}

func TestAlign_SurplusLinesDropped(t *testing.T) {
	cues := testCues(2)
	lines := []TranslatedLine{
		{Text: "un"}, {Text: "deux"}, {Text: "trois"}, {Text: "quatre"},
	}
	tr := &recordingTranslator{}

	aligned := Align(context.Background(), cues, lines, "fr", tr.translate)

	if len(aligned) != 2 {
		t.Fatalf("expected 2 aligned cues, got %d", len(aligned))
	}
	if aligned[0].Text != "un" || aligned[1].Text != "deux" {
		t.Errorf("texts = %q, %q", aligned[0].Text, aligned[1].Text)
	}
	if len(tr.calls) != 0 {
		t.Errorf("translateOne called %d times, want 0", len(tr.calls))
	}
}

func TestAlign_EmptyCues(t *testing.T) {
	tr := &recordingTranslator{}
	aligned := Align(context.Background(), nil, []TranslatedLine{{Text: "x"}}, "fr", tr.translate)
	if len(aligned) != 0 {
		t.Errorf("expected no aligned cues, got %d", len(aligned))
	}
}

func TestSentinelHelpers(t *testing.T) {
	marked := MarkFailed("hello")
	if !IsFailedTranslation(marked) {
		t.Error("MarkFailed output not recognized as failed")
	}
	if IsFailedTranslation("hello") {
		t.Error("plain text recognized as failed")
	}
}
