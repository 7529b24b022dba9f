package subtitle

import (
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{12.345, "00:00:12,345"},
		{3661.5, "01:01:01,500"},
		{59.9996, "00:01:00,000"}, // millisecond rounding carries
		{7325.001, "02:02:05,001"},
		{360000, "100:00:00,000"}, // hours unbounded
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"00:00:12,345", 12.345},
		{"01:01:01,500", 3661.5},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ParseTimestamp(tc.in); got != tc.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSplitSpeakerLine(t *testing.T) {
	cases := []struct {
		line        string
		wantSpeaker string
		wantText    string
	}{
		{"Alice: Hi there", "Alice", "Hi there"},
		{"Bob:no space", "Bob", "no space"},
		{"no colon at all", UnknownSpeaker, "no colon at all"},
		{"Carol: time: 10:30", "Carol", "time: 10:30"}, // first colon only
		{": leading colon", "", "leading colon"},
	}
	for _, tc := range cases {
		speaker, text := SplitSpeakerLine(tc.line)
		if speaker != tc.wantSpeaker || text != tc.wantText {
			t.Errorf("SplitSpeakerLine(%q) = (%q, %q), want (%q, %q)",
				tc.line, speaker, text, tc.wantSpeaker, tc.wantText)
		}
	}
}

func TestToSRT(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 1.5, Speaker: "Alice", Text: "Hello there."},
		{Start: 2, End: 4.25, Speaker: "Bob", Text: "Hi."},
	}
	want := "1\n" +
		"00:00:00,000 --> 00:00:01,500\n" +
		"Alice: Hello there.\n" +
		"\n" +
		"2\n" +
		"00:00:02,000 --> 00:00:04,250\n" +
		"Bob: Hi.\n" +
		"\n"
	if got := ToSRT(cues, DefaultMaxLineChars); got != want {
		t.Errorf("ToSRT =\n%q\nwant\n%q", got, want)
	}
}

func TestToSRT_Reproducible(t *testing.T) {
	cues := []Cue{
		{Start: 1.1, End: 2.2, Speaker: "SPEAKER_00", Text: "A somewhat longer line that will need to be wrapped over two lines"},
	}
	a := ToSRT(cues, DefaultMaxLineChars)
	b := ToSRT(cues, DefaultMaxLineChars)
	if a != b {
		t.Error("ToSRT is not byte-reproducible for identical input")
	}
	if lines := strings.Split(strings.TrimSuffix(a, "\n\n"), "\n"); len(lines) != 4 {
		t.Errorf("expected index, timestamps and 2 text lines, got %d lines: %q", len(lines), lines)
	}
}

func TestParseSRT_RoundTrip(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 1.5, Speaker: "Alice", Text: "Hello there."},
		{Start: 2, End: 4.25, Speaker: "Bob", Text: "Hi."},
	}
	parsed := ParseSRT(ToSRT(cues, DefaultMaxLineChars))
	if len(parsed) != len(cues) {
		t.Fatalf("parsed %d cues, want %d", len(parsed), len(cues))
	}
	for i, c := range parsed {
		if c.Index != i+1 {
			t.Errorf("cue %d: index = %d, want %d", i, c.Index, i+1)
		}
		if c.Speaker != cues[i].Speaker || c.Text != cues[i].Text {
			t.Errorf("cue %d: (%q, %q), want (%q, %q)", i, c.Speaker, c.Text, cues[i].Speaker, cues[i].Text)
		}
		if c.Start != cues[i].Start || c.End != cues[i].End {
			t.Errorf("cue %d: timing [%v, %v], want [%v, %v]", i, c.Start, c.End, cues[i].Start, cues[i].End)
		}
	}
}

func TestParseSRT_WrappedTextJoined(t *testing.T) {
	srt := "1\n" +
		"00:00:00,000 --> 00:00:03,000\n" +
		"Alice: the first wrapped line\n" +
		"and the second wrapped line\n" +
		"\n"
	cues := ParseSRT(srt)
	if len(cues) != 1 {
		t.Fatalf("parsed %d cues, want 1", len(cues))
	}
	if cues[0].Text != "the first wrapped line and the second wrapped line" {
		t.Errorf("text = %q", cues[0].Text)
	}
}

func TestParseSRT_SkipsMalformedBlocks(t *testing.T) {
	srt := "not a number\nnot a timestamp\ntext\n\n" +
		"1\n00:00:00,000 --> 00:00:01,000\nAlice: ok\n\n"
	cues := ParseSRT(srt)
	if len(cues) != 1 || cues[0].Text != "ok" {
		t.Errorf("cues = %+v, want the single valid block", cues)
	}
}

func TestToDialogueText_MergesSpeakerRuns(t *testing.T) {
	cues := []Cue{
		{Speaker: "Alice", Text: "Hi"},
		{Speaker: "Alice", Text: "there"},
		{Speaker: "Bob", Text: "Hello"},
	}
	want := "Hi there\n\nHello\n\n"
	if got := ToDialogueText(cues); got != want {
		t.Errorf("ToDialogueText = %q, want %q", got, want)
	}
}

func TestDialogueBlocks_NormalizesWhitespace(t *testing.T) {
	cues := []Cue{
		{Speaker: "Alice", Text: "  spaced   out  "},
		{Speaker: "Alice", Text: "words"},
	}
	blocks := DialogueBlocks(cues)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "spaced out words" {
		t.Errorf("text = %q", blocks[0].Text)
	}
}

func TestParseDialogueLines(t *testing.T) {
	text := "Alice: Bonjour\n\nBob: Salut\nunlabeled line\n"
	lines := ParseDialogueLines(text)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Speaker != "Alice" || lines[0].Text != "Bonjour" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[2].Speaker != UnknownSpeaker {
		t.Errorf("line 2 speaker = %q, want %q", lines[2].Speaker, UnknownSpeaker)
	}
}

func TestWriteTranslatedSRT_PreservesIndicesAndTiming(t *testing.T) {
	aligned := []AlignedCue{
		{Index: 4, Start: 10, End: 12.5, Text: "Bonjour"},
		{Index: 5, Start: 13, End: 14, Text: "Salut"},
	}
	want := "4\n" +
		"00:00:10,000 --> 00:00:12,500\n" +
		"Bonjour\n" +
		"\n" +
		"5\n" +
		"00:00:13,000 --> 00:00:14,000\n" +
		"Salut\n" +
		"\n"
	if got := WriteTranslatedSRT(aligned, DefaultMaxLineChars); got != want {
		t.Errorf("WriteTranslatedSRT =\n%q\nwant\n%q", got, want)
	}
}
