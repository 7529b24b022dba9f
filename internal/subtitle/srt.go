package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var srtTimestampRe = regexp.MustCompile(`(\d{2,}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2},\d{3})`)

// FormatTimestamp converts seconds to the SRT clock format HH:MM:SS,mmm.
// Hours are unbounded and zero-padded to at least two digits; milliseconds
// are rounded and carry into the seconds on overflow.
func FormatTimestamp(seconds float64) string {
	ms := int(math.Round(math.Mod(seconds, 1) * 1000))
	s := int(seconds)
	if ms >= 1000 {
		s++
		ms -= 1000
	}
	m := s / 60
	s %= 60
	h := m / 60
	m %= 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimestamp converts an SRT clock value back to seconds. Malformed input
// yields 0.
func ParseTimestamp(ts string) float64 {
	var h, m, s, ms int
	if n, _ := fmt.Sscanf(strings.TrimSpace(ts), "%d:%d:%d,%d", &h, &m, &s, &ms); n < 4 {
		return 0
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000.0
}

// SpeakerLine renders the "Speaker: text" convention used in subtitle files
// and in dialogue submitted to the translation collaborator.
func SpeakerLine(speaker, text string) string {
	if speaker == "" {
		speaker = UnknownSpeaker
	}
	return speaker + ": " + text
}

// SplitSpeakerLine splits a "Speaker: text" line on the first colon. A line
// without a colon belongs to UnknownSpeaker. This is the single place the
// convention is re-parsed; every consumer shares it.
func SplitSpeakerLine(line string) (speaker, text string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return UnknownSpeaker, strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// ToSRT renders cues as an SRT document: 1-based index, arrow-separated
// timestamps, the speaker-prefixed text wrapped to at most two lines, and a
// blank separator. Output is byte-reproducible for identical input.
func ToSRT(cues []Cue, maxChars int) string {
	var sb strings.Builder
	for i, cue := range cues {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(cue.End))
		sb.WriteByte('\n')
		for _, line := range WrapLine(SpeakerLine(cue.Speaker, cue.Text), maxChars) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseSRT reads an SRT document back into cues, splitting the speaker prefix
// off the text. Blocks without a valid timestamp line are skipped.
func ParseSRT(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(content), -1)

	var cues []Cue
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		matches := srtTimestampRe.FindStringSubmatch(lines[1])
		if len(matches) != 3 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}
		speaker, text := SplitSpeakerLine(strings.TrimSpace(strings.Join(lines[2:], " ")))
		cues = append(cues, Cue{
			Index:   index,
			Start:   ParseTimestamp(matches[1]),
			End:     ParseTimestamp(matches[2]),
			Speaker: speaker,
			Text:    text,
		})
	}
	return cues
}

// DialogueBlocks merges consecutive same-speaker cues into paragraphs with
// whitespace normalized.
func DialogueBlocks(cues []Cue) []DialogueBlock {
	var blocks []DialogueBlock
	for _, cue := range cues {
		speaker := cue.Speaker
		if speaker == "" {
			speaker = UnknownSpeaker
		}
		text := strings.Join(strings.Fields(cue.Text), " ")
		if n := len(blocks); n > 0 && blocks[n-1].Speaker == speaker {
			if text != "" {
				if blocks[n-1].Text != "" {
					blocks[n-1].Text += " "
				}
				blocks[n-1].Text += text
			}
			continue
		}
		blocks = append(blocks, DialogueBlock{Speaker: speaker, Text: text})
	}
	return blocks
}

// ToDialogueText renders the plain transcript: one paragraph per speaker run,
// blank-line separated, with no speaker labels or timestamps.
func ToDialogueText(cues []Cue) string {
	var sb strings.Builder
	for _, block := range DialogueBlocks(cues) {
		sb.WriteString(block.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ParseDialogueLines parses the translation collaborator's output: one
// "Speaker: text" line per cue. Blank lines are skipped.
func ParseDialogueLines(text string) []TranslatedLine {
	var lines []TranslatedLine
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		speaker, t := SplitSpeakerLine(raw)
		lines = append(lines, TranslatedLine{Speaker: speaker, Text: t})
	}
	return lines
}

// WriteTranslatedSRT renders aligned cues as an SRT document. Indices and
// timestamps come verbatim from the original cues; only the text differs.
func WriteTranslatedSRT(aligned []AlignedCue, maxChars int) string {
	var sb strings.Builder
	for _, cue := range aligned {
		sb.WriteString(strconv.Itoa(cue.Index))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(cue.End))
		sb.WriteByte('\n')
		for _, line := range WrapLine(cue.Text, maxChars) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
