package subtitle

import "strings"

// Segment folds a chronological sequence of timed words into cues. A cue is
// closed when the silence gap before a word exceeds the pause threshold, when
// the speaker changes, or when the accumulated duration reaches the maximum.
//
// A max-duration boundary tries to close at the most recent word ending in
// sentence punctuation; words after that point stay pending and open the next
// cue, so no word is ever lost or duplicated. The pending buffer plus split
// index keeps ownership of consumed vs. carried words explicit.
func Segment(words []TimedWord, opts SegmentOptions) ([]Cue, error) {
	if opts.PauseThreshold <= 0 {
		opts.PauseThreshold = DefaultPauseThreshold
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultMaxCueDuration
	}

	for i, w := range words {
		if err := validateWord(w, i); err != nil {
			return nil, err
		}
	}

	var (
		cues     []Cue
		pending  []TimedWord // words of the currently open cue
		cueStart float64
		speaker  string
		lastEnd  float64 // end of the most recently appended word
	)

	for _, w := range words {
		spk := w.Speaker
		if spk == "" {
			spk = UnknownSpeaker
		}

		if len(pending) == 0 {
			pending = append(pending, w)
			cueStart, speaker, lastEnd = w.Start, spk, w.End
			continue
		}

		gap := w.Start - lastEnd
		elapsed := lastEnd - cueStart

		switch {
		case elapsed >= opts.MaxDuration:
			// Prefer closing at the last punctuated word; everything after
			// it is carried into the next cue.
			if split := lastPunctuated(pending); split >= 0 {
				cues = append(cues, makeCue(cueStart, pending[split].End, speaker, pending[:split+1]))
				pending = append([]TimedWord(nil), pending[split+1:]...)
			} else {
				cues = append(cues, makeCue(cueStart, lastEnd, speaker, pending))
				pending = pending[:0]
			}
			cueStart, speaker = w.Start, spk

		case gap > opts.PauseThreshold || spk != speaker:
			cues = append(cues, makeCue(cueStart, lastEnd, speaker, pending))
			pending = pending[:0]
			cueStart, speaker = w.Start, spk
		}

		pending = append(pending, w)
		lastEnd = w.End
	}

	if len(pending) > 0 {
		cues = append(cues, makeCue(cueStart, lastEnd, speaker, pending))
	}

	return cues, nil
}

// lastPunctuated returns the index of the most recent word ending in sentence
// punctuation, or -1.
func lastPunctuated(words []TimedWord) int {
	for i := len(words) - 1; i >= 0; i-- {
		if endsInPunctuation(words[i].Text) {
			return i
		}
	}
	return -1
}

func endsInPunctuation(text string) bool {
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?', ',':
		return true
	}
	return false
}

func makeCue(start, end float64, speaker string, words []TimedWord) Cue {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return Cue{
		Start:   start,
		End:     end,
		Speaker: speaker,
		Text:    strings.TrimSpace(strings.Join(parts, " ")),
	}
}
