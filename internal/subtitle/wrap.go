package subtitle

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WrapLine breaks a cue's text into at most two display lines of maxChars
// characters each. Split points are chosen by script-agnostic heuristics —
// punctuation, token length and letter case — so the same rules work for any
// space-separated script without a per-language word list.
//
// The result is always one or two strings. When no token boundary or space
// yields two fitting lines, the text is hard-truncated to two lines and the
// remainder is dropped; that last resort is lossy by contract, not an error.
func WrapLine(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxLineChars
	}

	normalized := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(normalized) <= maxChars {
		return []string{normalized}
	}

	tokens := strings.Split(normalized, " ")
	target := utf8.RuneCountInString(normalized) / 2
	if target < 1 {
		target = 1
	}
	if target > maxChars {
		target = maxChars
	}

	// Candidate split indices, in priority order: after punctuation, before a
	// small word, then any remaining boundary. All are scored together; the
	// order only breaks distance ties.
	var candidates []int
	for i := 0; i < len(tokens)-1; i++ {
		if endsInClausePunctuation(tokens[i]) {
			candidates = append(candidates, i)
		}
	}
	for i := 0; i < len(tokens)-1; i++ {
		if isSmallWord(tokens[i+1]) {
			candidates = append(candidates, i)
		}
	}
	for i := 0; i < len(tokens)-1; i++ {
		candidates = append(candidates, i)
	}

	bestDist := -1
	var bestLeft, bestRight string
	for _, idx := range candidates {
		if isBadSplit(tokens, idx) {
			continue
		}
		left := strings.Join(tokens[:idx+1], " ")
		right := strings.Join(tokens[idx+1:], " ")
		ln := utf8.RuneCountInString(left)
		if ln > maxChars || utf8.RuneCountInString(right) > maxChars {
			continue
		}
		dist := ln - target
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestLeft, bestRight = left, right
		}
	}
	if bestDist >= 0 {
		return []string{bestLeft, bestRight}
	}

	// No heuristic split survived: scan outward from the target for the
	// nearest space that still fits both halves.
	runes := []rune(normalized)
	for radius := 0; radius < len(runes); radius++ {
		for _, pos := range []int{target - radius, target + radius} {
			if pos <= 0 || pos >= len(runes) || runes[pos] != ' ' {
				continue
			}
			if pos <= maxChars && len(runes)-pos-1 <= maxChars {
				return []string{string(runes[:pos]), string(runes[pos+1:])}
			}
		}
	}

	// Pathological input (e.g. one unbroken run longer than two lines).
	rest := runes[maxChars:]
	if len(rest) > maxChars {
		rest = rest[:maxChars]
	}
	return []string{string(runes[:maxChars]), string(rest)}
}

// isBadSplit rejects a boundary that would separate a likely proper-name pair
// or strand a function word at a line edge.
func isBadSplit(tokens []string, idx int) bool {
	if idx < 0 || idx >= len(tokens)-1 {
		return true
	}

	left := strings.Trim(tokens[idx], " ,.;:!?\"'")
	right := strings.Trim(tokens[idx+1], " ,.;:!?\"'")

	if isCapitalized(left) && isCapitalized(right) {
		return true
	}
	if isSmallWord(left) || isSmallWord(right) {
		return true
	}
	if looksLikeVerb(left) && isSmallWord(right) {
		return true
	}
	return false
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// isSmallWord reports whether a token looks like a function word: at most
// three runes, lowercase, with no uppercase letters.
func isSmallWord(word string) bool {
	runes := []rune(word)
	if len(runes) == 0 || len(runes) > 3 {
		return false
	}
	hasLower := false
	for _, r := range runes {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasLower
}

// looksLikeVerb is a loose, language-neutral morphological clue.
func looksLikeVerb(word string) bool {
	return strings.HasSuffix(word, "ed") ||
		strings.HasSuffix(word, "ing") ||
		strings.HasSuffix(word, "en") ||
		utf8.RuneCountInString(word) > 3
}

func endsInClausePunctuation(token string) bool {
	if token == "" {
		return false
	}
	switch token[len(token)-1] {
	case '.', ',', ';', ':', '!', '?':
		return true
	}
	return false
}
