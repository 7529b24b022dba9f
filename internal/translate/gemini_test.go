package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/audio-subtitler/backend/internal/subtitle"
)

func newTestTranslator(t *testing.T, handler http.HandlerFunc) *GeminiTranslator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGeminiTranslator("test-key", nil, 2)
	g.apiBase = server.URL
	g.backoff = 0
	return g
}

func geminiJSON(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]},"finishReason":"STOP"}]}`, text)
}

func TestGemini_TranslateDialogue(t *testing.T) {
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, geminiJSON("Alice: Bonjour\nBob: Salut"))
	})

	out, err := g.TranslateDialogue(context.Background(), "Alice: Hello\nBob: Hi", Options{
		SourceLang: "en",
		TargetLang: "fr",
		Preset:     "movie",
	}, func(float64) {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Alice: Bonjour\nBob: Salut" {
		t.Errorf("translated = %q", out)
	}
}

func TestGemini_TranslateDialogue_ServerError(t *testing.T) {
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := g.TranslateDialogue(context.Background(), "Alice: Hello", Options{TargetLang: "fr"}, func(float64) {})
	if err == nil {
		t.Fatal("expected error from server failure")
	}
}

func TestGemini_TranslateDialogue_Blocked(t *testing.T) {
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := g.TranslateDialogue(context.Background(), "Alice: Hello", Options{TargetLang: "fr"}, func(float64) {})
	if err == nil {
		t.Fatal("expected error for blocked prompt")
	}
}

func TestGemini_TranslateLine(t *testing.T) {
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiJSON("Bonjour"))
	})

	got := g.TranslateLine(context.Background(), "Hello", "fr")
	if got != "Bonjour" {
		t.Errorf("TranslateLine = %q, want Bonjour", got)
	}
}

func TestGemini_TranslateLine_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "transient", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, geminiJSON("Bonjour"))
	})

	got := g.TranslateLine(context.Background(), "Hello", "fr")
	if got != "Bonjour" {
		t.Errorf("TranslateLine = %q, want Bonjour after retry", got)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
}

func TestGemini_TranslateLine_SentinelAfterExhaustedAttempts(t *testing.T) {
	calls := 0
	g := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	got := g.TranslateLine(context.Background(), "Hello", "fr")
	if !subtitle.IsFailedTranslation(got) {
		t.Errorf("TranslateLine = %q, want failure sentinel", got)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2 attempts", calls)
	}
}

func TestGemini_TranslateLine_NoAPIKey(t *testing.T) {
	g := NewGeminiTranslator("", nil, 2)
	got := g.TranslateLine(context.Background(), "Hello", "fr")
	if !subtitle.IsFailedTranslation(got) {
		t.Errorf("TranslateLine = %q, want failure sentinel without API key", got)
	}
}

func TestCleanCJKSpacing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"こん にちは", "こんにちは"},
		{"hello world", "hello world"},
		{"日本 語 words stay", "日本語 words stay"},
		{"안녕 하세요", "안녕하세요"},
	}
	for _, tc := range cases {
		if got := cleanCJKSpacing(tc.in); got != tc.want {
			t.Errorf("cleanCJKSpacing(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDetectSourceLang(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"generated:whisper_ja.srt", "ja"},
		{"generated:translate_ko_gemini.srt", "ko"},
		{"external:video.en.srt", "en"},
		{"external:movie.srt", "auto"},
	}
	for _, tc := range cases {
		if got := detectSourceLang(tc.id); got != tc.want {
			t.Errorf("detectSourceLang(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestSystemPrompt_PresetsDiffer(t *testing.T) {
	base := SystemPrompt("", "ja", "en")
	for _, preset := range []string{"anime", "movie", "documentary"} {
		p := SystemPrompt(preset, "ja", "en")
		if p == base {
			t.Errorf("preset %q prompt identical to base", preset)
		}
	}
	if p := SystemPrompt("anime", "ja", "en"); !strings.Contains(p, "Japanese") {
		t.Errorf("prompt does not name the source language: %q", p)
	}
}
