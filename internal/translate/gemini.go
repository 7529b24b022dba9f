package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/audio-subtitler/backend/internal/subtitle"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// ModelResolver returns the current Gemini model from settings
type ModelResolver func() string

// GeminiTranslator translates dialogue using the Google Gemini API
type GeminiTranslator struct {
	apiKey        string
	modelResolver ModelResolver // dynamically resolves model from DB
	httpClient    *http.Client
	apiBase       string
	attempts      int           // per-line attempts before giving up
	backoff       time.Duration // base delay between attempts
}

func NewGeminiTranslator(apiKey string, modelResolver ModelResolver, attempts int) *GeminiTranslator {
	if attempts < 1 {
		attempts = 2
	}
	return &GeminiTranslator{
		apiKey:        apiKey,
		modelResolver: modelResolver,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		apiBase:  geminiAPIBase,
		attempts: attempts,
		backoff:  2 * time.Second,
	}
}

func (g *GeminiTranslator) currentModel() string {
	if g.modelResolver != nil {
		if m := g.modelResolver(); m != "" {
			return m
		}
	}
	return "gemini-2.0-flash"
}

func (g *GeminiTranslator) Name() string {
	return "gemini"
}

// TranslateDialogue sends the whole dialogue in one request so the model
// sees conversational context across lines.
func (g *GeminiTranslator) TranslateDialogue(ctx context.Context, dialogue string, opts Options, updateProgress func(float64)) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("Gemini API key not configured")
	}

	model := g.currentModel()
	lineCount := len(strings.Split(strings.TrimSpace(dialogue), "\n"))
	log.Printf("[gemini] using model: %s, translating %d dialogue lines in single request", model, lineCount)

	systemPrompt := SystemPrompt(opts.Preset, opts.SourceLang, opts.TargetLang)
	if opts.Preset == "custom" && opts.CustomPrompt != "" {
		systemPrompt += "\n\nUser instructions: " + opts.CustomPrompt
	}

	updateProgress(0.1)

	userPrompt := fmt.Sprintf(
		"Translate the following dialogue. Return exactly %d lines, one per input line, "+
			"each keeping its \"Speaker:\" label.\n\n%s",
		lineCount, dialogue,
	)

	updateProgress(0.3)

	text, err := g.generateContent(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	updateProgress(0.9)

	if isCJKLang(opts.TargetLang) {
		text = cleanCJKSpacing(text)
	}

	log.Printf("[gemini] dialogue translation complete: %d lines returned",
		len(strings.Split(strings.TrimSpace(text), "\n")))

	return text, nil
}

// TranslateLine translates one line, retrying with backoff. A line that
// cannot be translated comes back with the failure sentinel rather than an
// error so callers can keep the cue timeline intact.
func (g *GeminiTranslator) TranslateLine(ctx context.Context, text, targetLang string) string {
	if g.apiKey == "" {
		return subtitle.MarkFailed(text)
	}

	model := g.currentModel()
	systemPrompt := fmt.Sprintf(
		"You are a professional subtitle translator. Translate the given line to %s. "+
			"Return ONLY the translated line, nothing else.",
		langName(targetLang),
	)

	for attempt := 0; attempt < g.attempts; attempt++ {
		if attempt > 0 {
			delay := g.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return subtitle.MarkFailed(text)
			case <-time.After(delay):
			}
		}

		translated, err := g.generateContent(ctx, model, systemPrompt, text)
		if err != nil {
			log.Printf("[gemini] line translation attempt %d/%d failed: %v", attempt+1, g.attempts, err)
			continue
		}

		translated = strings.TrimSpace(translated)
		if translated == "" {
			continue
		}
		if isCJKLang(targetLang) {
			translated = cleanCJKSpacing(translated)
		}
		return translated
	}

	return subtitle.MarkFailed(text)
}

// generateContent calls the Gemini generateContent endpoint and returns the
// first candidate's text.
func (g *GeminiTranslator) generateContent(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]string{
				{"text": systemPrompt},
			},
		},
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": userPrompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.3,
		},
		"safetySettings": []map[string]string{
			{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_CIVIC_INTEGRITY", "threshold": "BLOCK_NONE"},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.apiBase, model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gemini API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		log.Printf("[gemini] empty response body: %s", string(body))
		if geminiResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("Gemini blocked: %s", geminiResp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty Gemini response")
	}

	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Printf("[gemini] WARNING: finishReason=%s", fr)
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func isCJKLang(code string) bool {
	return code == "ja" || code == "zh" || code == "ko"
}

// cleanCJKSpacing removes stray ASCII spaces the model inserts between CJK
// characters, which waste precious subtitle width.
func cleanCJKSpacing(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i, r := range runes {
		if r == ' ' && i > 0 && i < len(runes)-1 && isCJKRune(runes[i-1]) && isCJKRune(runes[i+1]) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isCJKRune(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
