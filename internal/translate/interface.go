package translate

import "context"

// Options configures translation behavior
type Options struct {
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	Preset       string `json:"preset"`        // "anime", "movie", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt"` // for "custom" preset
}

// Translator is the common interface for all translation engines
type Translator interface {
	// TranslateDialogue translates a full dialogue text, one "Speaker: text"
	// line per cue, and returns the translated text with the same line
	// structure.
	TranslateDialogue(ctx context.Context, dialogue string, opts Options, updateProgress func(float64)) (string, error)
	// TranslateLine translates a single line. It never returns an error: a
	// failed translation comes back marked with the failure sentinel.
	TranslateLine(ctx context.Context, text, targetLang string) string
	// Name returns the engine name
	Name() string
}
