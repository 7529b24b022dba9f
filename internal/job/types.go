package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobGenerate  JobType = "generate"
	JobTranslate JobType = "translate"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued task (subtitle generation or translation)
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// GenerateParams are parameters for a subtitle generation job
type GenerateParams struct {
	Engine         string  `json:"engine"`                    // "whisperx", "openai"
	Model          string  `json:"model"`                     // model name/size
	Language       string  `json:"language"`                  // "auto", "ko", "en", "ja", etc.
	PauseThreshold float64 `json:"pause_threshold,omitempty"` // seconds of silence that splits cues
	MaxCueDuration float64 `json:"max_cue_duration,omitempty"`
	MaxLineChars   int     `json:"max_line_chars,omitempty"`
}

// TranslateParams are parameters for a translation job
type TranslateParams struct {
	SubtitleID   string `json:"subtitle_id"`   // source subtitle ID (e.g., "generated:whisper_ja.srt")
	TargetLang   string `json:"target_lang"`   // "ko", "en", "ja", etc.
	Engine       string `json:"engine"`        // "gemini"
	Preset       string `json:"preset"`        // "anime", "movie", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt"` // for "custom" preset
}

// GenerateResult is the output of a successful subtitle generation
type GenerateResult struct {
	SRTPath      string `json:"srt_path"`      // subtitle ID of the generated SRT
	DialoguePath string `json:"dialogue_path"` // subtitle ID of the dialogue transcript
	Language     string `json:"language"`      // detected or specified language
	CueCount     int    `json:"cue_count"`
}

// TranslateResult is the output of a successful translation
type TranslateResult struct {
	OutputPath string `json:"output_path"` // subtitle ID of the translated SRT
}

// JobHandler processes a job. Implementations are provided by the
// transcribe/translate packages.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
