package transcribe

import (
	"context"

	"github.com/audio-subtitler/backend/internal/subtitle"
)

// Request is the input for a transcription
type Request struct {
	FilePath string // absolute path to the media file
	Language string // "auto", "ko", "en", "ja", etc.
	Model    string // model name/size (for OpenAI: "whisper-1", for WhisperX: model path)
}

// Result is the output of a transcription: word-level timings, ready for
// cue segmentation
type Result struct {
	Words    []subtitle.TimedWord
	Language string // detected language
}

// Transcriber is the common interface for all transcription engines
type Transcriber interface {
	// Transcribe converts audio/video to word-level timings
	Transcribe(ctx context.Context, req Request, updateProgress func(float64)) (*Result, error)
	// Name returns the engine name
	Name() string
}
