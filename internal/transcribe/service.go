package transcribe

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/audio-subtitler/backend/internal/job"
	"github.com/audio-subtitler/backend/internal/subtitle"
)

// Service manages transcription engines and processes generation jobs
type Service struct {
	engines      map[string]Transcriber
	mediaPath    string
	subtitlePath string
	segmentOpts  subtitle.SegmentOptions
	maxLineChars int
}

// NewService creates a transcription service with available engines
func NewService(mediaPath, subtitlePath, whisperXURL, openAIKey string, segmentOpts subtitle.SegmentOptions, maxLineChars int) *Service {
	s := &Service{
		engines:      make(map[string]Transcriber),
		mediaPath:    mediaPath,
		subtitlePath: subtitlePath,
		segmentOpts:  segmentOpts,
		maxLineChars: maxLineChars,
	}

	if whisperXURL != "" {
		s.engines["whisperx"] = NewWhisperXClient(whisperXURL)
		log.Printf("[transcribe] registered WhisperX engine at %s", whisperXURL)
	}

	if openAIKey != "" {
		s.engines["openai"] = NewOpenAIClient(openAIKey)
		log.Printf("[transcribe] registered OpenAI engine")
	}

	return s
}

// RegisterEngine adds an engine
func (s *Service) RegisterEngine(name string, engine Transcriber) {
	s.engines[name] = engine
	log.Printf("[transcribe] registered %s engine", name)
}

// Engines lists the registered engine names
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	return names
}

// HandleJob processes a subtitle generation job: transcribe to timed words,
// segment into cues and write the SRT plus the dialogue transcript
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.GenerateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	engine, ok := s.engines[params.Engine]
	if !ok {
		return fmt.Errorf("unknown transcription engine: %s (available: %v)", params.Engine, s.Engines())
	}

	// Resolve full path
	fullPath := filepath.Join(s.mediaPath, j.FilePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", j.FilePath)
	}

	log.Printf("[transcribe] starting: engine=%s file=%s language=%s",
		params.Engine, j.FilePath, params.Language)

	result, err := engine.Transcribe(ctx, Request{
		FilePath: fullPath,
		Language: params.Language,
		Model:    params.Model,
	}, updateProgress)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	cues, err := subtitle.Segment(result.Words, s.resolveSegmentOpts(params))
	if err != nil {
		return fmt.Errorf("segment words: %w", err)
	}

	maxChars := params.MaxLineChars
	if maxChars <= 0 {
		maxChars = s.maxLineChars
	}

	// Save SRT and dialogue transcript to the subtitle output directory
	hash := mediaHash(j.FilePath)
	outDir := filepath.Join(s.subtitlePath, hash)
	os.MkdirAll(outDir, 0755)

	lang := result.Language
	if lang == "" {
		lang = "auto"
	}

	srtName := fmt.Sprintf("whisper_%s.srt", lang)
	srtFile := filepath.Join(outDir, srtName)
	if err := os.WriteFile(srtFile, []byte(subtitle.ToSRT(cues, maxChars)), 0644); err != nil {
		return fmt.Errorf("save subtitle: %w", err)
	}

	dialogueName := fmt.Sprintf("dialogue_%s.txt", lang)
	dialogueFile := filepath.Join(outDir, dialogueName)
	if err := os.WriteFile(dialogueFile, []byte(subtitle.ToDialogueText(cues)), 0644); err != nil {
		return fmt.Errorf("save dialogue transcript: %w", err)
	}

	log.Printf("[transcribe] complete: %d cues, %s", len(cues), srtFile)

	resultJSON, _ := json.Marshal(job.GenerateResult{
		SRTPath:      "generated:" + srtName,
		DialoguePath: "generated:" + dialogueName,
		Language:     lang,
		CueCount:     len(cues),
	})
	j.Result = resultJSON

	updateProgress(1.0)
	return nil
}

func (s *Service) resolveSegmentOpts(params job.GenerateParams) subtitle.SegmentOptions {
	opts := s.segmentOpts
	if params.PauseThreshold > 0 {
		opts.PauseThreshold = params.PauseThreshold
	}
	if params.MaxCueDuration > 0 {
		opts.MaxDuration = params.MaxCueDuration
	}
	return opts
}

func mediaHash(mediaPath string) string {
	h := sha256.Sum256([]byte(mediaPath))
	return fmt.Sprintf("%x", h[:8])
}
