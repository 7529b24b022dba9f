package translate

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/audio-subtitler/backend/internal/job"
	"github.com/audio-subtitler/backend/internal/subtitle"
)

// Service manages translation engines and processes translation jobs
type Service struct {
	engines      map[string]Translator
	mediaPath    string
	subtitlePath string
	maxLineChars int
}

// NewService creates a translation service with available engines
func NewService(mediaPath, subtitlePath, geminiKey string, geminiModelResolver ModelResolver, attempts, maxLineChars int) *Service {
	s := &Service{
		engines:      make(map[string]Translator),
		mediaPath:    mediaPath,
		subtitlePath: subtitlePath,
		maxLineChars: maxLineChars,
	}

	if geminiKey != "" {
		s.engines["gemini"] = NewGeminiTranslator(geminiKey, geminiModelResolver, attempts)
		log.Printf("[translate] registered Gemini engine (model resolved dynamically from DB)")
	}

	return s
}

// RegisterEngine adds an engine
func (s *Service) RegisterEngine(name string, engine Translator) {
	s.engines[name] = engine
	log.Printf("[translate] registered %s engine", name)
}

// Engines lists the registered engine names
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	return names
}

// HandleJob processes a translation job: parse the source SRT, translate the
// dialogue as one scene, align the translated lines back onto the cue
// timeline and write the translated SRT.
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranslateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	engine, ok := s.engines[params.Engine]
	if !ok {
		return fmt.Errorf("unknown translation engine: %s (available: %v)", params.Engine, s.Engines())
	}

	// Load source subtitle
	srtContent, err := s.loadSubtitle(j.FilePath, params.SubtitleID)
	if err != nil {
		return fmt.Errorf("load subtitle: %w", err)
	}

	cues := subtitle.ParseSRT(srtContent)
	if len(cues) == 0 {
		return fmt.Errorf("no subtitle cues found in source")
	}

	// Detect source language from subtitle ID (e.g., "generated:whisper_ja.srt" → "ja")
	sourceLang := detectSourceLang(params.SubtitleID)

	log.Printf("[translate] translating %d cues: engine=%s source=%s target=%s preset=%s",
		len(cues), params.Engine, sourceLang, params.TargetLang, params.Preset)

	// One "Speaker: text" line per cue so the translated lines align by
	// position.
	var dialogue strings.Builder
	for _, cue := range cues {
		dialogue.WriteString(subtitle.SpeakerLine(cue.Speaker, cue.Text))
		dialogue.WriteString("\n")
	}

	var lines []subtitle.TranslatedLine
	translated, err := engine.TranslateDialogue(ctx, dialogue.String(), Options{
		SourceLang:   sourceLang,
		TargetLang:   params.TargetLang,
		Preset:       params.Preset,
		CustomPrompt: params.CustomPrompt,
	}, updateProgress)
	if err != nil {
		// The aligner falls back to line-by-line translation when the
		// scene pass produces nothing.
		log.Printf("[translate] dialogue translation failed, falling back to per-line: %v", err)
	} else {
		lines = subtitle.ParseDialogueLines(translated)
	}

	aligned := subtitle.Align(ctx, cues, lines, params.TargetLang, engine.TranslateLine)

	// Save translated SRT
	hash := mediaHash(j.FilePath)
	outDir := filepath.Join(s.subtitlePath, hash)
	os.MkdirAll(outDir, 0755)

	outName := fmt.Sprintf("translate_%s_%s.srt", params.TargetLang, params.Engine)
	outFile := filepath.Join(outDir, outName)

	if err := os.WriteFile(outFile, []byte(subtitle.WriteTranslatedSRT(aligned, s.maxLineChars)), 0644); err != nil {
		return fmt.Errorf("save translated subtitle: %w", err)
	}

	log.Printf("[translate] translation complete: %s", outFile)

	resultJSON, _ := json.Marshal(job.TranslateResult{
		OutputPath: "generated:" + outName,
	})
	j.Result = resultJSON

	updateProgress(1.0)
	return nil
}

// loadSubtitle reads SRT content from the appropriate source
func (s *Service) loadSubtitle(videoPath, subtitleID string) (string, error) {
	if strings.HasPrefix(subtitleID, "generated:") {
		// Load from generated subtitles directory
		filename := strings.TrimPrefix(subtitleID, "generated:")
		hash := mediaHash(videoPath)
		subPath := filepath.Join(s.subtitlePath, hash, filename)
		data, err := os.ReadFile(subPath)
		if err != nil {
			return "", fmt.Errorf("read generated subtitle: %w", err)
		}
		return string(data), nil
	}

	if strings.HasPrefix(subtitleID, "external:") {
		// Load from media directory, next to the video
		filename := strings.TrimPrefix(subtitleID, "external:")
		fullPath := filepath.Join(s.mediaPath, videoPath)
		subPath := filepath.Join(filepath.Dir(fullPath), filename)
		data, err := os.ReadFile(subPath)
		if err != nil {
			return "", fmt.Errorf("read external subtitle: %w", err)
		}
		return string(data), nil
	}

	if strings.HasPrefix(subtitleID, "embedded:") {
		// Extract embedded subtitle via FFmpeg as SRT
		var streamIndex int
		fmt.Sscanf(strings.TrimPrefix(subtitleID, "embedded:"), "%d", &streamIndex)

		fullPath := filepath.Join(s.mediaPath, videoPath)
		cmd := exec.Command("ffmpeg",
			"-hide_banner",
			"-loglevel", "error",
			"-i", fullPath,
			"-map", fmt.Sprintf("0:%d", streamIndex),
			"-f", "srt",
			"pipe:1",
		)

		output, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("extract embedded subtitle (stream %d): %w", streamIndex, err)
		}
		return string(output), nil
	}

	return "", fmt.Errorf("unknown subtitle type: %s", subtitleID)
}

func detectSourceLang(subtitleID string) string {
	// "generated:whisper_ja.srt" → "ja"
	// "generated:translate_ko_gemini.srt" → "ko"
	// "external:video.en.srt" → "en"
	name := subtitleID
	for _, prefix := range []string{"generated:", "external:"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if strings.HasPrefix(name, "whisper_") {
		return strings.TrimPrefix(name, "whisper_")
	}
	if strings.HasPrefix(name, "translate_") {
		parts := strings.SplitN(strings.TrimPrefix(name, "translate_"), "_", 2)
		if len(parts) >= 1 {
			return parts[0]
		}
	}

	// Try to extract from "video.en" pattern
	parts := strings.Split(name, ".")
	if len(parts) >= 2 {
		lang := parts[len(parts)-1]
		if len(lang) == 2 || len(lang) == 3 {
			return lang
		}
	}

	return "auto"
}

func mediaHash(mediaPath string) string {
	h := sha256.Sum256([]byte(mediaPath))
	return fmt.Sprintf("%x", h[:8])
}
