package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/audio-subtitler/backend/internal/ffmpeg"
	"github.com/audio-subtitler/backend/internal/job"
	"github.com/audio-subtitler/backend/internal/storage"
)

type SubtitleHandler struct {
	mediaPath    string
	subtitlePath string
	queue        *job.JobQueue
}

func NewSubtitleHandler(mediaPath, subtitlePath string, queue *job.JobQueue) *SubtitleHandler {
	return &SubtitleHandler{
		mediaPath:    mediaPath,
		subtitlePath: subtitlePath,
		queue:        queue,
	}
}

type SubtitleEntry struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Language string `json:"language"`
	Type     string `json:"type"`   // "generated", "embedded" or "external"
	Format   string `json:"format"` // codec name or file extension
}

// textSubtitleCodecs are subtitle codecs that can be converted to SRT
var textSubtitleCodecs = map[string]bool{
	"subrip":     true, // SRT
	"ass":        true,
	"ssa":        true,
	"webvtt":     true,
	"mov_text":   true, // MP4 embedded text
	"srt":        true,
	"text":       true,
	"substation": true,
}

// ListSubtitles returns available subtitles (generated + embedded + external) for a media file
func (h *SubtitleHandler) ListSubtitles(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	fullPath := filepath.Join(h.mediaPath, path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	var entries []SubtitleEntry

	// 1. Generated artifacts (SRT and dialogue transcripts) for this file
	genDir := filepath.Join(h.subtitlePath, mediaHash(path))
	if genEntries, err := os.ReadDir(genDir); err == nil {
		for _, entry := range genEntries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := strings.TrimPrefix(filepath.Ext(name), ".")
			if ext != "srt" && ext != "txt" {
				continue
			}
			entries = append(entries, SubtitleEntry{
				ID:       "generated:" + name,
				Label:    name,
				Language: generatedLang(name),
				Type:     "generated",
				Format:   ext,
			})
		}
	}

	// 2. Embedded subtitles via FFprobe
	info, err := ffmpeg.Probe(r.Context(), fullPath)
	if err == nil {
		for _, s := range info.Streams {
			if s.CodecType != "subtitle" {
				continue
			}
			// Only include text-based subtitle codecs
			if !textSubtitleCodecs[s.CodecName] {
				continue
			}

			label := "Unknown"
			if s.Tags != nil {
				if l, ok := s.Tags["language"]; ok && l != "" {
					label = l
				}
				if title, ok := s.Tags["title"]; ok && title != "" {
					label = title
				}
			}

			entries = append(entries, SubtitleEntry{
				ID:       fmt.Sprintf("embedded:%d", s.Index),
				Label:    label,
				Language: langFromTags(s.Tags),
				Type:     "embedded",
				Format:   s.CodecName,
			})
		}
	}

	// 3. External subtitle files in the same directory
	videoDir := filepath.Dir(fullPath)
	videoBase := strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath))

	dirEntries, err := os.ReadDir(videoDir)
	if err == nil {
		for _, entry := range dirEntries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !storage.IsSubtitleFile(name) {
				continue
			}
			// Match subtitle files that start with the video filename
			subBase := strings.TrimSuffix(name, filepath.Ext(name))
			if !strings.HasPrefix(subBase, videoBase) {
				continue
			}

			// Extract language hint from filename
			// e.g., "video.ko.srt" -> "ko", "video.en.ass" -> "en"
			label := name
			lang := ""
			suffix := strings.TrimPrefix(subBase, videoBase)
			suffix = strings.TrimPrefix(suffix, ".")
			if suffix != "" {
				lang = suffix
				label = suffix + " (" + filepath.Ext(name)[1:] + ")"
			}

			entries = append(entries, SubtitleEntry{
				ID:       "external:" + name,
				Label:    label,
				Language: lang,
				Type:     "external",
				Format:   strings.TrimPrefix(filepath.Ext(name), "."),
			})
		}
	}

	if entries == nil {
		entries = []SubtitleEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// ServeSubtitle serves subtitle content by ID
func (h *SubtitleHandler) ServeSubtitle(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	subtitleID := r.URL.Query().Get("id")

	if subtitleID == "" {
		jsonError(w, "subtitle id required", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasPrefix(subtitleID, "generated:"):
		h.serveGeneratedSubtitle(w, path, subtitleID)
	case strings.HasPrefix(subtitleID, "embedded:"):
		h.serveEmbeddedSubtitle(w, filepath.Join(h.mediaPath, path), subtitleID)
	case strings.HasPrefix(subtitleID, "external:"):
		h.serveExternalSubtitle(w, filepath.Join(h.mediaPath, path), subtitleID)
	default:
		jsonError(w, "invalid subtitle id", http.StatusBadRequest)
	}
}

func (h *SubtitleHandler) serveGeneratedSubtitle(w http.ResponseWriter, mediaPath, subtitleID string) {
	filename := filepath.Base(strings.TrimPrefix(subtitleID, "generated:"))
	subPath := filepath.Join(h.subtitlePath, mediaHash(mediaPath), filename)

	data, err := os.ReadFile(subPath)
	if err != nil {
		jsonError(w, "subtitle file not found", http.StatusNotFound)
		return
	}

	if strings.HasSuffix(filename, ".srt") {
		w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(data)
}

func (h *SubtitleHandler) serveEmbeddedSubtitle(w http.ResponseWriter, videoPath, subtitleID string) {
	// Parse stream index from "embedded:3"
	var streamIndex int
	fmt.Sscanf(strings.TrimPrefix(subtitleID, "embedded:"), "%d", &streamIndex)

	// Extract subtitle as SRT using FFmpeg
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-f", "srt",
		"pipe:1",
	)

	output, err := cmd.Output()
	if err != nil {
		jsonError(w, "failed to extract subtitle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Write(output)
}

func (h *SubtitleHandler) serveExternalSubtitle(w http.ResponseWriter, videoPath, subtitleID string) {
	filename := strings.TrimPrefix(subtitleID, "external:")
	videoDir := filepath.Dir(videoPath)
	subPath := filepath.Join(videoDir, filename)

	// Security: ensure the subtitle file is in the same directory
	absDir, _ := filepath.Abs(videoDir)
	absSub, _ := filepath.Abs(subPath)
	if filepath.Dir(absSub) != absDir {
		jsonError(w, "invalid path", http.StatusForbidden)
		return
	}

	data, err := os.ReadFile(subPath)
	if err != nil {
		jsonError(w, "subtitle file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "max-age=3600")

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".srt":
		w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
		w.Write(data)
	case ".ass", ".ssa", ".vtt", ".sub":
		// Use FFmpeg to convert to SRT
		cmd := exec.Command("ffmpeg",
			"-hide_banner",
			"-loglevel", "error",
			"-i", subPath,
			"-f", "srt",
			"pipe:1",
		)
		output, err := cmd.Output()
		if err != nil {
			// Fallback: serve as-is
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write(data)
			return
		}
		w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
		w.Write(output)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(data)
	}
}

// GenerateSubtitle enqueues a subtitle generation job for a media file
func (h *SubtitleHandler) GenerateSubtitle(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	fullPath := filepath.Join(h.mediaPath, path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	var params job.GenerateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if params.Engine == "" {
		jsonError(w, "engine is required", http.StatusBadRequest)
		return
	}
	if params.Language == "" {
		params.Language = "auto"
	}

	// Transcription needs an audio track
	info, err := ffmpeg.Probe(r.Context(), fullPath)
	if err != nil {
		jsonError(w, "failed to probe file", http.StatusInternalServerError)
		return
	}
	if !info.HasAudio {
		jsonError(w, "file has no audio stream", http.StatusBadRequest)
		return
	}

	j, err := h.queue.Enqueue(job.JobGenerate, path, params)
	if err != nil {
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// TranslateSubtitle enqueues a translation job for an existing subtitle
func (h *SubtitleHandler) TranslateSubtitle(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	fullPath := filepath.Join(h.mediaPath, path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	var params job.TranslateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if params.SubtitleID == "" || params.TargetLang == "" {
		jsonError(w, "subtitle_id and target_lang are required", http.StatusBadRequest)
		return
	}
	if params.Engine == "" {
		params.Engine = "gemini"
	}
	if params.Preset == "" {
		params.Preset = "movie"
	}

	j, err := h.queue.Enqueue(job.JobTranslate, path, params)
	if err != nil {
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// generatedLang extracts the language from a generated artifact name,
// e.g. "whisper_ja.srt" -> "ja", "translate_ko_gemini.srt" -> "ko"
func generatedLang(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasPrefix(base, "whisper_") {
		return strings.TrimPrefix(base, "whisper_")
	}
	if strings.HasPrefix(base, "dialogue_") {
		return strings.TrimPrefix(base, "dialogue_")
	}
	if strings.HasPrefix(base, "translate_") {
		parts := strings.SplitN(strings.TrimPrefix(base, "translate_"), "_", 2)
		if len(parts) >= 1 {
			return parts[0]
		}
	}
	return ""
}

func langFromTags(tags map[string]string) string {
	if tags == nil {
		return ""
	}
	if l, ok := tags["language"]; ok {
		return l
	}
	return ""
}

func mediaHash(mediaPath string) string {
	h := sha256.Sum256([]byte(mediaPath))
	return fmt.Sprintf("%x", h[:8])
}
