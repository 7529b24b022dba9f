package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/audio-subtitler/backend/internal/ffmpeg"
	"github.com/audio-subtitler/backend/internal/subtitle"
)

// WhisperXClient talks to a WhisperX HTTP server that returns word-level
// timings with speaker labels from diarization.
type WhisperXClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewWhisperXClient creates a client for the WhisperX server
func NewWhisperXClient(baseURL string) *WhisperXClient {
	return &WhisperXClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // transcription can be very long
		},
	}
}

func (c *WhisperXClient) Name() string {
	return "whisperx"
}

// Transcribe sends an audio file to the WhisperX server and returns timed words
func (c *WhisperXClient) Transcribe(ctx context.Context, req Request, updateProgress func(float64)) (*Result, error) {
	// Step 1: Extract audio from video using FFmpeg (WAV 16kHz mono)
	updateProgress(0.05)
	audioPath, err := ffmpeg.ExtractWAV(ctx, req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	defer os.Remove(audioPath)

	updateProgress(0.1)

	// Step 2: Send to WhisperX server, retrying transient failures once
	result, err := c.sendToServer(ctx, audioPath, req, updateProgress)
	if err != nil && isRetryableError(err) {
		log.Printf("[whisperx] transient error, retrying: %v", err)
		result, err = c.sendToServer(ctx, audioPath, req, updateProgress)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *WhisperXClient) sendToServer(ctx context.Context, audioPath string, req Request, updateProgress func(float64)) (*Result, error) {
	// Build multipart form
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Add audio file
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	// Add parameters
	writer.WriteField("diarize", "true")
	writer.WriteField("word_timestamps", "true")
	if req.Language != "" && req.Language != "auto" {
		writer.WriteField("language", req.Language)
	}
	if req.Model != "" {
		writer.WriteField("model", req.Model)
	}

	writer.Close()

	updateProgress(0.15)

	// Send request
	url := c.baseURL + "/transcribe"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[whisperx] sending request to %s (audio: %s)", url, audioPath)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisperx server request: %w", err)
	}
	defer resp.Body.Close()

	updateProgress(0.9)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504 {
			return nil, fmt.Errorf("whisperx server unavailable (status %d): %w", resp.StatusCode, errTransient)
		}
		return nil, fmt.Errorf("whisperx server error (status %d): %s", resp.StatusCode, string(body))
	}

	words, language, err := parseTranscript(body)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = req.Language
	}

	updateProgress(0.95)

	return &Result{
		Words:    words,
		Language: language,
	}, nil
}

// parseTranscript extracts timed words from a WhisperX JSON response. The
// server returns a flat word_segments array; older versions only nest words
// under segments, so fall back to flattening those.
func parseTranscript(body []byte) ([]subtitle.TimedWord, string, error) {
	var payload struct {
		Language     string               `json:"language"`
		WordSegments []subtitle.TimedWord `json:"word_segments"`
		Segments     []struct {
			Words []subtitle.TimedWord `json:"words"`
		} `json:"segments"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", fmt.Errorf("parse transcript: %w", err)
	}

	words := payload.WordSegments
	if len(words) == 0 {
		for _, seg := range payload.Segments {
			words = append(words, seg.Words...)
		}
	}

	// Words without timings (diarization gaps) inherit the neighbor's
	// timestamps so segmentation still sees a monotonic stream.
	cleaned := make([]subtitle.TimedWord, 0, len(words))
	lastEnd := 0.0
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		if w.Start == 0 && w.End == 0 && lastEnd > 0 {
			w.Start = lastEnd
			w.End = lastEnd
		}
		lastEnd = w.End
		cleaned = append(cleaned, w)
	}

	if len(cleaned) == 0 {
		return nil, "", fmt.Errorf("no words in transcript")
	}

	return cleaned, payload.Language, nil
}

var errTransient = errors.New("transient server error")

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	if errors.Is(err, errTransient) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "timeout")
}
