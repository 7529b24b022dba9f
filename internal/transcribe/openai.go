package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/audio-subtitler/backend/internal/ffmpeg"
	"github.com/audio-subtitler/backend/internal/subtitle"
)

const openAITranscriptionURL = "https://api.openai.com/v1/audio/transcriptions"
const maxOpenAIFileSize = 25 * 1024 * 1024 // 25MB limit
const openAIChunkSeconds = 600             // 10-minute chunks when over the limit

// OpenAIClient uses the OpenAI transcription API with word-level timestamps.
// The API does no diarization, so all words come back without a speaker.
type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *OpenAIClient) Name() string {
	return "openai"
}

func (c *OpenAIClient) Transcribe(ctx context.Context, req Request, updateProgress func(float64)) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	// Step 1: Extract audio as MP3 (smaller than WAV for upload)
	updateProgress(0.05)
	audioPath, err := ffmpeg.ExtractMP3(ctx, req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	defer os.Remove(audioPath)

	updateProgress(0.1)

	// Check file size
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, err
	}

	if info.Size() > maxOpenAIFileSize {
		// Split and process in chunks
		return c.transcribeChunked(ctx, req, audioPath, updateProgress)
	}

	// Single file transcription
	words, lang, err := c.transcribeSingle(ctx, audioPath, req, updateProgress)
	if err != nil {
		return nil, err
	}

	return &Result{Words: words, Language: lang}, nil
}

func (c *OpenAIClient) transcribeSingle(ctx context.Context, audioPath string, req Request, updateProgress func(float64)) ([]subtitle.TimedWord, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Audio file
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, "", err
	}

	model := req.Model
	if model == "" {
		model = "whisper-1"
	}
	writer.WriteField("model", model)
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("timestamp_granularities[]", "word")
	if req.Language != "" && req.Language != "auto" {
		writer.WriteField("language", req.Language)
	}
	writer.Close()

	updateProgress(0.2)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openAITranscriptionURL, &buf)
	if err != nil {
		return nil, "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[transcribe-openai] sending request to OpenAI API")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("OpenAI API request: %w", err)
	}
	defer resp.Body.Close()

	updateProgress(0.9)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Language string `json:"language"`
		Words    []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}

	words := make([]subtitle.TimedWord, 0, len(payload.Words))
	for _, w := range payload.Words {
		words = append(words, subtitle.TimedWord{
			Text:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}

	return words, payload.Language, nil
}

// transcribeChunked splits a large audio file into chunks, transcribes each
// and shifts the word timestamps by the chunk offset
func (c *OpenAIClient) transcribeChunked(ctx context.Context, req Request, audioPath string, updateProgress func(float64)) (*Result, error) {
	chunkDir, chunks, err := ffmpeg.SplitMP3(ctx, audioPath, openAIChunkSeconds)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(chunkDir)

	updateProgress(0.15)

	var allWords []subtitle.TimedWord
	language := req.Language

	for i, chunk := range chunks {
		progress := 0.15 + (0.75 * float64(i) / float64(len(chunks)))
		updateProgress(progress)

		words, lang, err := c.transcribeSingle(ctx, chunk, req, func(float64) {})
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if i == 0 && lang != "" {
			language = lang
		}

		// Timestamps from the API are relative to chunk start
		offset := float64(i) * float64(openAIChunkSeconds)
		for _, w := range words {
			w.Start += offset
			w.End += offset
			allWords = append(allWords, w)
		}
	}

	updateProgress(0.95)

	return &Result{
		Words:    allWords,
		Language: language,
	}, nil
}
