package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExtractWAV extracts audio as WAV 16kHz mono (required by whisper models).
// The caller removes the returned temp file.
func ExtractWAV(ctx context.Context, videoPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "transcribe-audio-*.wav")
	if err != nil {
		return "", err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn", // no video
		"-acodec", "pcm_s16le",
		"-ar", "16000", // 16kHz
		"-ac", "1",     // mono
		"-y",           // overwrite
		tmpFile.Name(),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("ffmpeg: %s: %w", string(output), err)
	}

	return tmpFile.Name(), nil
}

// ExtractMP3 extracts audio as MP3, much smaller than WAV for API uploads.
// The caller removes the returned temp file.
func ExtractMP3(ctx context.Context, videoPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "transcribe-audio-*.mp3")
	if err != nil {
		return "", err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "4", // ~130kbps VBR
		"-y",
		tmpFile.Name(),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("ffmpeg: %s: %w", string(output), err)
	}

	return tmpFile.Name(), nil
}

// SplitMP3 splits an MP3 file into fixed-length chunks and returns their
// paths in playback order. The caller removes the returned directory.
func SplitMP3(ctx context.Context, audioPath string, chunkSeconds int) (string, []string, error) {
	chunkDir, err := os.MkdirTemp("", "transcribe-chunks-*")
	if err != nil {
		return "", nil, err
	}

	chunkPattern := filepath.Join(chunkDir, "chunk_%03d.mp3")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", fmt.Sprintf("%d", chunkSeconds),
		"-c:a", "libmp3lame",
		"-q:a", "4",
		"-y",
		chunkPattern,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(chunkDir)
		return "", nil, fmt.Errorf("ffmpeg split: %s: %w", string(output), err)
	}

	entries, err := os.ReadDir(chunkDir)
	if err != nil {
		os.RemoveAll(chunkDir)
		return "", nil, err
	}

	var chunks []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".mp3") {
			chunks = append(chunks, filepath.Join(chunkDir, e.Name()))
		}
	}

	if len(chunks) == 0 {
		os.RemoveAll(chunkDir)
		return "", nil, fmt.Errorf("no audio chunks generated")
	}

	return chunkDir, chunks, nil
}
