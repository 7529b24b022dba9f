package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".ts": true, ".mpg": true, ".mpeg": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
	".aac": true, ".ogg": true, ".opus": true, ".wma": true,
}

var subtitleExtensions = map[string]bool{
	".srt": true, ".vtt": true, ".ass": true, ".ssa": true, ".sub": true,
}

func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsMediaFile reports whether the file can be fed to the transcription
// pipeline (anything ffmpeg can pull an audio track from).
func IsMediaFile(name string) bool {
	return IsVideoFile(name) || IsAudioFile(name)
}

func IsSubtitleFile(name string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// resolveWithin joins base and rel and rejects path traversal outside base.
func resolveWithin(basePath, relativePath string) (string, error) {
	fullPath := filepath.Join(basePath, relativePath)

	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return absFull, nil
}

func ListDirectory(basePath, relativePath string) ([]*FileEntry, error) {
	fullPath, err := resolveWithin(basePath, relativePath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var result []*FileEntry
	for _, entry := range entries {
		// Skip hidden files
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		fe := &FileEntry{
			Name:  entry.Name(),
			Path:  filepath.Join(relativePath, entry.Name()),
			IsDir: entry.IsDir(),
		}
		if !entry.IsDir() {
			fe.Size = info.Size()
		}
		result = append(result, fe)
	}
	return result, nil
}

// SanitizeFilename strips path components and characters that are unsafe in
// a stored filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			b.WriteRune('_')
		case r < 0x20:
			// control characters
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "upload"
	}
	return out
}

// SaveUpload streams an uploaded file into basePath/relativeDir and returns
// the path relative to basePath.
func SaveUpload(basePath, relativeDir, filename string, src io.Reader) (string, error) {
	filename = SanitizeFilename(filename)

	dir, err := resolveWithin(basePath, relativeDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	dstPath := filepath.Join(dir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write upload: %w", err)
	}

	rel, err := filepath.Rel(basePath, dstPath)
	if err != nil {
		return "", err
	}
	return rel, nil
}
