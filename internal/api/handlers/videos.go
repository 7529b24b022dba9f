package handlers

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/audio-subtitler/backend/internal/ffmpeg"
	"github.com/audio-subtitler/backend/internal/storage"
)

// extractPath extracts and URL-decodes the wildcard path from chi router
func extractPath(r *http.Request) string {
	path := chi.URLParam(r, "*")
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return path
	}
	// Clean any double slashes or trailing slashes
	decoded = strings.TrimPrefix(decoded, "/")
	decoded = strings.TrimSuffix(decoded, "/")
	return decoded
}

type VideosHandler struct {
	mediaPath   string
	maxUploadMB int
}

func NewVideosHandler(mediaPath string, maxUploadMB int) *VideosHandler {
	return &VideosHandler{mediaPath: mediaPath, maxUploadMB: maxUploadMB}
}

func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	if path == "" {
		path = "."
	}

	entries, err := storage.ListDirectory(h.mediaPath, path)
	if err != nil {
		jsonError(w, "failed to list directory", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"path":    path,
		"entries": entries,
	}, http.StatusOK)
}

func (h *VideosHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)

	if !storage.IsMediaFile(path) {
		jsonError(w, "not a media file", http.StatusBadRequest)
		return
	}

	info, err := ffmpeg.Probe(r.Context(), filepath.Join(h.mediaPath, path))
	if err != nil {
		jsonError(w, "failed to probe file", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, info, http.StatusOK)
}

func (h *VideosHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	results, err := storage.Search(h.mediaPath, q, 50)
	if err != nil {
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"query":   q,
		"results": results,
	}, http.StatusOK)
}

// Upload accepts a multipart media file and stores it under the media path
func (h *VideosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxUploadMB)<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !storage.IsMediaFile(header.Filename) {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	dir := r.FormValue("dir")
	rel, err := storage.SaveUpload(h.mediaPath, dir, header.Filename, file)
	if err != nil {
		jsonError(w, "failed to save upload", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"path": rel,
		"size": header.Size,
	}, http.StatusCreated)
}
