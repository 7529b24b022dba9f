package handlers

import "net/http"

// Health is the liveness endpoint used by deploy probes and the frontend
func Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
