package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          int
	MediaPath     string
	DataPath      string
	DBPath        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	SubtitlePath  string
	CORSOrigins   []string

	// Transcription / translation engines
	WhisperXURL string
	OpenAIKey   string
	GeminiKey   string

	// Cue segmentation and line wrapping defaults
	PauseThreshold float64
	MaxCueDuration float64
	MaxLineChars   int

	// Per-line translation attempts before the failure sentinel
	TranslateAttempts int

	// Upload limit in megabytes
	MaxUploadMB int
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		Port:          port,
		MediaPath:     getEnv("MEDIA_PATH", "/media"),
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/subtitler.db"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		SubtitlePath:  getEnv("SUBTITLE_PATH", dataPath+"/subtitles"),
		CORSOrigins:   corsOrigins,

		WhisperXURL: getEnv("WHISPERX_URL", ""),
		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		GeminiKey:   getEnv("GEMINI_API_KEY", ""),

		PauseThreshold: getEnvFloat("PAUSE_THRESHOLD", 1.0),
		MaxCueDuration: getEnvFloat("MAX_CUE_DURATION", 8.0),
		MaxLineChars:   getEnvInt("MAX_CHARS_PER_LINE", 42),

		TranslateAttempts: getEnvInt("TRANSLATE_ATTEMPTS", 2),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 4096),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("WARNING: invalid %s=%q, using default %d", key, v, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("WARNING: invalid %s=%q, using default %g", key, v, fallback)
	}
	return fallback
}
