package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audio-subtitler/backend/internal/api"
	"github.com/audio-subtitler/backend/internal/auth"
	"github.com/audio-subtitler/backend/internal/config"
	"github.com/audio-subtitler/backend/internal/db"
	"github.com/audio-subtitler/backend/internal/job"
	"github.com/audio-subtitler/backend/internal/subtitle"
	"github.com/audio-subtitler/backend/internal/transcribe"
	"github.com/audio-subtitler/backend/internal/translate"
)

func main() {
	cfg := config.Load()

	// Ensure data directories exist
	os.MkdirAll(cfg.DataPath, 0755)
	os.MkdirAll(cfg.SubtitlePath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret, 24*time.Hour)

	// Job queue
	jobQueue := job.NewJobQueue(database.DB())
	defer jobQueue.Stop()

	// Transcription service: settings in DB override environment keys
	openAIKey := database.GetSetting("openai_api_key", cfg.OpenAIKey)
	segmentOpts := subtitle.SegmentOptions{
		PauseThreshold: cfg.PauseThreshold,
		MaxDuration:    cfg.MaxCueDuration,
	}
	transcribeService := transcribe.NewService(
		cfg.MediaPath, cfg.SubtitlePath,
		cfg.WhisperXURL, openAIKey,
		segmentOpts, cfg.MaxLineChars,
	)
	jobQueue.RegisterHandler(job.JobGenerate, transcribeService.HandleJob)

	// Translation service
	geminiKey := database.GetSetting("gemini_api_key", cfg.GeminiKey)
	geminiModel := func() string {
		return database.GetSetting("gemini_model", "gemini-2.0-flash")
	}
	translateService := translate.NewService(
		cfg.MediaPath, cfg.SubtitlePath,
		geminiKey, geminiModel,
		cfg.TranslateAttempts, cfg.MaxLineChars,
	)
	jobQueue.RegisterHandler(job.JobTranslate, translateService.HandleJob)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, jobQueue)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		jobQueue.Stop()
	}()

	log.Printf("Starting server on %s", addr)
	log.Printf("Media path: %s", cfg.MediaPath)
	log.Printf("Subtitle path: %s", cfg.SubtitlePath)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
