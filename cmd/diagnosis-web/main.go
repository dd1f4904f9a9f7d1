package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/auth"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/logging"
)

// CLI flags
var (
	portFlag  int
	modelFlag string
	modeFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "diagnosis-web",
	Short: "Web API for lettuce plant-health diagnosis",
	Long: `Diagnosis Web starts a local server exposing the lettuce diagnosis
pipeline over HTTP. A photo is captioned under a quality gate, two
question-answering calls run over the caption, and a judge reconciles
them into one final answer.

Examples:
  diagnosis-web
  diagnosis-web --port 9090
  diagnosis-web --model gemini-2.5-pro
  diagnosis-web --mode unified`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", gateway.DefaultModelName, "Gemini model to use")
	rootCmd.Flags().StringVar(&modeFlag, "mode", string(cpj.ModeStaged), "Pipeline mode: staged or unified")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	godotenv.Load()
	logging.Init()

	mode := cpj.Mode(modeFlag)
	if mode != cpj.ModeStaged && mode != cpj.ModeUnified {
		log.Fatal().Str("mode", modeFlag).Msg("Invalid pipeline mode")
	}

	// Validate API key at startup
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	ctx := context.Background()
	validationClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client for validation")
	}
	if err := auth.ValidateAPIKey(ctx, validationClient); err != nil {
		log.Fatal().Err(err).Msg("Invalid API key")
	}
	log.Info().Msg("API key validated")

	srv := newServer(gateway.NewGemini(gateway.Config{Model: modelFlag}), mode)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cpj/caption", srv.handleCaption)
	mux.HandleFunc("/api/cpj/vqa", srv.handleVQA)
	mux.HandleFunc("/api/cpj/judge", srv.handleJudge)
	mux.HandleFunc("/api/diagnose", srv.handleDiagnose)
	mux.HandleFunc("/api/health", srv.handleHealth)

	handler := withLogging(withCORS(mux))

	addr := fmt.Sprintf(":%d", portFlag)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: handler,
		// Pipeline runs make up to seven sequential model calls; the write
		// timeout must cover the slowest of them.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	logging.NewStartupLogger("diagnosis-web").
		Config("port", fmt.Sprintf("%d", portFlag)).
		Config("model", modelFlag).
		Config("mode", string(mode)).
		Feature("unified", mode == cpj.ModeUnified).
		InitDuration(time.Since(initStart)).
		Log()

	log.Info().Int("port", portFlag).Str("mode", string(mode)).Msg("Starting diagnosis server")
	fmt.Printf("\n  Diagnosis API: http://localhost:%d/api/diagnose\n\n", portFlag)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", requestID).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins; the server is a local tool.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
