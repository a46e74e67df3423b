package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tutum/covaex/backend/src/config"
	"github.com/tutum/covaex/backend/src/handlers"
	"github.com/tutum/covaex/backend/src/logger"
	"github.com/tutum/covaex/backend/src/parsers"
	"github.com/tutum/covaex/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.CORSAllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Tutum import backend server starting...")

	logger.L.Info("Initializing session store...",
		"ttl", config.Cfg.SessionTTL, "cleanupInterval", config.Cfg.SessionCleanupInterval)
	sessionStore := cache.New(config.Cfg.SessionTTL, config.Cfg.SessionCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	csvDecoder := parsers.NewCSVDecoder()
	templateMapper := parsers.NewTemplateMapper()
	ingestClient := services.NewIngestClient(
		config.Cfg.IngestAPIBaseURL, config.Cfg.IngestUserID, config.Cfg.IngestTimeout)
	importService := services.NewImportService(
		csvDecoder, templateMapper, ingestClient, sessionStore, config.Cfg.MaxImportRows)
	importHandler := handlers.NewImportHandler(importService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/import/upload", importHandler.HandleUpload)
	apiRouter.HandleFunc("POST /api/import/session", importHandler.HandleCreateSession)
	apiRouter.HandleFunc("GET /api/import/session/{id}", importHandler.HandleGetSession)
	apiRouter.HandleFunc("DELETE /api/import/session/{id}", importHandler.HandleDiscardSession)
	apiRouter.HandleFunc("POST /api/import/session/{id}/rows", importHandler.HandleAddRow)
	apiRouter.HandleFunc("PATCH /api/import/session/{id}/rows/{index}", importHandler.HandleSetCell)
	apiRouter.HandleFunc("DELETE /api/import/session/{id}/rows/{index}", importHandler.HandleRemoveRow)
	apiRouter.HandleFunc("POST /api/import/session/{id}/validate", importHandler.HandleValidate)
	apiRouter.HandleFunc("POST /api/import/session/{id}/submit", importHandler.HandleSubmit)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Tutum import backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
