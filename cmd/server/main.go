// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_malayalam_trainer/internal/catalog"
	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/handlers"
	"go_malayalam_trainer/internal/middleware"
	"go_malayalam_trainer/internal/repository"
	"go_malayalam_trainer/internal/service"
	"go_malayalam_trainer/internal/storage"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
	)

	// 2. コンテンツカタログの読み込み（埋め込みデータ）
	contentCatalog, err := catalog.New()
	if err != nil {
		slog.Error("Error loading content catalog", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. ストレージ初期化
	var kvStore storage.KVStore
	var pinger func(ctx context.Context) error

	switch config.Cfg.Database.Driver {
	case "memory":
		kvStore = storage.NewMemoryStore()
		slog.Info("Using in-memory storage (progress will not survive restarts)")
	default:
		db, err := storage.NewDB(config.Cfg.Database.Driver, config.Cfg.Database.URL, logger)
		if err != nil {
			slog.Error("Error initializing database", slog.Any("error", err))
			os.Exit(1)
		}
		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("Error closing database connection", slog.Any("error", err))
			} else {
				slog.Info("Database connection closed.")
			}
		}()
		kvStore = storage.NewGormKVStore(db)
		pinger = sqlDB.PingContext
	}

	// 4. Dependency Injection
	var checker repository.ContentChecker
	if config.Cfg.App.ValidateContentIDs {
		checker = contentCatalog
	}
	progressStore := repository.NewProgressStore(kvStore, checker, logger, time.Now)
	progressService := service.NewProgressService(progressStore, logger)
	progressService.Initialize(context.Background())

	catalogHandler := handlers.NewCatalogHandler(contentCatalog, logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger)
	quizHandler := handlers.NewQuizHandler(contentCatalog, progressService, config.Cfg, logger)
	flashcardHandler := handlers.NewFlashcardHandler(contentCatalog, progressService, config.Cfg, logger)

	// 5. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Content catalog (read only)
		r.Route("/letters", func(r chi.Router) {
			r.Get("/", catalogHandler.GetLetters)
			r.Get("/{letterID}", catalogHandler.GetLetter)
		})
		r.Route("/words", func(r chi.Router) {
			r.Get("/", catalogHandler.GetWords)
			r.Get("/categories", catalogHandler.GetWordCategories)
			r.Get("/{wordID}", catalogHandler.GetWord)
		})
		r.Route("/grammar", func(r chi.Router) {
			r.Get("/", catalogHandler.GetGrammarLessons)
			r.Get("/{lessonID}", catalogHandler.GetGrammarLesson)
		})

		// User progress
		r.Route("/progress", func(r chi.Router) {
			r.Get("/", progressHandler.GetProgress)
			r.Delete("/", progressHandler.ResetProgress)
			r.Post("/letters/{letterID}/complete", progressHandler.CompleteLetter)
			r.Post("/words/{wordID}/complete", progressHandler.CompleteWord)
			r.Put("/quiz-scores/{quizKey}", progressHandler.SaveQuizScore)
			r.Put("/flashcards/{cardID}", progressHandler.UpdateFlashcardProgress)
			r.Post("/study-time", progressHandler.AddStudyTime)
		})

		// Quiz sessions
		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", quizHandler.StartQuiz)
			r.Route("/{quizID}", func(r chi.Router) {
				r.Get("/", quizHandler.GetQuiz)
				r.Delete("/", quizHandler.CloseQuiz)
				r.Post("/answer", quizHandler.SubmitAnswer)
				r.Post("/advance", quizHandler.AdvanceQuiz)
				r.Post("/complete", quizHandler.CompleteQuiz)
			})
		})

		// Flashcard sessions
		r.Route("/flashcards", func(r chi.Router) {
			r.Post("/", flashcardHandler.StartSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", flashcardHandler.GetSession)
				r.Delete("/", flashcardHandler.CloseSession)
				r.Post("/next", flashcardHandler.NextCard)
				r.Post("/previous", flashcardHandler.PreviousCard)
				r.Post("/flip", flashcardHandler.FlipCard)
				r.Post("/progress", flashcardHandler.SaveCardProgress)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger(r.Context()); err != nil {
				slog.ErrorContext(r.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
				http.Error(w, "Health check failed", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 6. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
