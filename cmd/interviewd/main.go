package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"interviewd/internal/config"
	"interviewd/internal/daemon"
	"interviewd/internal/events"
	"interviewd/internal/extractor"
	"interviewd/internal/interview"
	"interviewd/internal/llm"
	"interviewd/internal/questions"
	"interviewd/internal/scoring"
	"interviewd/internal/storage/local"
	"interviewd/internal/storage/postgres"
	"interviewd/internal/storage/sqlite"
)

const pidFileName = "interviewd.pid"

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logFile, err := setupLogging(cfg.DataDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	pidPath := filepath.Join(cfg.DataDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx := context.Background()

	snapshots, cleanup, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer cleanup()

	bank, err := loadBank(cfg)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	bankProvider := questions.NewBankProvider(bank)
	slog.Info("question bank loaded", "name", bank.Name)

	registry := llm.NewRegistry()
	var questionProvider interview.QuestionProvider = bankProvider
	var scorer interview.Scorer = scoring.NewHeuristicScorer()

	if cfg.LLMProvider != "none" {
		provider, err := buildLLMProvider(cfg)
		if err != nil {
			return fmt.Errorf("build llm provider: %w", err)
		}
		defer provider.Close()

		registry.Register(cfg.LLMProvider, provider)
		if err := registry.SetDefault(cfg.LLMProvider); err != nil {
			return fmt.Errorf("set default provider: %w", err)
		}

		questionProvider = questions.NewGenerator(provider, bankProvider, slog.Default())
		scorer = scoring.NewLLMScorer(provider, slog.Default())
		slog.Info("llm provider configured", "provider", cfg.LLMProvider)
	}

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return fmt.Errorf("connect event broker: %w", err)
	}
	defer publisher.Close()

	service := interview.NewService(
		interview.NewStore(),
		snapshots,
		questionProvider,
		scorer,
		interview.WithPublisher(publisher),
	)
	defer service.Close()

	if err := service.LoadSnapshot(); err != nil {
		slog.Warn("restore previous sessions failed", "error", err)
	}

	server, err := daemon.NewServer(daemon.ServerConfig{
		Addr:        cfg.Addr(),
		Service:     service,
		Extractor:   extractor.NewTextExtractor(),
		LLMRegistry: registry,
		ResumeDir:   filepath.Join(cfg.DataDir, "resumes"),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	slog.Info("interviewd listening", "addr", cfg.Addr(), "backend", cfg.StorageBackend)
	if err := server.Start(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

func setupLogging(dataDir string, debug bool) (*os.File, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(logDir, "interviewd.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// JSON to the log file, text to stderr for foreground mode
	handler := &multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		},
	}
	slog.SetDefault(slog.New(handler))

	return logFile, nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// openSnapshotStore selects the persistence backend. The returned cleanup
// closes any underlying database handle.
func openSnapshotStore(ctx context.Context, cfg *config.Config) (interview.SnapshotStore, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := sqlite.Open(filepath.Join(cfg.DataDir, "interviewd.db"))
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewSnapshotStore(db), func() { db.Close() }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewSnapshotStore(db), func() { db.Close() }, nil

	default:
		store, err := local.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func loadBank(cfg *config.Config) (*questions.Bank, error) {
	if cfg.QuestionBankPath != "" {
		return questions.LoadBank(cfg.QuestionBankPath)
	}
	return questions.DefaultBank(), nil
}

func buildLLMProvider(cfg *config.Config) (*llm.ResilientProvider, error) {
	var base llm.Provider
	switch cfg.LLMProvider {
	case "claude":
		base = llm.NewClaudeProvider(llm.ClaudeConfig{
			APIKey: cfg.LLMAPIKey,
			Model:  cfg.LLMModel,
		})
	case "openai":
		base = llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey: cfg.LLMAPIKey,
			Model:  cfg.LLMModel,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}

	return llm.NewResilientProvider(base, llm.ResilientConfig{
		Logger: slog.Default(),
	}), nil
}

func buildPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		return events.NoopPublisher{}, nil
	}
	conn, err := events.NewConnection(cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	return events.NewAMQPPublisher(conn), nil
}
