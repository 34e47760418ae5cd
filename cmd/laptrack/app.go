package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"

	"github.com/ganot/laptrack/internal/config"
	"github.com/ganot/laptrack/internal/domain/history"
	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
	"github.com/ganot/laptrack/internal/localstore"
	"github.com/ganot/laptrack/internal/sqlite"
)

// app holds the fully wired service graph shared by the tui and serve
// commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sqlite.DB
	engine   *stopwatch.Engine
	history  *history.Store
	identity *identity.Service
	metrics  *metricz.Registry
}

// newApp loads config and wires the stack. logToStderr keeps stdout
// clean for transports that own it (stdio JSON-RPC, the TUI).
func newApp(logToStderr bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logWriter := io.Writer(os.Stdout)
	if logToStderr {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("LAPTRACK_LOG_PATH"); logPath != "" {
		fileWriter, _, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	metrics := metricz.New()
	local := localstore.New(cfg.Local.Dir)
	store := history.NewStore(local, sqlite.NewSessionRepository(db), metrics, logger)
	archiver := session.NewArchiver(clockz.RealClock, store, logger)
	engine := stopwatch.New(clockz.RealClock, archiver, logger)
	identitySvc := identity.NewService(sqlite.NewAccountRepository(db), logger)
	identitySvc.Subscribe(func(userID string) {
		store.OnIdentityChange(context.Background(), userID)
	})

	if err := store.Load(context.Background()); err != nil {
		logger.Error("failed to load history", "error", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		engine:   engine,
		history:  store,
		identity: identitySvc,
		metrics:  metrics,
	}, nil
}

func (a *app) Close() {
	a.engine.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a single log file, trimming it back to
// keepLogSizeBytes once it crosses maxLogSizeBytes.
type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
