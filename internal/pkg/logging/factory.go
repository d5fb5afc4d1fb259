package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// slogLevels — соответствие строковых уровней конфигурации уровням slog.
var slogLevels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// NewLogger собирает Logger по конфигурации.
//
// cfg.Output выбирает назначение: "stderr" (и пустая строка) — os.Stderr,
// "file" — файл с ротацией lumberjack по MaxSize/MaxBackups/MaxAge/Compress.
// Любое другое значение трактуется как stderr, чтобы логи не пропали.
func NewLogger(cfg Config) Logger {
	return NewLoggerWithWriter(cfg, resolveWriter(cfg))
}

// resolveWriter выбирает назначение логов по cfg.Output.
func resolveWriter(cfg Config) io.Writer {
	switch cfg.Output {
	case OutputFile:
		return newLumberjackWriter(cfg)
	case OutputStderr, "":
		return os.Stderr
	}
	warnf("неизвестный logging output %q, falling back to stderr\n", cfg.Output)
	return os.Stderr
}

// newLumberjackWriter настраивает ротируемый файл логов.
// Любая проблема на этом этапе (пустой путь, недоступная директория)
// печатает предупреждение и возвращает stderr: логгер обязан собраться.
func newLumberjackWriter(cfg Config) io.Writer {
	if cfg.FilePath == "" {
		warnf("logging output=file but filePath is empty, falling back to stderr\n")
		return os.Stderr
	}

	if dir := filepath.Dir(cfg.FilePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			warnf("не удалось создать директорию логов %q: %v, falling back to stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// NewLoggerWithWriter собирает Logger поверх произвольного writer.
// Путь для тестов и нестандартных назначений; обычный код идёт
// через NewLogger.
func NewLoggerWithWriter(cfg Config, w io.Writer) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return NewSlogAdapter(slog.New(handler))
}

// parseLevel переводит строковый уровень в slog.Level.
// Нераспознанные значения дают info.
func parseLevel(level string) slog.Level {
	if lvl, ok := slogLevels[level]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// warnf печатает bootstrap-предупреждение в stderr. На этом этапе логгер
// ещё не собран, поэтому ошибка записи игнорируется.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "WARNING: "+format, args...) //nolint:errcheck // bootstrap stderr
}
