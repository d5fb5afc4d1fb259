package logging

import "log/slog"

// SlogAdapter оборачивает *slog.Logger в интерфейс Logger.
// Основная реализация вне тестов.
type SlogAdapter struct {
	sl *slog.Logger
}

// NewSlogAdapter оборачивает готовый slog.Logger.
// Сборку по конфигурации делает NewLogger. Передача nil — ошибка
// вызывающего; вместо паники берём slog.Default() и предупреждаем.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
		logger.Warn("logging: nil slog.Logger passed to NewSlogAdapter, using default")
	}
	return &SlogAdapter{sl: logger}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.sl.Debug(msg, args...) }

func (s *SlogAdapter) Info(msg string, args ...any) { s.sl.Info(msg, args...) }

func (s *SlogAdapter) Warn(msg string, args ...any) { s.sl.Warn(msg, args...) }

func (s *SlogAdapter) Error(msg string, args ...any) { s.sl.Error(msg, args...) }

// With возвращает новый адаптер; исходный продолжает писать без
// добавленных атрибутов.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{sl: s.sl.With(args...)}
}
