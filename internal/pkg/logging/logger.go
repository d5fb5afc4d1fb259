// Package logging — структурированное логирование поверх slog
// с ротацией файлов через lumberjack.
package logging

// Logger — общий интерфейс логгера для всего приложения.
// Сообщение сопровождается парами ключ-значение:
//
//	logger.Info("Задачи получены", "count", len(issues), "repository", repo)
//
// Все реализации пишут исключительно в stderr или файл: stdout
// принадлежит результату команды и должен оставаться чистым.
type Logger interface {
	// Debug — детальная диагностика: параметры запросов, пагинация.
	Debug(msg string, args ...any)

	// Info — значимые события: старт команды, итоги синхронизации.
	Info(msg string, args ...any)

	// Warn — события, после которых работа продолжается:
	// пропущенное вложение, fallback конфигурации.
	Warn(msg string, args ...any)

	// Error — ошибки, из-за которых операция не выполнена.
	Error(msg string, args ...any)

	// With возвращает логгер, добавляющий атрибуты к каждой записи:
	//
	//	runLog := logger.With("trace_id", traceID, "command", "sync")
	With(args ...any) Logger
}
