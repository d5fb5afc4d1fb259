// Package constants содержит все константы, используемые в проекте issue2md.
// Константы сгруппированы по их функциональному назначению для удобства использования и поддержки.
package constants

import "os"

// Константы сообщений приложения
const (
	// MsgAppExit - сообщение о завершении работы программы
	MsgAppExit = "Завершение работы програмы"
	// MsgErrProcessing - сообщение об обработке ошибки
	MsgErrProcessing = "Обработка ошибки"
)

// Константы версии приложения находятся в файле version.go
// Значения переопределяются при сборке через -ldflags.

// Константы действий (команд)
const (
	// ActSync - действие синхронизации задач в markdown-файл
	ActSync = "sync"
	// ActComment - действие добавления комментария к задаче
	ActComment = "comment"
	// ActClose - действие закрытия задачи
	ActClose = "close"
	// ActReopen - действие повторного открытия задачи
	ActReopen = "reopen"
	// ActVersion - действие вывода версии приложения
	ActVersion = "version"
	// ActHelp - действие вывода справки по командам
	ActHelp = "help"
)

// Константы API
const (
	// APIVersion - версия API Gitea
	APIVersion = "v1"
	// IssuePageSize - размер страницы при постраничной выборке задач
	IssuePageSize = 50
)

// Константы конфигурации
const (
	// DefaultConfigFile - имя файла конфигурации по умолчанию
	DefaultConfigFile = "config.json"
)

// Константы markdown-маркеров
const (
	// IssueMarkerTemplate - шаблон скрытого маркера задачи в markdown
	IssueMarkerTemplate = "<!-- GITEA_ISSUE:%d -->"
	// IssueMarkerPattern - регулярное выражение для поиска маркеров задач
	IssueMarkerPattern = `<!-- GITEA_ISSUE:(\d+) -->`
)

// Константы размещения вложений
const (
	// AttachmentsDirName - имя директории вложений рядом с markdown-файлом
	AttachmentsDirName = "attachments"
	// IssueDirPrefix - префикс директории вложений задачи
	IssueDirPrefix = "issue_"
	// CommentDirPrefix - префикс директории вложений комментария
	CommentDirPrefix = "comment_"
	// DefaultAttachmentName - имя вложения при отсутствии имени в метаданных
	DefaultAttachmentName = "attachment"
)

// Константы уровней логирования (значения I2M_LOG_LEVEL)
const (
	// LogLevelDebug - уровень отладки
	LogLevelDebug = "debug"
	// LogLevelInfo - информационный уровень
	LogLevelInfo = "info"
	// LogLevelWarn - уровень предупреждений
	LogLevelWarn = "warn"
	// LogLevelError - уровень ошибок
	LogLevelError = "error"
	// LogLevelDefault - уровень по умолчанию
	LogLevelDefault = LogLevelInfo
)

// Константы прав доступа файловой системы
const (
	// DirPermStandard - стандартные права директории (owner rwx, group r-x)
	DirPermStandard os.FileMode = 0750
	// FilePermReadWrite - стандартные права файла (owner rw, group r, other r)
	FilePermReadWrite os.FileMode = 0644
)
