// Package apperrors — ошибки приложения с машиночитаемыми кодами.
// Имя пакета не errors, чтобы не затенять стандартный.
package apperrors

import "fmt"

// Коды строятся как CATEGORY.SPECIFIC_ERROR: категория отвечает на
// вопрос "какая подсистема", суффикс — "что именно". JSON-вывод несёт
// код как есть, по нему настраиваются алерты и фильтры.
const (
	// CONFIG — загрузка и разбор конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigParse    = "CONFIG.PARSE_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// ARGS — разбор аргументов командной строки.
	ErrArgsInvalid = "ARGS.INVALID"

	// COMMAND — диспетчеризация и выполнение команд.
	ErrCommandNotFound = "COMMAND.NOT_FOUND"
	ErrCommandExec     = "COMMAND.EXEC_FAILED"

	// GITEA — запросы к Gitea API.
	ErrGiteaURLParse         = "GITEA.URL_PARSE_FAILED"
	ErrGiteaRequest          = "GITEA.REQUEST_FAILED"
	ErrGiteaUnexpectedStatus = "GITEA.UNEXPECTED_STATUS"

	// SYNC — синхронизация задач в markdown-файл.
	ErrSyncMarkdownRead  = "SYNC.MARKDOWN_READ_FAILED"
	ErrSyncMarkdownWrite = "SYNC.MARKDOWN_WRITE_FAILED"

	// ACTION — операции над задачами: comment, close, reopen.
	ErrActionFailed = "ACTION.FAILED"

	// OUTPUT — форматирование результата.
	ErrOutputFormat = "OUTPUT.FORMAT_FAILED"
)

// AppError — ошибка с кодом, описанием и исходной причиной.
// Message уходит пользователю и в JSON-вывод, поэтому не должен
// содержать токены и прочие секреты:
//
//	return apperrors.NewAppError(apperrors.ErrGiteaRequest,
//	    "не удалось получить список открытых задач",
//	    err)
type AppError struct {
	// Code — машиночитаемый код CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message — описание для пользователя, без секретов.
	Message string `json:"message"`

	// Cause — исходная ошибка. В JSON не сериализуется: внутренняя
	// диагностика не предназначена для внешнего вывода.
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap отдаёт причину для errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError собирает AppError. Cause допускает nil.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
