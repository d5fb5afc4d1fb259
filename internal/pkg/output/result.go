// Package output форматирует результат команды для stdout:
// JSON для машинной обработки, текст для чтения глазами.
package output

// Значения поля Result.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result — единая форма ответа любой команды. Формат выбирает
// переменная окружения I2M_OUTPUT_FORMAT ("json" или "text").
type Result struct {
	// Status: "success" либо "error".
	Status string `json:"status"`

	// Command — имя выполненной команды.
	Command string `json:"command"`

	// Data — payload команды; каждая команда определяет свой тип.
	Data any `json:"data,omitempty"`

	// Error заполняется только при Status="error".
	Error *ErrorInfo `json:"error,omitempty"`

	// Metadata — длительность, trace_id, версия формата.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Summary — сводка с ключевыми метриками. В корень JSON не
	// сериализуется: JSONWriter переносит её в Metadata.Summary,
	// TextWriter рендерит отдельным блоком.
	Summary *SummaryInfo `json:"-"`
}

// ErrorInfo — ошибка в выводе команды. Code — машиночитаемый код
// (например "GITEA.REQUEST_FAILED"), Message — описание без секретов.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata сопровождает каждый результат.
type Metadata struct {
	// DurationMs — длительность команды в миллисекундах.
	DurationMs int64 `json:"duration_ms"`

	// TraceID связывает результат с записями лога того же запуска.
	TraceID string `json:"trace_id,omitempty"`

	// APIVersion — версия формата вывода, сейчас "v1".
	APIVersion string `json:"api_version"`

	// Summary заполняется JSONWriter-ом из Result.Summary.
	Summary *SummaryInfo `json:"summary,omitempty"`
}
