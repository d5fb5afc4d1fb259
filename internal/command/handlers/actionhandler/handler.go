// Package actionhandler реализует команды действий над задачами Gitea:
// comment, close и reopen. Команды разделяют один обработчик,
// параметризованный видом действия.
package actionhandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Kargones/issue2md/internal/app"
	"github.com/Kargones/issue2md/internal/command"
	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/pkg/apperrors"
	"github.com/Kargones/issue2md/internal/pkg/output"
	"github.com/Kargones/issue2md/internal/pkg/tracing"
)

func init() {
	command.Register(&Handler{
		kind:        constants.ActComment,
		description: "Добавление комментария к задаче",
	})
	command.Register(&Handler{
		kind:        constants.ActClose,
		description: "Закрытие задачи",
	})
	command.Register(&Handler{
		kind:        constants.ActReopen,
		description: "Повторное открытие задачи",
	})
}

// Data содержит результат выполнения действия над задачей.
type Data struct {
	// Action — вид действия: comment, close или reopen.
	Action string `json:"action"`
	// Issue — номер задачи.
	Issue int64 `json:"issue"`
	// Comment — текст комментария (только для comment).
	Comment string `json:"comment,omitempty"`
}

// writeText выводит подтверждение действия в человекочитаемом формате.
func (d *Data) writeText(w io.Writer) error {
	var msg string
	switch d.Action {
	case constants.ActComment:
		msg = fmt.Sprintf("Комментарий добавлен к задаче #%d", d.Issue)
	case constants.ActClose:
		msg = fmt.Sprintf("Задача #%d закрыта", d.Issue)
	case constants.ActReopen:
		msg = fmt.Sprintf("Задача #%d снова открыта", d.Issue)
	default:
		msg = fmt.Sprintf("Действие %s над задачей #%d выполнено", d.Action, d.Issue)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// Handler обрабатывает одну команду действия над задачей.
type Handler struct {
	kind        string
	description string
}

// Name возвращает вид действия — он же имя команды.
func (h *Handler) Name() string {
	return h.kind
}

// Description описывает команду в списке команд.
func (h *Handler) Description() string {
	return h.description
}

// Execute выполняет действие из cfg.Action и выводит подтверждение.
// Диспетчер в main выставляет cfg.Action перед вызовом.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	traceID := tracing.TraceIDOrNew(ctx)
	format := os.Getenv("I2M_OUTPUT_FORMAT")

	if cfg.Action == nil {
		return h.writeError(format, traceID, start,
			apperrors.NewAppError(apperrors.ErrActionFailed,
				fmt.Sprintf("не задано действие для команды %s", h.kind), nil))
	}
	action := *cfg.Action

	if err := app.RunAction(ctx, cfg, action); err != nil {
		return h.writeError(format, traceID, start, err)
	}

	data := &Data{Action: action.Kind, Issue: action.Issue, Comment: action.Text}

	// Текстовый формат — однострочное подтверждение без metadata.
	// Metadata (trace_id, duration_ms) доступна только в JSON формате.
	if format != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: h.kind,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}

	writer := output.NewWriter(format)
	return writer.Write(os.Stdout, result)
}

// writeError выводит структурированную ошибку действия и возвращает исходный error.
func (h *Handler) writeError(format, traceID string, start time.Time, err error) error {
	code := apperrors.ErrActionFailed
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	if format != output.FormatJSON {
		_, _ = fmt.Fprintf(os.Stdout, "Ошибка: %s\nКод: %s\n", message, code)
		return err
	}

	result := &output.Result{
		Status:  output.StatusError,
		Command: h.kind,
		Error: &output.ErrorInfo{
			Code:    code,
			Message: message,
		},
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}

	writer := output.NewWriter(format)
	if writeErr := writer.Write(os.Stdout, result); writeErr != nil {
		slog.Default().Error("Не удалось записать JSON-ответ об ошибке",
			slog.String("trace_id", traceID),
			slog.String("error", writeErr.Error()))
	}

	return err
}
