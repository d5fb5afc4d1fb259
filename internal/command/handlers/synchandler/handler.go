// Package synchandler реализует команду sync — синхронизацию открытых
// задач Gitea в локальный markdown-файл вместе с комментариями и вложениями.
package synchandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
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
	command.Register(&Handler{})
}

// Data содержит итоги синхронизации задач.
type Data struct {
	// ServerVersion — версия сервера Gitea.
	ServerVersion string `json:"server_version"`
	// TargetFile — путь к целевому markdown-файлу.
	TargetFile string `json:"target_file"`
	// IssuesFound — количество открытых задач в репозитории.
	IssuesFound int `json:"issues_found"`
	// IssuesFiltered — количество задач, исключённых файлом выполненных.
	IssuesFiltered int `json:"issues_filtered"`
	// IssuesWithComments — количество задач с хотя бы одним комментарием.
	IssuesWithComments int `json:"issues_with_comments"`
	// CommentsTotal — суммарное количество комментариев.
	CommentsTotal int `json:"comments_total"`
	// IssueAttachments — количество скачанных вложений задач.
	IssueAttachments int `json:"issue_attachments"`
	// CommentAttachments — количество скачанных вложений комментариев.
	CommentAttachments int `json:"comment_attachments"`
	// AttachmentsSkipped — количество вложений, пропущенных из-за ошибок.
	AttachmentsSkipped int `json:"attachments_skipped"`
	// ExistingSections — количество секций, уже существовавших в целевом файле.
	ExistingSections int `json:"existing_sections"`
	// IssuesAdded — количество добавленных секций.
	IssuesAdded int `json:"issues_added"`
	// IssuesUpdated — количество обновлённых секций.
	IssuesUpdated int `json:"issues_updated"`
}

// writeText выводит итоги синхронизации в человекочитаемом формате.
func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Gitea version: %s\n", d.ServerVersion)
	fmt.Fprintf(&sb, "Найдено открытых задач: %d\n", d.IssuesFound)
	if d.IssuesFiltered > 0 {
		fmt.Fprintf(&sb, "Исключено выполненных: %d\n", d.IssuesFiltered)
	}
	fmt.Fprintf(&sb, "Комментариев получено: %d (задач с комментариями: %d)\n",
		d.CommentsTotal, d.IssuesWithComments)
	fmt.Fprintf(&sb, "Вложений скачано: %d (из задач: %d, из комментариев: %d)\n",
		d.IssueAttachments+d.CommentAttachments, d.IssueAttachments, d.CommentAttachments)
	if d.AttachmentsSkipped > 0 {
		fmt.Fprintf(&sb, "Вложений пропущено: %d\n", d.AttachmentsSkipped)
	}
	fmt.Fprintf(&sb, "Файл %s: добавлено секций %d, обновлено %d\n",
		d.TargetFile, d.IssuesAdded, d.IssuesUpdated)

	_, err := fmt.Fprint(w, sb.String())
	return err
}

// buildData переносит итоги синхронизации в структуру вывода.
func buildData(targetFile string, r *app.Report) *Data {
	return &Data{
		ServerVersion:      r.ServerVersion,
		TargetFile:         targetFile,
		IssuesFound:        r.IssuesFound,
		IssuesFiltered:     r.IssuesFiltered,
		IssuesWithComments: r.IssuesWithComments,
		CommentsTotal:      r.CommentsTotal,
		IssueAttachments:   r.IssueAttachments,
		CommentAttachments: r.CommentAttachments,
		AttachmentsSkipped: r.AttachmentsSkipped,
		ExistingSections:   r.ExistingSections,
		IssuesAdded:        r.IssuesAdded,
		IssuesUpdated:      r.IssuesUpdated,
	}
}

// buildSummary формирует сводку ключевых метрик для JSON-вывода.
func buildSummary(d *Data) *output.SummaryInfo {
	s := output.NewSummaryInfo()
	s.AddMetric("Задач добавлено", strconv.Itoa(d.IssuesAdded), "шт")
	s.AddMetric("Задач обновлено", strconv.Itoa(d.IssuesUpdated), "шт")
	s.AddMetric("Вложений скачано", strconv.Itoa(d.IssueAttachments+d.CommentAttachments), "шт")
	if d.AttachmentsSkipped > 0 {
		s.AddWarning(fmt.Sprintf("Пропущено вложений из-за ошибок загрузки: %d", d.AttachmentsSkipped))
	}
	return s
}

// Handler — обработчик команды sync.
type Handler struct{}

// Name возвращает constants.ActSync.
func (h *Handler) Name() string {
	return constants.ActSync
}

// Description описывает команду в списке команд.
func (h *Handler) Description() string {
	return "Синхронизация открытых задач Gitea в markdown-файл"
}

// Execute выполняет команду sync: запускает синхронизацию и выводит итоги.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	traceID := tracing.TraceIDOrNew(ctx)
	format := os.Getenv("I2M_OUTPUT_FORMAT")

	report, err := app.SyncIssues(ctx, cfg)
	if err != nil {
		return h.writeError(format, traceID, start, err)
	}

	return h.writeSuccess(format, traceID, start, buildData(cfg.TargetFile, report))
}

// writeSuccess выводит успешный результат синхронизации.
func (h *Handler) writeSuccess(format, traceID string, start time.Time, data *Data) error {
	// Текстовый формат — специализированный вывод без metadata (trace_id, duration_ms).
	// Metadata доступна только в JSON формате.
	if format != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActSync,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
		Summary: buildSummary(data),
	}

	writer := output.NewWriter(format)
	return writer.Write(os.Stdout, result)
}

// writeError выводит структурированную ошибку и возвращает исходный error.
func (h *Handler) writeError(format, traceID string, start time.Time, err error) error {
	code := apperrors.ErrCommandExec
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
		Command: constants.ActSync,
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
