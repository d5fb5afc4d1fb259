// Package app содержит бизнес-логику приложения issue2md: синхронизацию
// открытых задач Gitea в markdown-файл и действия над задачами
// (комментирование, закрытие, повторное открытие).
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/entity/gitea"
	"github.com/Kargones/issue2md/internal/markdown"
	"github.com/Kargones/issue2md/internal/pkg/apperrors"
	"github.com/Kargones/issue2md/internal/pkg/urlutil"
)

// tracerName — имя трейсера для span'ов этапов синхронизации.
const tracerName = "issue2md"

// Report — накопитель итогов одного запуска синхронизации.
// Счётчики заполняются по мере прохождения этапов и возвращаются
// вызывающей стороне для отчёта и метрик.
type Report struct {
	// ServerVersion — версия сервера Gitea (диагностика подключения)
	ServerVersion string
	// IssuesFound — количество открытых задач, полученных из API
	IssuesFound int
	// IssuesFiltered — количество задач, исключённых файлом выполненных (--complete)
	IssuesFiltered int
	// IssuesWithComments — количество задач, имеющих хотя бы один комментарий
	IssuesWithComments int
	// CommentsTotal — суммарное количество комментариев синхронизируемых задач
	CommentsTotal int
	// IssueAttachments — количество скачанных вложений задач
	IssueAttachments int
	// CommentAttachments — количество скачанных вложений комментариев
	CommentAttachments int
	// AttachmentsSkipped — количество вложений, пропущенных из-за ошибок
	AttachmentsSkipped int
	// ExistingSections — количество секций, уже присутствовавших в целевом файле
	ExistingSections int
	// IssuesAdded — количество добавленных секций
	IssuesAdded int
	// IssuesUpdated — количество обновлённых секций
	IssuesUpdated int
}

// AttachmentsDownloaded возвращает суммарное количество скачанных вложений.
func (r *Report) AttachmentsDownloaded() int {
	return r.IssueAttachments + r.CommentAttachments
}

// SyncIssues выполняет полный цикл синхронизации открытых задач в markdown-файл:
// получение открытых задач, исключение выполненных (--complete), получение
// комментариев, скачивание вложений задач и комментариев, слияние с целевым
// файлом. Этапы выполняются последовательно, каждый в собственном span'е.
// Параметры:
//   - ctx: контекст выполнения операции
//   - cfg: конфигурация приложения с настройками Gitea и целевым файлом
//
// Возвращает:
//   - *Report: итоги синхронизации
//   - error: ошибка синхронизации или nil при успехе
func SyncIssues(ctx context.Context, cfg *config.Config) (*Report, error) {
	return syncIssues(ctx, cfg.Logger, cfg, config.CreateGiteaAPI(cfg))
}

// syncIssues — тело синхронизации, отделено от SyncIssues для подстановки
// тестового API.
func syncIssues(ctx context.Context, l *slog.Logger, cfg *config.Config, api gitea.APIInterface) (*Report, error) {
	tracer := otel.Tracer(tracerName)
	report := &Report{}

	// Диагностика подключения: неверный URL или токен проявляется здесь,
	// а не на первом содержательном запросе.
	serverVersion, err := api.GetServerVersion(ctx)
	if err != nil {
		l.Error("Не удалось получить версию сервера Gitea",
			slog.String("gitea_url", cfg.GiteaURL),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.NewAppError(apperrors.ErrGiteaRequest,
			"не удалось подключиться к серверу Gitea", err)
	}
	report.ServerVersion = serverVersion
	l.Info("Подключение к Gitea установлено",
		slog.String("gitea_version", serverVersion),
	)

	stageCtx, span := tracer.Start(ctx, "fetch-issues")
	issues, err := api.GetOpenIssues(stageCtx)
	span.SetAttributes(attribute.Int("issues.found", len(issues)))
	span.End()
	if err != nil {
		l.Error("Не удалось получить открытые задачи",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.NewAppError(apperrors.ErrGiteaRequest,
			"не удалось получить список открытых задач", err)
	}
	report.IssuesFound = len(issues)
	l.Info("Получены открытые задачи", slog.Int("count", len(issues)))

	if cfg.CompleteFile != "" {
		_, span = tracer.Start(ctx, "filter-completed")
		issues, err = filterCompletedIssues(l, cfg.CompleteFile, issues, report)
		span.SetAttributes(attribute.Int("issues.filtered", report.IssuesFiltered))
		span.End()
		if err != nil {
			return nil, err
		}
	}

	if len(issues) == 0 {
		l.Info("Нет задач для синхронизации",
			slog.Int("found", report.IssuesFound),
			slog.Int("filtered", report.IssuesFiltered),
		)
		return report, nil
	}

	stageCtx, span = tracer.Start(ctx, "fetch-comments")
	commentsMap, err := fetchIssueComments(stageCtx, l, api, issues, report)
	span.SetAttributes(attribute.Int("comments.total", report.CommentsTotal))
	span.End()
	if err != nil {
		return nil, err
	}

	stageCtx, span = tracer.Start(ctx, "download-attachments")
	attachmentsMap := downloadIssueAttachments(stageCtx, l, cfg, api, issues, commentsMap, report)
	span.SetAttributes(
		attribute.Int("attachments.downloaded", report.AttachmentsDownloaded()),
		attribute.Int("attachments.skipped", report.AttachmentsSkipped),
	)
	span.End()

	_, span = tracer.Start(ctx, "write-markdown")
	err = writeTargetFile(l, cfg, issues, commentsMap, attachmentsMap, report)
	span.SetAttributes(
		attribute.Int("issues.added", report.IssuesAdded),
		attribute.Int("issues.updated", report.IssuesUpdated),
	)
	span.End()
	if err != nil {
		return nil, err
	}

	if cfg.MetricsCollector != nil {
		cfg.MetricsCollector.RecordSyncTotals(cfg.Owner+"/"+cfg.Repo,
			report.IssuesAdded, report.IssuesUpdated, report.AttachmentsDownloaded())
	}

	l.Info("Синхронизация завершена",
		slog.String("target_file", cfg.TargetFile),
		slog.Int("added", report.IssuesAdded),
		slog.Int("updated", report.IssuesUpdated),
		slog.Int("attachments", report.AttachmentsDownloaded()),
		slog.Int("skipped", report.AttachmentsSkipped),
	)

	return report, nil
}

// filterCompletedIssues исключает из списка задачи, номера которых найдены в
// файле выполненных. Файл сканируется по маркерам так же, как целевой;
// несуществующий файл эквивалентен пустому множеству.
func filterCompletedIssues(l *slog.Logger, completeFile string, issues []gitea.Issue, report *Report) ([]gitea.Issue, error) {
	completedIDs, err := markdown.ExistingIssueIDs(completeFile)
	if err != nil {
		l.Error("Не удалось прочитать файл выполненных задач",
			slog.String("complete_file", completeFile),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.NewAppError(apperrors.ErrSyncMarkdownRead,
			fmt.Sprintf("не удалось прочитать файл выполненных задач: %s", completeFile), err)
	}
	if len(completedIDs) == 0 {
		return issues, nil
	}

	filtered := make([]gitea.Issue, 0, len(issues))
	for _, issue := range issues {
		if completedIDs[issue.Number] {
			report.IssuesFiltered++
			l.Debug("Задача отмечена выполненной и исключена",
				slog.Int64("issue", issue.Number),
			)
			continue
		}
		filtered = append(filtered, issue)
	}

	if report.IssuesFiltered > 0 {
		l.Info("Выполненные задачи исключены из синхронизации",
			slog.String("complete_file", completeFile),
			slog.Int("filtered", report.IssuesFiltered),
		)
	}
	return filtered, nil
}

// fetchIssueComments получает комментарии всех задач из списка.
// В карте остаются только задачи, имеющие хотя бы один комментарий.
func fetchIssueComments(ctx context.Context, l *slog.Logger, api gitea.APIInterface, issues []gitea.Issue, report *Report) (map[int64][]gitea.Comment, error) {
	commentsMap := map[int64][]gitea.Comment{}
	for _, issue := range issues {
		comments, err := api.GetIssueComments(ctx, issue.Number)
		if err != nil {
			l.Error("Не удалось получить комментарии задачи",
				slog.Int64("issue", issue.Number),
				slog.String("error", err.Error()),
			)
			return nil, apperrors.NewAppError(apperrors.ErrGiteaRequest,
				fmt.Sprintf("не удалось получить комментарии задачи #%d", issue.Number), err)
		}
		if len(comments) == 0 {
			continue
		}
		commentsMap[issue.Number] = comments
		report.IssuesWithComments++
		report.CommentsTotal += len(comments)
	}

	l.Info("Получены комментарии задач",
		slog.Int("comments", report.CommentsTotal),
		slog.Int("issues_with_comments", report.IssuesWithComments),
	)
	return commentsMap, nil
}

// downloadIssueAttachments скачивает вложения задач и их комментариев в
// директорию attachments рядом с целевым markdown-файлом. Вложения задачи
// сохраняются в attachments/issue_<номер>/, вложения комментария — в
// attachments/issue_<номер>/comment_<id>/. Ошибка отдельного вложения не
// прерывает синхронизацию: вложение пропускается и учитывается в счётчике.
func downloadIssueAttachments(
	ctx context.Context,
	l *slog.Logger,
	cfg *config.Config,
	api gitea.APIInterface,
	issues []gitea.Issue,
	commentsMap map[int64][]gitea.Comment,
	report *Report,
) map[int64][]markdown.AttachmentRef {
	attachmentsMap := map[int64][]markdown.AttachmentRef{}
	targetDir := filepath.Dir(cfg.TargetFile)

	for _, issue := range issues {
		issueDir := path.Join(constants.AttachmentsDirName,
			constants.IssueDirPrefix+strconv.FormatInt(issue.Number, 10))
		var refs []markdown.AttachmentRef

		attachments, err := api.GetIssueAttachments(ctx, issue.Number)
		if err != nil {
			l.Warn("Не удалось получить вложения задачи",
				slog.Int64("issue", issue.Number),
				slog.String("error", err.Error()),
			)
			attachments = nil
		}
		for _, att := range attachments {
			ref, ok := downloadAttachment(ctx, l, api, att, targetDir, issueDir, report)
			if !ok {
				continue
			}
			refs = append(refs, ref)
			report.IssueAttachments++
		}

		for _, comment := range commentsMap[issue.Number] {
			commentAttachments, err := api.GetCommentAttachments(ctx, comment.ID)
			if err != nil {
				l.Warn("Не удалось получить вложения комментария",
					slog.Int64("issue", issue.Number),
					slog.Int64("comment_id", comment.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if len(commentAttachments) == 0 {
				continue
			}
			commentDir := path.Join(issueDir,
				constants.CommentDirPrefix+strconv.FormatInt(comment.ID, 10))
			for _, att := range commentAttachments {
				ref, ok := downloadAttachment(ctx, l, api, att, targetDir, commentDir, report)
				if !ok {
					continue
				}
				refs = append(refs, ref)
				report.CommentAttachments++
			}
		}

		if len(refs) > 0 {
			attachmentsMap[issue.Number] = refs
		}
	}

	if report.AttachmentsDownloaded() > 0 || report.AttachmentsSkipped > 0 {
		l.Info("Вложения скачаны",
			slog.Int("from_issues", report.IssueAttachments),
			slog.Int("from_comments", report.CommentAttachments),
			slog.Int("skipped", report.AttachmentsSkipped),
		)
	}
	return attachmentsMap
}

// downloadAttachment скачивает одно вложение в поддиректорию subDir (путь в
// прямых слэшах относительно директории целевого файла) и возвращает ссылку
// для рендеринга в markdown. Второе значение false означает, что вложение
// пропущено.
func downloadAttachment(
	ctx context.Context,
	l *slog.Logger,
	api gitea.APIInterface,
	att gitea.Attachment,
	targetDir, subDir string,
	report *Report,
) (markdown.AttachmentRef, bool) {
	rawURL := api.ResolveDownloadURL(att)
	if rawURL == "" {
		l.Warn("Вложение без URL скачивания пропущено",
			slog.Int64("attachment_id", att.ID),
			slog.String("name", att.Name),
		)
		report.AttachmentsSkipped++
		return markdown.AttachmentRef{}, false
	}

	fileName := gitea.SafeFileName(att.Name)
	savePath := filepath.Join(targetDir, filepath.FromSlash(subDir), fileName)
	finalPath, err := api.DownloadAttachment(ctx, l, rawURL, savePath)
	if err != nil {
		l.Warn("Не удалось скачать вложение",
			slog.String("name", fileName),
			slog.String("url", urlutil.MaskURL(rawURL)),
			slog.String("error", err.Error()),
		)
		report.AttachmentsSkipped++
		return markdown.AttachmentRef{}, false
	}

	// Расширение могло быть исправлено по содержимому файла
	finalName := filepath.Base(finalPath)
	return markdown.AttachmentRef{
		Name:         finalName,
		RelativePath: "./" + path.Join(subDir, finalName),
		IsImage:      gitea.IsImageFile(finalName),
	}, true
}

// writeTargetFile сливает подготовленные задачи в целевой markdown-файл:
// сканирует существующие маркеры и записывает write-set, обновляя уже
// присутствующие секции. Итоги записываются в report.
func writeTargetFile(
	l *slog.Logger,
	cfg *config.Config,
	issues []gitea.Issue,
	commentsMap map[int64][]gitea.Comment,
	attachmentsMap map[int64][]markdown.AttachmentRef,
	report *Report,
) error {
	existingIDs, err := markdown.ExistingIssueIDs(cfg.TargetFile)
	if err != nil {
		l.Error("Не удалось прочитать целевой markdown-файл",
			slog.String("target_file", cfg.TargetFile),
			slog.String("error", err.Error()),
		)
		return apperrors.NewAppError(apperrors.ErrSyncMarkdownRead,
			fmt.Sprintf("не удалось прочитать целевой markdown-файл: %s", cfg.TargetFile), err)
	}
	report.ExistingSections = len(existingIDs)

	added, updated, err := markdown.WriteIssues(cfg.TargetFile, issues, existingIDs, commentsMap, attachmentsMap)
	if err != nil {
		l.Error("Не удалось записать целевой markdown-файл",
			slog.String("target_file", cfg.TargetFile),
			slog.String("error", err.Error()),
		)
		return apperrors.NewAppError(apperrors.ErrSyncMarkdownWrite,
			fmt.Sprintf("не удалось записать целевой markdown-файл: %s", cfg.TargetFile), err)
	}
	report.IssuesAdded = added
	report.IssuesUpdated = updated
	return nil
}
