package gitea

import (
	"context"
	"log/slog"
)

// Config содержит конфигурацию для Gitea API
type Config struct {
	GiteaURL    string
	Owner       string
	Repo        string
	AccessToken string
	VerifySSL   bool
}

// APIInterface определяет интерфейс для работы с Gitea API
type APIInterface interface {
	// Диагностика подключения
	GetServerVersion(ctx context.Context) (string, error)
	// Методы для работы с задачами и комментариями
	GetOpenIssues(ctx context.Context) ([]Issue, error)
	GetIssueComments(ctx context.Context, issueNumber int64) ([]Comment, error)
	// Методы для работы с вложениями
	GetIssueAttachments(ctx context.Context, issueNumber int64) ([]Attachment, error)
	GetCommentAttachments(ctx context.Context, commentID int64) ([]Attachment, error)
	ResolveDownloadURL(att Attachment) string
	DownloadAttachment(ctx context.Context, l *slog.Logger, rawURL, savePath string) (string, error)
	// Операции над задачами
	AddIssueComment(ctx context.Context, issueNumber int64, commentText string) error
	CloseIssue(ctx context.Context, issueNumber int64) error
	ReopenIssue(ctx context.Context, issueNumber int64) error
}
