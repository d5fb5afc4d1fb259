package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kargones/issue2md/internal/constants"
)

// GetOpenIssues получает все открытые задачи репозитория.
// Выполняет автоматическую обработку пагинации для получения полного списка;
// pull request'ы исключаются параметром type=issues.
// Возвращает:
//   - []Issue: список открытых задач
//   - error: ошибка получения задач или nil при успехе
//
// Особенности:
//   - Автоматически обрабатывает пагинацию (лимит 50 на страницу)
//   - Защита от бесконечного цикла (максимум 200 страниц = 10000 задач)
func (g *API) GetOpenIssues(ctx context.Context) ([]Issue, error) {
	var allIssues []Issue

	for page := 1; page <= ListOpenIssuesMaxPages; page++ {
		urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues?state=open&type=issues&page=%d&limit=%d",
			g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, page, constants.IssuePageSize)

		statusCode, body, err := g.sendReq(ctx, urlString, "", "GET")
		if err != nil {
			return nil, fmt.Errorf("ошибка при запросе открытых задач: %w", err)
		}

		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("ошибка при получении открытых задач: статус %d", statusCode)
		}

		var issues []Issue
		if err := json.Unmarshal([]byte(body), &issues); err != nil {
			return nil, fmt.Errorf("ошибка при разборе JSON задач: %w", err)
		}

		allIssues = append(allIssues, issues...)

		// Неполная страница — достигли конца списка
		if len(issues) < constants.IssuePageSize {
			break
		}
	}

	return allIssues, nil
}

// GetIssueComments получает комментарии задачи в хронологическом порядке.
// Параметры:
//   - issueNumber: номер задачи
//
// Возвращает:
//   - []Comment: список комментариев задачи
//   - error: ошибка получения комментариев или nil при успехе
func (g *API) GetIssueComments(ctx context.Context, issueNumber int64) ([]Comment, error) {
	urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues/%d/comments", g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, issueNumber)

	statusCode, body, err := g.sendReq(ctx, urlString, "", "GET")
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка при получении комментариев задачи %d: статус %d", issueNumber, statusCode)
	}

	var comments []Comment
	if err := json.Unmarshal([]byte(body), &comments); err != nil {
		return nil, fmt.Errorf("ошибка при декодировании ответа: %w", err)
	}

	return comments, nil
}

// AddIssueComment добавляет комментарий к задаче в репозитории Gitea.
// Создает новый комментарий к указанной задаче для обсуждения,
// предоставления обратной связи или документирования изменений.
// Параметры:
//   - issueNumber: номер задачи для добавления комментария
//   - commentText: текст комментария
//
// Возвращает:
//   - error: ошибка добавления комментария или nil при успехе
func (g *API) AddIssueComment(ctx context.Context, issueNumber int64, commentText string) error {
	urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues/%d/comments", g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, issueNumber)

	// Текст приходит из CLI и может содержать кавычки и переводы строк,
	// поэтому тело запроса сериализуется, а не строится вручную.
	reqBody, err := json.Marshal(map[string]string{"body": commentText})
	if err != nil {
		return fmt.Errorf("ошибка при сериализации комментария: %w", err)
	}

	statusCode, _, err := g.sendReq(ctx, urlString, string(reqBody), "POST")
	if err != nil {
		return fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}

	if !isSuccessStatus(statusCode) {
		return fmt.Errorf("ошибка при добавлении комментария к задаче %d: статус %d", issueNumber, statusCode)
	}

	return nil
}

// CloseIssue закрывает задачу в репозитории Gitea.
// Изменяет статус задачи на "закрыто", указывая на завершение работы
// над задачей или её решение.
// Параметры:
//   - issueNumber: номер задачи для закрытия
//
// Возвращает:
//   - error: ошибка закрытия задачи или nil при успехе
func (g *API) CloseIssue(ctx context.Context, issueNumber int64) error {
	if err := g.updateIssueState(ctx, issueNumber, "closed"); err != nil {
		return fmt.Errorf("ошибка при закрытии задачи %d: %w", issueNumber, err)
	}
	return nil
}

// ReopenIssue повторно открывает закрытую задачу в репозитории Gitea.
// Параметры:
//   - issueNumber: номер задачи для повторного открытия
//
// Возвращает:
//   - error: ошибка открытия задачи или nil при успехе
func (g *API) ReopenIssue(ctx context.Context, issueNumber int64) error {
	if err := g.updateIssueState(ctx, issueNumber, "open"); err != nil {
		return fmt.Errorf("ошибка при повторном открытии задачи %d: %w", issueNumber, err)
	}
	return nil
}

// updateIssueState выполняет PATCH запрос изменения состояния задачи.
func (g *API) updateIssueState(ctx context.Context, issueNumber int64, state string) error {
	urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues/%d", g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, issueNumber)
	reqBody := fmt.Sprintf(`{"state":"%s"}`, state)

	statusCode, _, err := g.sendReq(ctx, urlString, reqBody, "PATCH")
	if err != nil {
		return fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}

	if !isSuccessStatus(statusCode) {
		return fmt.Errorf("неожиданный статус %d", statusCode)
	}

	return nil
}

// GetServerVersion запрашивает версию сервера Gitea.
// Используется как диагностика подключения в начале запуска: ошибка здесь
// означает, что URL или токен сконфигурированы неверно.
// Возвращает:
//   - string: версия сервера (например "1.22.1")
//   - error: ошибка запроса или nil при успехе
func (g *API) GetServerVersion(ctx context.Context) (string, error) {
	urlString := fmt.Sprintf("%s/api/%s/version", g.GiteaURL, constants.APIVersion)

	statusCode, body, err := g.sendReq(ctx, urlString, "", "GET")
	if err != nil {
		return "", fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}

	if statusCode != http.StatusOK {
		return "", fmt.Errorf("ошибка при получении версии сервера: статус %d", statusCode)
	}

	r := strings.NewReader(body)
	var v ServerVersion
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return "", fmt.Errorf("ошибка при декодировании ответа: %w", err)
	}

	return v.Version, nil
}
