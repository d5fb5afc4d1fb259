package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/entity/gitea"
	"github.com/Kargones/issue2md/internal/pkg/apperrors"
)

// RunAction выполняет одно действие над задачей: добавление комментария,
// закрытие или повторное открытие. Действие — одиночный вызов API без
// повторов; результат фиксируется в логе.
// Параметры:
//   - ctx: контекст выполнения операции
//   - cfg: конфигурация приложения с настройками Gitea
//   - action: действие с номером задачи и, для комментария, текстом
//
// Возвращает:
//   - error: ошибка выполнения действия или nil при успехе
func RunAction(ctx context.Context, cfg *config.Config, action config.Action) error {
	return runAction(ctx, cfg.Logger, config.CreateGiteaAPI(cfg), action)
}

// runAction — тело действия, отделено от RunAction для подстановки
// тестового API.
func runAction(ctx context.Context, l *slog.Logger, api gitea.APIInterface, action config.Action) error {
	var err error
	switch action.Kind {
	case constants.ActComment:
		err = api.AddIssueComment(ctx, action.Issue, action.Text)
	case constants.ActClose:
		err = api.CloseIssue(ctx, action.Issue)
	case constants.ActReopen:
		err = api.ReopenIssue(ctx, action.Issue)
	default:
		return apperrors.NewAppError(apperrors.ErrActionFailed,
			fmt.Sprintf("неизвестное действие: %s", action.Kind), nil)
	}

	if err != nil {
		l.Error("Действие над задачей не выполнено",
			slog.String("action", action.Kind),
			slog.Int64("issue", action.Issue),
			slog.String("error", err.Error()),
		)
		return apperrors.NewAppError(apperrors.ErrActionFailed,
			fmt.Sprintf("не удалось выполнить действие %s над задачей #%d", action.Kind, action.Issue), err)
	}

	l.Info("Действие над задачей выполнено",
		slog.String("action", action.Kind),
		slog.Int64("issue", action.Issue),
	)
	return nil
}
