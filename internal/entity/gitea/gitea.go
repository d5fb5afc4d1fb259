// Package gitea предоставляет API для работы с Gitea
package gitea

import (
	"fmt"
	"net/url"
	"strings"
)

// API предоставляет методы для работы с API Gitea
type API struct {
	GiteaURL    string
	Owner       string
	Repo        string
	AccessToken string
	VerifySSL   bool
}

// NewGiteaAPI создает новый экземпляр API для работы с Gitea.
// Инициализирует клиент для взаимодействия с Gitea API, используя конфигурацию
// для выполнения операций с задачами, комментариями и вложениями.
// Параметры:
//   - config: конфигурация с настройками подключения к Gitea
//
// Возвращает:
//   - *API: указатель на новый экземпляр API клиента Gitea
func NewGiteaAPI(config Config) *API {
	return &API{
		GiteaURL:    strings.TrimRight(config.GiteaURL, "/"),
		Owner:       config.Owner,
		Repo:        config.Repo,
		AccessToken: config.AccessToken,
		VerifySSL:   config.VerifySSL,
	}
}

// ParseRepoURL извлекает владельца и имя репозитория из URL.
// Принимает URL вида scheme://host[:port]/owner/repo[.git][/]; суффикс .git
// и завершающие слэши отбрасываются, сегменты пути после первых двух
// игнорируются.
// Параметры:
//   - repoURL: полный URL репозитория
//
// Возвращает:
//   - string: владелец репозитория (owner)
//   - string: имя репозитория
//   - error: ошибка формата URL или nil при успехе
func ParseRepoURL(repoURL string) (string, string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("невалидный URL репозитория %q: %w", repoURL, err)
	}

	segments := make([]string, 0, 2)
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if u.Host == "" || len(segments) < 2 {
		return "", "", fmt.Errorf("невалидный URL репозитория %q: ожидается форма scheme://host/owner/repo", repoURL)
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	return owner, repo, nil
}
