package gitea

// User представляет пользователя Gitea (автора задачи или комментария)
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
}

// Issue представляет задачу в Gitea
type Issue struct {
	ID        int64  `json:"id"`
	Number    int64  `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	State     string `json:"state"`
	User      User   `json:"user"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Comment представляет комментарий к задаче
type Comment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	User      User   `json:"user"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Attachment представляет метаданные вложения задачи или комментария.
// Поля URL заполняются сервером неконсистентно в зависимости от версии Gitea,
// поэтому итоговый URL скачивания выбирается через ResolveDownloadURL.
type Attachment struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	UUID               string `json:"uuid"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
	DownloadURL        string `json:"download_url"`
	URL                string `json:"url"`
}

// ServerVersion представляет ответ endpoint'а /api/v1/version.
type ServerVersion struct {
	Version string `json:"version"`
}

// Константы для работы с пагинацией при получении открытых задач.
const (
	// ListOpenIssuesMaxPages — максимальное количество страниц для запроса задач.
	// Защита от бесконечного цикла. 200 страниц × 50 = 10000 задач максимум.
	ListOpenIssuesMaxPages = 200
)
