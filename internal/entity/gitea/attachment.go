package gitea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Kargones/issue2md/internal/constants"
)

// imageExtensions — расширения файлов, классифицируемые как изображения.
// Классификация для рендеринга выполняется только по расширению; определение
// формата по содержимому (DetectImageType) используется отдельно и влияет
// только на исправление расширения при сохранении.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".bmp":  true,
}

// imageSignatures — таблица магических байтов известных форматов изображений.
// Порядок проверки фиксирован. WEBP проверяется отдельно: сигнатура формата
// расположена не в начале файла (контейнер RIFF).
var imageSignatures = []struct {
	prefix []byte
	ext    string
}{
	{[]byte{0xFF, 0xD8, 0xFF}, ".jpg"},
	{[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, ".png"},
	{[]byte("GIF87a"), ".gif"},
	{[]byte("GIF89a"), ".gif"},
	{[]byte("BM"), ".bmp"},
}

// GetIssueAttachments получает метаданные вложений задачи.
// Параметры:
//   - issueNumber: номер задачи
//
// Возвращает:
//   - []Attachment: список вложений задачи (nil если endpoint не поддерживается)
//   - error: ошибка получения вложений или nil при успехе
func (g *API) GetIssueAttachments(ctx context.Context, issueNumber int64) ([]Attachment, error) {
	urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues/%d/assets", g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, issueNumber)
	return g.fetchAttachments(ctx, urlString)
}

// GetCommentAttachments получает метаданные вложений комментария.
// Комментарии адресуются глобальным id, без номера задачи.
// Параметры:
//   - commentID: идентификатор комментария
//
// Возвращает:
//   - []Attachment: список вложений комментария (nil если endpoint не поддерживается)
//   - error: ошибка получения вложений или nil при успехе
func (g *API) GetCommentAttachments(ctx context.Context, commentID int64) ([]Attachment, error) {
	urlString := fmt.Sprintf("%s/api/%s/repos/%s/%s/issues/comments/%d/assets", g.GiteaURL, constants.APIVersion, g.Owner, g.Repo, commentID)
	return g.fetchAttachments(ctx, urlString)
}

func (g *API) fetchAttachments(ctx context.Context, urlString string) ([]Attachment, error) {
	statusCode, body, err := g.sendReq(ctx, urlString, "", "GET")
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}

	// Старые версии Gitea не поддерживают endpoint assets
	if statusCode == http.StatusNotFound {
		return nil, nil
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка при получении вложений: статус %d", statusCode)
	}

	var attachments []Attachment
	if err := json.Unmarshal([]byte(body), &attachments); err != nil {
		return nil, fmt.Errorf("ошибка при декодировании ответа: %w", err)
	}

	return attachments, nil
}

// ResolveDownloadURL выбирает рабочий URL скачивания из метаданных вложения.
// Поля перебираются в порядке приоритета: browser_download_url, download_url,
// url; если ни одно не заполнено, URL строится из uuid. Возвращает пустую
// строку, когда вложение не содержит ни URL, ни uuid — такое вложение
// вызывающая сторона пропускает с предупреждением.
func (g *API) ResolveDownloadURL(att Attachment) string {
	for _, candidate := range []string{att.BrowserDownloadURL, att.DownloadURL, att.URL} {
		if candidate != "" {
			return candidate
		}
	}
	if att.UUID != "" {
		return fmt.Sprintf("%s/attachments/%s", g.GiteaURL, att.UUID)
	}
	return ""
}

// DownloadAttachment скачивает вложение и сохраняет его на диск.
// Первые байты содержимого сверяются с таблицей сигнатур изображений: если
// файл фактически является изображением другого формата, а исходное
// расширение входит в список изображений, расширение итогового пути
// исправляется. Отсутствующие родительские директории создаются.
// Параметры:
//   - l: логгер для заметок об исправлении расширения
//   - rawURL: разрешённый URL скачивания (см. ResolveDownloadURL)
//   - savePath: желаемый путь сохранения
//
// Возвращает:
//   - string: итоговый (возможно исправленный) путь сохранённого файла
//   - error: ошибка скачивания или сохранения, nil при успехе
func (g *API) DownloadAttachment(ctx context.Context, l *slog.Logger, rawURL, savePath string) (string, error) {
	data, err := g.downloadBytes(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("ошибка при скачивании вложения: %w", err)
	}

	finalPath := savePath
	currentExt := strings.ToLower(filepath.Ext(savePath))
	if detected := DetectImageType(data); detected != "" && detected != currentExt && imageExtensions[currentExt] {
		finalPath = strings.TrimSuffix(savePath, filepath.Ext(savePath)) + detected
		l.Info("Расширение вложения исправлено по содержимому файла",
			slog.String("save_path", savePath),
			slog.String("detected_ext", detected),
		)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), constants.DirPermStandard); err != nil {
		return "", fmt.Errorf("не удалось создать директорию вложений: %w", err)
	}
	if err := os.WriteFile(finalPath, data, constants.FilePermReadWrite); err != nil {
		return "", fmt.Errorf("не удалось сохранить вложение: %w", err)
	}

	return finalPath, nil
}

// DetectImageType определяет формат изображения по первым байтам содержимого.
// Возвращает каноничное расширение (".jpg", ".png", ".gif", ".webp", ".bmp")
// или пустую строку, если формат не распознан.
func DetectImageType(data []byte) string {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.ext
		}
	}
	// WEBP: контейнер RIFF, тег формата в байтах 8..12
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP" {
		return ".webp"
	}
	return ""
}

// IsImageFile сообщает, считается ли файл изображением при рендеринге markdown.
// Классификация выполняется только по расширению имени файла.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// SafeFileName приводит имя вложения к безопасному имени файла.
// Имя нормализуется в Unicode NFC (имена, загруженные с macOS и Linux,
// получают одно представление) и сокращается до базового компонента пути,
// чтобы оно не могло выйти за пределы директории вложений. Пустые имена
// заменяются на имя по умолчанию.
func SafeFileName(name string) string {
	base := filepath.Base(norm.NFC.String(name))
	if base == "" || base == "." || base == ".." || base == "/" {
		return constants.DefaultAttachmentName
	}
	return base
}
