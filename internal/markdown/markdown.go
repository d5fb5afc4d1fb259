// Package markdown реализует слияние задач Gitea в markdown-документ.
//
// Каждая задача занимает в документе одну секцию: заголовок ## #<номер>: <тема>,
// скрытый маркер <!-- GITEA_ISSUE:<номер> --> и содержимое. Маркер — единственный
// источник истины о том, какие задачи уже записаны: повторная синхронизация
// заменяет секцию, а не дублирует её.
package markdown

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/entity/gitea"
)

// AttachmentRef описывает скачанное вложение для рендеринга в markdown.
type AttachmentRef struct {
	// Name — итоговое имя файла (возможно с исправленным расширением)
	Name string
	// RelativePath — путь относительно markdown-файла (./attachments/...)
	RelativePath string
	// IsImage — рендерить как встроенное изображение, а не как ссылку
	IsImage bool
}

var (
	issueMarkerRe = regexp.MustCompile(constants.IssueMarkerPattern)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
)

// ExistingIssueIDs возвращает номера задач, уже записанных в markdown-файл.
// Файл сканируется по маркерам <!-- GITEA_ISSUE:N -->; несуществующий файл
// эквивалентен пустому множеству.
func ExistingIssueIDs(path string) (map[int64]bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]bool{}, nil
		}
		return nil, fmt.Errorf("не удалось прочитать markdown-файл: %w", err)
	}

	ids := map[int64]bool{}
	for _, m := range issueMarkerRe.FindAllStringSubmatch(string(content), -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// Переполнение int64 — маркер игнорируется
			continue
		}
		ids[id] = true
	}
	return ids, nil
}

// RemoveIssueSections возвращает содержимое файла без секций указанных задач.
// Секция удаляется от своего заголовка ## #<id>: до следующего заголовка ##
// или конца документа. Последовательности из трёх и более переводов строки
// схлопываются в одну пустую строку, начальные и конечные пробельные символы
// результата отбрасываются. Несуществующий файл эквивалентен пустому документу.
func RemoveIssueSections(path string, ids map[int64]bool) (string, error) {
	contentBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("не удалось прочитать markdown-файл: %w", err)
	}

	content := string(contentBytes)
	for id := range ids {
		// RE2 не поддерживает lookahead, поэтому разделитель следующей секции
		// захватывается группой и возвращается на место при замене.
		sectionRe := regexp.MustCompile(fmt.Sprintf(`(?s)## #%d:.*?(\n## |$)`, id))
		content = sectionRe.ReplaceAllString(content, "$1")
	}

	content = blankLinesRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content), nil
}

// FormatIssue рендерит одну задачу в markdown-секцию.
// Секция состоит из заголовка, маркера, текста задачи (если непустой),
// блока "### Attachments" (изображения встраиваются, остальные файлы
// перечисляются ссылками) и блока "### Comments" (каждый непустой комментарий —
// пустая строка, автор жирным, текст). Секция завершается пустой строкой.
func FormatIssue(issue gitea.Issue, comments []gitea.Comment, attachments []AttachmentRef) string {
	marker := fmt.Sprintf(constants.IssueMarkerTemplate, issue.Number)
	body := strings.TrimSpace(issue.Body)

	lines := []string{
		fmt.Sprintf("## #%d: %s", issue.Number, issue.Title),
		marker,
	}

	if body != "" {
		lines = append(lines, body)
	}

	if len(attachments) > 0 {
		lines = append(lines, "", "### Attachments")
		for _, att := range attachments {
			if att.IsImage {
				lines = append(lines, fmt.Sprintf("![%s](%s)", att.Name, att.RelativePath))
			} else {
				lines = append(lines, fmt.Sprintf("- [%s](%s)", att.Name, att.RelativePath))
			}
		}
	}

	if len(comments) > 0 {
		lines = append(lines, "", "### Comments")
		for _, comment := range comments {
			author := comment.User.Login
			if author == "" {
				author = "Unknown"
			}
			commentBody := strings.TrimSpace(comment.Body)
			if commentBody == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("\n**%s:**", author), commentBody)
		}
	}

	// Пустая строка закрывает секцию
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// WriteIssues записывает задачи в markdown-файл, обновляя существующие секции.
// Задачи из write-set, отсутствующие в existingIDs, добавляются; присутствующие —
// заменяются свежим содержимым (старая секция удаляется, новая дописывается после
// сохранённого содержимого). Секции задач вне write-set не затрагиваются.
// Параметры:
//   - path: путь к markdown-файлу
//   - issues: задачи для записи (порядок сохраняется)
//   - existingIDs: номера задач, уже присутствующих в файле
//   - commentsMap: комментарии по номеру задачи
//   - attachmentsMap: вложения по номеру задачи
//
// Возвращает:
//   - int: количество добавленных задач
//   - int: количество обновлённых задач
//   - error: ошибка файловой операции или nil при успехе
func WriteIssues(
	path string,
	issues []gitea.Issue,
	existingIDs map[int64]bool,
	commentsMap map[int64][]gitea.Comment,
	attachmentsMap map[int64][]AttachmentRef,
) (int, int, error) {
	// Пустой write-set — файл не трогаем
	if len(issues) == 0 {
		return 0, 0, nil
	}

	idsToAdd := map[int64]bool{}
	idsToUpdate := map[int64]bool{}
	for _, issue := range issues {
		if existingIDs[issue.Number] {
			idsToUpdate[issue.Number] = true
		} else {
			idsToAdd[issue.Number] = true
		}
	}

	var cleaned string
	if len(idsToUpdate) > 0 {
		var err error
		cleaned, err = RemoveIssueSections(path, idsToUpdate)
		if err != nil {
			return 0, 0, err
		}
	} else {
		contentBytes, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return 0, 0, fmt.Errorf("не удалось прочитать markdown-файл: %w", err)
		}
		cleaned = strings.TrimSpace(string(contentBytes))
	}

	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, FormatIssue(issue, commentsMap[issue.Number], attachmentsMap[issue.Number]))
	}
	newContent := strings.Join(parts, "\n")

	finalContent := newContent
	if cleaned != "" {
		finalContent = cleaned + "\n\n" + newContent
	}

	if err := os.WriteFile(path, []byte(finalContent), constants.FilePermReadWrite); err != nil {
		return 0, 0, fmt.Errorf("не удалось записать markdown-файл: %w", err)
	}

	return len(idsToAdd), len(idsToUpdate), nil
}
