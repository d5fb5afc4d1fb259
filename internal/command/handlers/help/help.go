// Package help реализует команду help для вывода списка доступных команд
// и вариантов вызова приложения.
package help

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Kargones/issue2md/internal/command"
	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/pkg/output"
	"github.com/Kargones/issue2md/internal/pkg/tracing"
)

func init() {
	command.Register(&Handler{})
}

// usageText — шапка текстовой справки: назначение и грамматика вызова.
const usageText = `issue2md — синхронизация открытых задач Gitea в markdown-файл

Использование:
  issue2md <repo_url> <target_file> [--complete <файл>]
  issue2md <repo_url> [--comment <номер> <текст>] [--close <номер>] [--reopen <номер>]
  issue2md version | help

Команды:
`

// optionsText перечисляет переменные окружения, влияющие на запуск.
const optionsText = `
Опции:
  I2M_CONFIG=<путь>         Путь к файлу конфигурации (по умолчанию config.json)
  I2M_OUTPUT_FORMAT=json    Машиночитаемый вывод
  I2M_LOG_LEVEL=debug       Уровень логирования
`

// Data содержит информацию обо всех доступных командах.
type Data struct {
	// Commands — команды, зарегистрированные в реестре.
	Commands []CommandInfo `json:"commands"`
}

// CommandInfo описывает одну команду.
type CommandInfo struct {
	// Name — имя команды.
	Name string `json:"name"`
	// Description — описание команды.
	Description string `json:"description"`
}

// Handler — обработчик команды help.
type Handler struct{}

// Name возвращает constants.ActHelp.
func (h *Handler) Name() string {
	return constants.ActHelp
}

// Description описывает команду в списке команд.
func (h *Handler) Description() string {
	return "Список доступных команд и опций"
}

// Execute собирает список команд из реестра и печатает справку в stdout.
// Без I2M_OUTPUT_FORMAT=json выводится текст без metadata; trace_id и
// duration_ms есть только в JSON-форме (как у version).
func (h *Handler) Execute(ctx context.Context, _ *config.Config) error {
	start := time.Now()
	data := buildData()

	if os.Getenv("I2M_OUTPUT_FORMAT") != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	return output.NewWriter(output.FormatJSON).Write(os.Stdout, &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActHelp,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    tracing.TraceIDOrNew(ctx),
			APIVersion: constants.APIVersion,
		},
	})
}

// buildData снимает реестр команд и сортирует список по имени,
// чтобы порядок вывода не зависел от порядка регистрации.
func buildData() *Data {
	var cmds []CommandInfo
	for name, handler := range command.All() {
		cmds = append(cmds, CommandInfo{Name: name, Description: handler.Description()})
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return &Data{Commands: cmds}
}

// writeText выводит справку в человекочитаемом формате, имена команд
// выравниваются по самому длинному.
func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(usageText)

	maxLen := 0
	for _, cmd := range d.Commands {
		maxLen = max(maxLen, len(cmd.Name))
	}
	for _, cmd := range d.Commands {
		fmt.Fprintf(&sb, "  %-*s  %s\n", maxLen, cmd.Name, cmd.Description)
	}

	sb.WriteString(optionsText)
	_, err := fmt.Fprint(w, sb.String())
	return err
}
