// Package version реализует команду version для вывода информации
// о версии приложения.
package version

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
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

// Data — версия приложения и параметры сборки. Version и Commit
// прошиваются через ldflags (см. internal/constants/version.go).
type Data struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit"`
}

// writeText выводит версию в человекочитаемом формате.
func (d *Data) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "issue2md version %s\n  Go:     %s\n  Commit: %s\n",
		d.Version, d.GoVersion, d.Commit)
	return err
}

// buildData подставляет fallback для сборок без ldflags: пустая версия
// превращается в "dev", пустой commit — в "unknown".
func buildData(version, commit string) *Data {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	return &Data{Version: version, GoVersion: runtime.Version(), Commit: commit}
}

// Handler — обработчик команды version.
type Handler struct{}

// Name возвращает constants.ActVersion.
func (h *Handler) Name() string {
	return constants.ActVersion
}

// Description описывает команду в списке команд.
func (h *Handler) Description() string {
	return "Версия приложения и параметры сборки"
}

// Execute печатает версию в stdout. Без I2M_OUTPUT_FORMAT=json вывод
// текстовый и компактный, мимо output.Writer; metadata (trace_id,
// duration_ms) есть только в JSON-форме.
func (h *Handler) Execute(ctx context.Context, _ *config.Config) error {
	start := time.Now()
	data := buildData(constants.Version, constants.PreCommitHash)

	if os.Getenv("I2M_OUTPUT_FORMAT") != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	return output.NewWriter(output.FormatJSON).Write(os.Stdout, &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActVersion,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    tracing.TraceIDOrNew(ctx),
			APIVersion: constants.APIVersion,
		},
	})
}
