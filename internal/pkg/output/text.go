package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const summaryDivider = "══════════════════════════════════════════════════════"

// TextWriter пишет Result в человекочитаемом виде: строка статуса,
// ошибка или данные, затем блок сводки.
type TextWriter struct{}

// NewTextWriter возвращает TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write рендерит result в w. Для nil result не пишется ничего.
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s: %s\n", result.Command, result.Status); err != nil {
		return err
	}

	if result.Error != nil {
		if _, err := fmt.Fprintf(w, "Error [%s]: %s\n", result.Error.Code, result.Error.Message); err != nil {
			return err
		}
	}

	if result.Data != nil {
		dataJSON, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать Data: %w", err)
		}
		if _, err := fmt.Fprintf(w, "Data: %s\n", dataJSON); err != nil {
			return err
		}
	}

	// При ошибке сводки нет: детали уже в блоке Error
	if result.Status == StatusError {
		return nil
	}
	return t.writeSummary(w, result)
}

// writeSummary печатает финальный блок: длительность, метрики,
// предупреждения — всё между разделителями.
func (t *TextWriter) writeSummary(w io.Writer, result *Result) error {
	if _, err := fmt.Fprintf(w, "\n%s\n📊 Сводка\n%s\n", summaryDivider, summaryDivider); err != nil {
		return err
	}

	if result.Metadata != nil && result.Metadata.DurationMs > 0 {
		if _, err := fmt.Fprintf(w, "⏱️  Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs)); err != nil {
			return err
		}
	}

	if result.Summary != nil {
		for _, m := range result.Summary.KeyMetrics {
			if err := writeMetric(w, m); err != nil {
				return err
			}
		}
		if err := writeWarnings(w, result.Summary); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s\n", summaryDivider)
	return err
}

func writeMetric(w io.Writer, m KeyMetric) error {
	if m.Unit != "" {
		_, err := fmt.Fprintf(w, "📈 %s: %s %s\n", m.Name, m.Value, m.Unit)
		return err
	}
	_, err := fmt.Fprintf(w, "📈 %s: %s\n", m.Name, m.Value)
	return err
}

func writeWarnings(w io.Writer, s *SummaryInfo) error {
	if s.WarningsCount == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n⚠️  Предупреждений: %d\n", s.WarningsCount); err != nil {
		return err
	}
	for _, warn := range s.Warnings {
		if _, err := fmt.Fprintf(w, "   • %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}

// formatDuration: до секунды — миллисекунды, до минуты — секунды
// с десятой долей, дальше — минуты и секунды. int64, чтобы не
// переполняться на 32-битных системах.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%.1fс", float64(ms)/1000)
	}
	return fmt.Sprintf("%dм %dс", sec/60, sec%60)
}
