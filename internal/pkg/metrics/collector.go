// Package metrics собирает счётчики выполнения команд и итогов синхронизации
// и выгружает их в Prometheus Pushgateway.
//
// CLI живёт секунды и не может отдавать метрики через /metrics endpoint,
// поэтому используется push-модель: всё пишется в локальный registry, а Push
// отправляет снимок одним запросом в конце работы команды. При выключенных
// метриках фабрика NewCollector возвращает NopCollector, и вызывающий код
// не меняется.
package metrics

import (
	"context"
	"time"
)

// Collector — точка записи метрик для команд CLI.
// Активная реализация — PrometheusCollector, при выключенных метриках — NopCollector.
type Collector interface {
	// RecordCommandStart отмечает начало команды. In-flight метрик у
	// короткоживущего CLI нет, реализация может ограничиться debug-логом.
	RecordCommandStart(command, repository string)

	// RecordCommandEnd фиксирует длительность и исход завершившейся команды.
	RecordCommandEnd(command, repository string, duration time.Duration, success bool)

	// RecordSyncTotals фиксирует итоги синхронизации: сколько секций задач
	// добавлено и обновлено в markdown-файле и сколько вложений скачано.
	RecordSyncTotals(repository string, added, updated, attachments int)

	// Push выгружает накопленные метрики в Pushgateway. Недоставленные
	// метрики не должны менять exit code отработавшей команды, поэтому
	// реализации логируют ошибку и возвращают nil.
	Push(ctx context.Context) error
}
