package metrics

import (
	"context"
	"time"
)

// NopCollector отбрасывает все записи. Фабрика возвращает его при
// выключенных метриках, чтобы вызывающий код не проверял nil.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

func (c *NopCollector) RecordCommandStart(command, repository string) {}

func (c *NopCollector) RecordCommandEnd(command, repository string, duration time.Duration, success bool) {
}

func (c *NopCollector) RecordSyncTotals(repository string, added, updated, attachments int) {}

// Push ничего не отправляет и всегда возвращает nil.
func (c *NopCollector) Push(ctx context.Context) error { return nil }
