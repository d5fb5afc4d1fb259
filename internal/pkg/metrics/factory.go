package metrics

import (
	"github.com/Kargones/issue2md/internal/pkg/logging"
)

// NewCollector выбирает реализацию по конфигурации: NopCollector при
// выключенных метриках, иначе PrometheusCollector. Невалидная конфигурация
// включённых метрик — ошибка, а не тихий no-op: оператор явно просил метрики.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	return NewPrometheusCollector(config, logger)
}
