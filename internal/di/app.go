// Package di связывает зависимости приложения через google/wire.
// Граф описан в wire.go, сгенерированный инжектор — в wire_gen.go.
package di

import (
	"context"

	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/entity/gitea"
	"github.com/Kargones/issue2md/internal/pkg/logging"
	"github.com/Kargones/issue2md/internal/pkg/metrics"
	"github.com/Kargones/issue2md/internal/pkg/output"
)

// App — собранные зависимости одного запуска команды. Поле добавляется
// вместе с провайдером в providers.go и записью в ProviderSet.
type App struct {
	// Config — конфигурация запуска, передаётся в InitializeApp извне.
	Config *config.Config

	// Logger — основной структурированный логгер приложения.
	Logger logging.Logger

	// OutputWriter форматирует результат команды в stdout (text или json).
	OutputWriter output.Writer

	// TraceID — идентификатор запуска, 32 hex-символа. Попадает в каждую
	// запись лога и в metadata результата.
	TraceID string

	// GiteaAPI — клиент Gitea для синхронизации и действий над задачами.
	GiteaAPI gitea.APIInterface

	// MetricsCollector отправляет метрики запуска в Pushgateway;
	// при выключенных метриках — NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown досылает буферизированные спаны и гасит
	// TracerProvider; при выключенном трейсинге — nop.
	TracerShutdown func(context.Context) error
}
