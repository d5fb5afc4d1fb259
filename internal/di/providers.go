package di

import (
	"context"
	"log/slog"
	"os"

	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/entity/gitea"
	"github.com/Kargones/issue2md/internal/pkg/logging"
	"github.com/Kargones/issue2md/internal/pkg/metrics"
	"github.com/Kargones/issue2md/internal/pkg/output"
	"github.com/Kargones/issue2md/internal/pkg/tracing"
)

// ProvideLogger собирает основной логгер приложения из секции logging.
// Пустые поля секции не затирают дефолты logging.DefaultConfig, поэтому
// логгер получается рабочим при любом содержимом конфигурации.
func ProvideLogger(cfg *config.Config) logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg == nil || cfg.LoggingConfig == nil {
		return logging.NewLogger(logCfg)
	}

	src := cfg.LoggingConfig
	if src.Level != "" {
		logCfg.Level = src.Level
	}
	if src.Format != "" {
		logCfg.Format = src.Format
	}
	if src.Output != "" {
		logCfg.Output = src.Output
	}
	if src.FilePath != "" {
		logCfg.FilePath = src.FilePath
	}
	// Нулевые параметры ротации игнорируются: файл размером 0 МБ для
	// lumberjack смысла не имеет, а env-default и так даёт ненулевые значения.
	if src.MaxSize > 0 {
		logCfg.MaxSize = src.MaxSize
	}
	if src.MaxBackups > 0 {
		logCfg.MaxBackups = src.MaxBackups
	}
	if src.MaxAge > 0 {
		logCfg.MaxAge = src.MaxAge
	}
	// Compress переносится всегда: false может быть задан оператором явно
	// через I2M_LOG_COMPRESS=false.
	logCfg.Compress = src.Compress

	return logging.NewLogger(logCfg)
}

// ProvideOutputWriter выбирает формат вывода результата по I2M_OUTPUT_FORMAT:
// "json" даёт JSONWriter, всё остальное (включая пустое значение) — TextWriter.
// Формат намеренно не входит в файл конфигурации: обвязка CI переключает его
// per-запуск без правки файла.
func ProvideOutputWriter() output.Writer {
	if format := os.Getenv("I2M_OUTPUT_FORMAT"); format != "" {
		return output.NewWriter(format)
	}
	return output.NewWriter(output.FormatText)
}

// ProvideTraceID генерирует trace_id запуска — 32 hex-символа (16 байт).
// Один идентификатор на процесс: по нему склеиваются все логи запуска.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideGiteaAPI создаёт клиент Gitea API из параметров подключения в Config.
// Возвращает интерфейс — тело синхронизации и действий зависит от
// gitea.APIInterface, что позволяет подставлять фиктивный API в тестах.
func ProvideGiteaAPI(cfg *config.Config) gitea.APIInterface {
	return config.CreateGiteaAPI(cfg)
}

// ProvideMetricsCollector собирает коллектор метрик из секции metrics.
// Отсутствующая или выключенная секция даёт NopCollector; ошибка сборки
// PrometheusCollector тоже — запуск команды важнее телеметрии.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil || cfg.MetricsConfig == nil {
		return metrics.NewNopCollector()
	}

	src := cfg.MetricsConfig
	collector, err := metrics.NewCollector(metrics.Config{
		Enabled:        src.Enabled,
		PushgatewayURL: src.PushgatewayURL,
		JobName:        src.JobName,
		Timeout:        src.Timeout,
		InstanceLabel:  src.InstanceLabel,
	}, logger)
	if err != nil {
		logger.Error("коллектор метрик не собрался, метрики отключены",
			slog.String("error", err.Error()))
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider инициализирует OTel TracerProvider из секции tracing
// и возвращает shutdown-функцию. Отсутствующая или выключенная секция даёт
// nop shutdown; ошибка инициализации тоже — как и с метриками, телеметрия
// не должна ронять запуск.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil || cfg.TracingConfig == nil {
		return tracing.NewNopTracerProvider()
	}

	src := cfg.TracingConfig
	shutdown, err := tracing.NewTracerProvider(tracing.Config{
		Enabled:      src.Enabled,
		Endpoint:     src.Endpoint,
		ServiceName:  src.ServiceName,
		Version:      constants.Version,
		Environment:  src.Environment,
		Insecure:     src.Insecure,
		Timeout:      src.Timeout,
		SamplingRate: src.SamplingRate,
	}, logger)
	if err != nil {
		logger.Error("трейсинг не инициализировался, спаны не экспортируются",
			slog.String("error", err.Error()))
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}
