// Package main содержит точку входа для приложения issue2md.
// Приложение синхронизирует открытые задачи Gitea в локальный markdown-файл
// и выполняет действия над задачами (комментарий, закрытие, переоткрытие).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Kargones/issue2md/internal/command"
	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/di"
	"github.com/Kargones/issue2md/internal/pkg/logging"
	"github.com/Kargones/issue2md/internal/pkg/metrics"
	"github.com/Kargones/issue2md/internal/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	// Обработчики команд: blank import для self-registration через init()
	_ "github.com/Kargones/issue2md/internal/command/handlers"
)

// recordMetrics записывает результат выполнения команды и отправляет метрики в Pushgateway.
func recordMetrics(collector metrics.Collector, ctx context.Context, command, repository string, start time.Time, success bool) {
	collector.RecordCommandEnd(command, repository, time.Since(start), success)
	_ = collector.Push(ctx) // Ошибки push логируются внутри, не критичны
}

func main() {
	os.Exit(run())
}

// run содержит основную логику приложения и возвращает exit code.
// Вынесена из main() чтобы os.Exit() вызывался ПОСЛЕ отработки всех defer-ов
// (tracerShutdown, span.End). Без этого трейсы ошибочных выполнений терялись,
// потому что os.Exit() не выполняет defer.
func run() int {
	ctx := context.Background()
	cfg, err := config.MustLoad(os.Args[1:])
	if err != nil || cfg == nil {
		fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию приложения: %v\n", err)
		return 1
	}
	l := cfg.Logger
	// Логирование информации о версии и коммите на уровне Debug
	l.Debug("Информация о сборке",
		slog.String("version", constants.Version),
		slog.String("commit_hash", constants.PreCommitHash),
	)

	// Генерируем trace_id для корреляции логов
	traceID := tracing.GenerateTraceID()
	// Добавляем trace_id в context для handlers
	ctx = tracing.WithTraceID(ctx, traceID)
	// Связываем с OTel span context — все span-ы будут использовать этот trace ID
	ctx = tracing.ContextWithOTelTraceID(ctx, traceID)

	// Один adapter переиспользуется всеми провайдерами.
	logAdapter := logging.NewSlogAdapter(l)
	metricsCollector := di.ProvideMetricsCollector(cfg, logAdapter)
	// Collector доступен оркестратору синхронизации для итоговых счётчиков.
	cfg.MetricsCollector = metricsCollector

	// Инициализация OpenTelemetry трейсинга
	tracerShutdown := di.ProvideTracerProvider(cfg, logAdapter)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			l.Error("ошибка завершения tracing",
				slog.String("error", err.Error()),
				slog.String("trace_id", traceID),
				slog.String("command", cfg.Command),
			)
		}
	}()

	repository := cfg.Owner + "/" + cfg.Repo

	// Root span создаётся один раз на инвокацию; имя — первая команда.
	tracer := otel.Tracer("issue2md")
	ctx, span := tracer.Start(ctx, cfg.Command,
		trace.WithAttributes(
			attribute.String("command", cfg.Command),
			attribute.String("repository", repository),
			attribute.String("trace_id", traceID),
		),
	)
	defer span.End()

	// Флаги действий выполняются по порядку; синхронизация при этом не запускается.
	if len(cfg.Actions) > 0 {
		return runActions(ctx, cfg, l, metricsCollector, repository)
	}

	// Без флагов действий выполняется единственная команда: sync, version или help.
	handler, ok := command.Get(cfg.Command)
	if !ok {
		l.Error("неизвестная команда",
			slog.String("command", cfg.Command),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		return 1
	}

	metricsCollector.RecordCommandStart(cfg.Command, repository)
	start := time.Now()

	execErr := handler.Execute(ctx, cfg)
	recordMetrics(metricsCollector, ctx, cfg.Command, repository, start, execErr == nil)

	if execErr != nil {
		l.Error("Ошибка выполнения команды",
			slog.String("command", cfg.Command),
			slog.String("error", execErr.Error()),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		return 1
	}
	return 0
}

// runActions выполняет запрошенные действия над задачами по порядку их указания
// в командной строке. Ошибка одного действия не прерывает остальные, но итоговый
// exit code становится ненулевым, если хотя бы одно действие завершилось ошибкой.
func runActions(ctx context.Context, cfg *config.Config, l *slog.Logger,
	collector metrics.Collector, repository string) int {

	failed := 0
	for i := range cfg.Actions {
		action := &cfg.Actions[i]
		handler, ok := command.Get(action.Kind)
		if !ok {
			l.Error("неизвестное действие", slog.String("action", action.Kind))
			failed++
			continue
		}

		// Обработчик действия читает параметры из cfg.Action.
		cfg.Action = action
		cfg.Command = action.Kind

		collector.RecordCommandStart(action.Kind, repository)
		start := time.Now()
		execErr := handler.Execute(ctx, cfg)
		recordMetrics(collector, ctx, action.Kind, repository, start, execErr == nil)

		if execErr != nil {
			l.Error("Ошибка выполнения действия",
				slog.String("action", action.Kind),
				slog.Int64("issue", action.Issue),
				slog.String("error", execErr.Error()),
			)
			failed++
		}
	}

	if failed > 0 {
		l.Error("Часть действий завершилась ошибкой",
			slog.Int("failed", failed),
			slog.Int("total", len(cfg.Actions)),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		return 1
	}
	return 0
}
