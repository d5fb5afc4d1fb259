package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Kargones/issue2md/internal/pkg/logging"
	"github.com/Kargones/issue2md/internal/pkg/urlutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// metricsNamespace — префикс имён всех метрик проекта.
const metricsNamespace = "issue2md"

// maxLabelLength ограничивает длину значения label. Защита от cardinality
// explosion при мусорном аргументе (например, URL вместо имени репозитория).
const maxLabelLength = 128

// PrometheusCollector пишет метрики в собственный registry и выгружает их
// методом Push. Registry локальный, не глобальный: коллектор создаётся при
// каждом запуске CLI (и многократно в тестах), а повторная регистрация в
// глобальном registry была бы ошибкой.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	commandDuration *prometheus.HistogramVec
	commandSuccess  *prometheus.CounterVec
	commandError    *prometheus.CounterVec
	issuesAdded     *prometheus.CounterVec
	issuesUpdated   *prometheus.CounterVec
	attachments     *prometheus.CounterVec

	// значение label instance при push: hostname либо override из конфигурации
	instance string
}

// NewPrometheusCollector создаёт коллектор и регистрирует метрики проекта:
//
//	issue2md_command_duration_seconds      histogram (command, repository, status)
//	issue2md_command_success_total         counter   (command, repository)
//	issue2md_command_error_total           counter   (command, repository)
//	issue2md_issues_added_total            counter   (repository)
//	issue2md_issues_updated_total          counter   (repository)
//	issue2md_attachments_downloaded_total  counter   (repository)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &PrometheusCollector{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		instance: resolveInstance(config.InstanceLabel, logger),
	}

	// Buckets покрывают диапазон от мгновенных команд-действий (~0.1s) до
	// синхронизации большого репозитория со скачиванием вложений (минуты).
	c.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command execution in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"command", "repository", "status"},
	)

	// success/error дублируют histogram count по status, но простые счётчики
	// удобнее в алертах: rate() без агрегации по histogram.
	c.commandSuccess = newCounterVec("command_success_total",
		"Total number of successful command executions", "command", "repository")
	c.commandError = newCounterVec("command_error_total",
		"Total number of failed command executions", "command", "repository")

	// Итоги синхронизации.
	c.issuesAdded = newCounterVec("issues_added_total",
		"Total number of issue sections added to the markdown file", "repository")
	c.issuesUpdated = newCounterVec("issues_updated_total",
		"Total number of issue sections updated in the markdown file", "repository")
	c.attachments = newCounterVec("attachments_downloaded_total",
		"Total number of attachments downloaded", "repository")

	for _, col := range []prometheus.Collector{
		c.commandDuration, c.commandSuccess, c.commandError,
		c.issuesAdded, c.issuesUpdated, c.attachments,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return c, nil
}

// newCounterVec создаёт counter в namespace проекта.
func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// resolveInstance возвращает значение label instance: override из
// конфигурации, иначе hostname, при ошибке hostname — "unknown".
func resolveInstance(override string, logger logging.Logger) string {
	if override != "" {
		return override
	}
	hostname, err := os.Hostname()
	if err != nil {
		logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
			"error", err.Error())
		return "unknown"
	}
	return hostname
}

// sanitizeLabel приводит значение label к безопасному для Prometheus text
// format виду: контрольные символы (\n, \r, \t, \0) заменяются на '_',
// длина ограничивается maxLabelLength рунами. Обрезка по рунам, не по
// байтам: имя репозитория может быть кириллическим.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	if runes := []rune(clean); len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordCommandStart отмечает начало команды. Отдельной in-flight метрики
// у короткоживущего CLI нет, фиксируем только debug-след.
func (c *PrometheusCollector) RecordCommandStart(command, repository string) {
	c.logger.Debug("metrics: command started",
		"command", command,
		"repository", repository,
	)
}

// RecordCommandEnd фиксирует завершение команды: observation в histogram
// длительности и инкремент success- либо error-счётчика.
func (c *PrometheusCollector) RecordCommandEnd(command, repository string, duration time.Duration, success bool) {
	command = sanitizeLabel(command)
	repository = sanitizeLabel(repository)

	status := "success"
	if !success {
		status = "error"
	}
	c.commandDuration.WithLabelValues(command, repository, status).Observe(duration.Seconds())

	if success {
		c.commandSuccess.WithLabelValues(command, repository).Inc()
	} else {
		c.commandError.WithLabelValues(command, repository).Inc()
	}

	c.logger.Debug("metrics: command ended",
		"command", command,
		"repository", repository,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// RecordSyncTotals переносит итоги синхронизации в счётчики. Нулевые и
// отрицательные значения пропускаются: Counter монотонный, а запуск без
// изменений не должен создавать time series.
func (c *PrometheusCollector) RecordSyncTotals(repository string, added, updated, attachments int) {
	repository = sanitizeLabel(repository)

	if added > 0 {
		c.issuesAdded.WithLabelValues(repository).Add(float64(added))
	}
	if updated > 0 {
		c.issuesUpdated.WithLabelValues(repository).Add(float64(updated))
	}
	if attachments > 0 {
		c.attachments.WithLabelValues(repository).Add(float64(attachments))
	}

	c.logger.Debug("metrics: sync totals recorded",
		"repository", repository,
		"added", added,
		"updated", updated,
		"attachments", attachments,
	)
}

// Push выгружает снимок registry в Pushgateway одним PUT-запросом.
// Ошибка доставки логируется и поглощается: команда уже отработала,
// метрики не должны менять её exit code.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL не задан, push пропущен")
		return nil
	}

	select {
	case <-ctx.Done():
		c.logger.Debug("metrics: push отменён контекстом")
		return nil
	default:
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// GetRegistry открывает внутренний registry для проверок в тестах.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
