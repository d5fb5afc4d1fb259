package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Kargones/issue2md/internal/pkg/urlutil"

	"github.com/ilyakaznacheev/cleanenv"
)

// MetricsConfig — секция настроек Prometheus Pushgateway в файле конфигурации.
type MetricsConfig struct {
	// Enabled включает отправку метрик. По умолчанию выключено.
	Enabled bool `json:"enabled" yaml:"enabled" env:"I2M_METRICS_ENABLED" env-default:"false"`

	// PushgatewayURL — адрес Pushgateway, например http://pushgateway:9091.
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" env:"I2M_METRICS_PUSHGATEWAY_URL"`

	// JobName группирует метрики на стороне Pushgateway.
	JobName string `json:"job_name" yaml:"job_name" env:"I2M_METRICS_JOB_NAME" env-default:"issue2md"`

	// Timeout ограничивает HTTP-запрос к Pushgateway. В JSON задаётся числом
	// наносекунд, строковая форма ("10s") доступна через I2M_METRICS_TIMEOUT.
	Timeout time.Duration `json:"timeout" yaml:"timeout" env:"I2M_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel переопределяет label instance (по умолчанию hostname).
	InstanceLabel string `json:"instance_label" yaml:"instance_label" env:"I2M_METRICS_INSTANCE_LABEL"`
}

// hasMetricsSection определяет, заполнял ли оператор секцию metrics:
// у незаполненной секции и Enabled false, и PushgatewayURL пуст.
func hasMetricsSection(s *MetricsConfig) bool {
	return s != nil && (s.Enabled || s.PushgatewayURL != "")
}

// defaultMetricsConfig — выключенные метрики с дефолтами остальных полей.
func defaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{JobName: "issue2md", Timeout: 10 * time.Second}
}

// validateMetricsConfig проверяет секцию после загрузки. Выключенные метрики
// валидны всегда; включённые требуют адрес Pushgateway и имя job.
func validateMetricsConfig(c *MetricsConfig) error {
	if !c.Enabled {
		return nil
	}
	if c.PushgatewayURL == "" {
		return fmt.Errorf("metrics: при enabled=true требуется pushgateway_url")
	}
	if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("metrics: pushgateway_url не является валидным URL: %s",
			urlutil.MaskURL(c.PushgatewayURL))
	}
	if c.JobName == "" {
		return fmt.Errorf("metrics: при enabled=true требуется job_name")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("metrics: timeout должен быть больше нуля")
	}
	return nil
}

// loadMetricsConfig выбирает источник секции (файл конфигурации либо
// дефолты) и применяет поверх него переменные окружения I2M_METRICS_*.
func loadMetricsConfig(cfg *Config, l *slog.Logger) (*MetricsConfig, error) {
	section := defaultMetricsConfig()
	source := "defaults"
	if cfg.FileConfig != nil && hasMetricsSection(&cfg.FileConfig.Metrics) {
		section = &cfg.FileConfig.Metrics
		source = "file"
	}

	if err := cleanenv.ReadEnv(section); err != nil {
		l.Warn("metrics: не удалось применить переменные окружения",
			slog.String("error", err.Error()),
		)
	}

	l.Debug("конфигурация метрик загружена",
		slog.String("source", source),
		slog.Bool("enabled", section.Enabled),
		slog.String("pushgateway_url", urlutil.MaskURL(section.PushgatewayURL)),
	)
	return section, nil
}
