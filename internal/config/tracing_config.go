package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// TracingConfig — секция настроек OpenTelemetry в файле конфигурации.
type TracingConfig struct {
	// Enabled включает экспорт спанов в OTLP бэкенд.
	Enabled bool `json:"enabled" yaml:"enabled" env:"I2M_TRACING_ENABLED" env-default:"false"`

	// Endpoint — адрес OTLP HTTP endpoint, например http://jaeger:4318.
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"I2M_TRACING_ENDPOINT"`

	// ServiceName попадает в resource attributes каждого спана.
	ServiceName string `json:"service_name" yaml:"service_name" env:"I2M_TRACING_SERVICE_NAME" env-default:"issue2md"`

	// Environment — production, staging или development.
	Environment string `json:"environment" yaml:"environment" env:"I2M_TRACING_ENVIRONMENT" env-default:"production"`

	// Insecure разрешает HTTP вместо HTTPS. По умолчанию true:
	// коллектор обычно живёт во внутренней сети рядом с CI.
	Insecure bool `json:"insecure" yaml:"insecure" env:"I2M_TRACING_INSECURE" env-default:"true"`

	// Timeout ограничивает экспорт спанов. В JSON задаётся числом наносекунд,
	// строковая форма ("5s") доступна через I2M_TRACING_TIMEOUT.
	Timeout time.Duration `json:"timeout" yaml:"timeout" env:"I2M_TRACING_TIMEOUT" env-default:"5s"`

	// SamplingRate — доля сэмплируемых трейсов от 0.0 до 1.0.
	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" env:"I2M_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// hasTracingSection определяет, заполнял ли оператор секцию tracing:
// у незаполненной секции и Enabled false, и Endpoint пуст.
func hasTracingSection(s *TracingConfig) bool {
	return s != nil && (s.Enabled || s.Endpoint != "")
}

// defaultTracingConfig — выключенный трейсинг с дефолтами остальных полей.
func defaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:  "issue2md",
		Environment:  "production",
		Insecure:     true,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}

// validateTracingConfig проверяет секцию после загрузки. Выключенный
// трейсинг валиден всегда; включённый требует endpoint и service name.
func validateTracingConfig(c *TracingConfig) error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("tracing: при enabled=true требуется endpoint")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("tracing: при enabled=true требуется service name")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("tracing: timeout должен быть больше нуля")
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		// %g даёт читаемый вывод (0.5 вместо 0.500000)
		return fmt.Errorf("tracing: sampling rate вне диапазона [0.0, 1.0]: %g", c.SamplingRate)
	}
	return nil
}

// loadTracingConfig выбирает источник секции (файл конфигурации либо
// дефолты) и применяет поверх него переменные окружения I2M_TRACING_*.
func loadTracingConfig(cfg *Config, l *slog.Logger) (*TracingConfig, error) {
	section := defaultTracingConfig()
	source := "defaults"
	if cfg.FileConfig != nil && hasTracingSection(&cfg.FileConfig.Tracing) {
		section = &cfg.FileConfig.Tracing
		source = "file"
	}

	if err := cleanenv.ReadEnv(section); err != nil {
		l.Warn("tracing: не удалось применить переменные окружения",
			slog.String("error", err.Error()),
		)
	}

	l.Debug("конфигурация трейсинга загружена",
		slog.String("source", source),
		slog.Bool("enabled", section.Enabled),
		slog.String("endpoint", section.Endpoint),
	)
	return section, nil
}
