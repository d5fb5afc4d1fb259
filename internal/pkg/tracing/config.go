package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Sentinel-ошибки Validate, проверяются через errors.Is().
var (
	ErrTracingEndpointRequired      = errors.New("tracing: endpoint обязателен когда tracing включён")
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint должен быть валидным URL с host (например http://jaeger:4318)")
	ErrTracingServiceNameRequired   = errors.New("tracing: service name обязателен")
	ErrTracingTimeoutInvalid        = errors.New("tracing: timeout должен быть положительным")
	ErrTracingSamplingRateInvalid   = errors.New("tracing: sampling rate должен быть от 0.0 до 1.0")
)

// Config — настройки TracerProvider.
type Config struct {
	// Enabled включает экспорт трейсов. При false остальные поля не читаются.
	Enabled bool

	// Endpoint — полный URL OTLP HTTP endpoint, например "http://jaeger:4318".
	// Из него берётся host:port; схема нужна чтобы url.Parse увидел host.
	Endpoint string

	// ServiceName попадает в resource-атрибут service.name.
	ServiceName string

	// Version попадает в service.version.
	Version string

	// Environment — deployment.environment: production, staging, development.
	Environment string

	// Insecure переключает экспорт на HTTP без TLS. Через публичные
	// сети оставлять false.
	Insecure bool

	// Timeout ограничивает каждый запрос экспорта.
	Timeout time.Duration

	// SamplingRate — доля записываемых трейсов от 0.0 до 1.0.
	SamplingRate float64
}

// Validate проверяет конфигурацию и возвращает sentinel-ошибку
// для первого нарушенного требования. Выключенный трейсинг валиден всегда.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrTracingEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrTracingEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrTracingServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTracingTimeoutInvalid
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		// %g вместо %f для читаемого вывода (0.5 вместо 0.500000).
		return fmt.Errorf("%w, получено: %g", ErrTracingSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// DefaultConfig — трейсинг выключен, остальное заполнено разумными
// значениями на случай включения через переменные окружения.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Endpoint:     "",
		ServiceName:  "issue2md",
		Environment:  "production",
		Insecure:     false,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
