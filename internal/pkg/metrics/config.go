package metrics

import (
	"net/url"
	"time"
)

// Config описывает доставку метрик в Pushgateway.
type Config struct {
	// Enabled включает сбор и отправку метрик. По умолчанию выключено:
	// локальный запуск issue2md не предполагает инфраструктуры Prometheus.
	Enabled bool

	// PushgatewayURL — адрес Prometheus Pushgateway, например
	// "http://pushgateway:9091". Обязателен при Enabled=true.
	PushgatewayURL string

	// JobName группирует метрики на стороне Pushgateway. По умолчанию "issue2md".
	JobName string

	// Timeout ограничивает HTTP-запрос к Pushgateway. По умолчанию 10 секунд.
	Timeout time.Duration

	// InstanceLabel переопределяет label instance. Пустое значение — hostname.
	InstanceLabel string
}

// Validate проверяет достаточность конфигурации для отправки метрик.
// Выключенные метрики валидны всегда.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.PushgatewayURL == "" {
		return ErrPushgatewayURLRequired
	}
	if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPushgatewayURLInvalid
	}

	if c.JobName == "" {
		return ErrJobNameRequired
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию: метрики выключены,
// job "issue2md", таймаут 10 секунд.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		PushgatewayURL: "",
		JobName:        "issue2md",
		Timeout:        10 * time.Second,
		InstanceLabel:  "",
	}
}
