package metrics

import "errors"

// Ошибки валидации Config. Сигнальные значения: вызывающий код различает
// их через errors.Is и решает, падать или откатываться на NopCollector.
var (
	ErrPushgatewayURLRequired = errors.New("metrics: pushgateway URL обязателен когда метрики включены")
	ErrPushgatewayURLInvalid  = errors.New("metrics: pushgateway URL должен быть валидным URL со схемой и host (например http://pushgateway:9091)")
	ErrJobNameRequired        = errors.New("metrics: job name обязателен")
	ErrInvalidTimeout         = errors.New("metrics: timeout должен быть положительным")
)
