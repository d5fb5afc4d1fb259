package tracing

import "context"

// NewNopTracerProvider возвращает shutdown-заглушку для выключенного
// трейсинга: ничего не инициализируется, закрывать нечего.
func NewNopTracerProvider() func(context.Context) error {
	return func(_ context.Context) error { return nil }
}
