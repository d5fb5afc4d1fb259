package tracing

import "context"

// traceIDKey — приватный тип ключа, исключает коллизии со значениями
// других пакетов в том же context.
type traceIDKey struct{}

// WithTraceID кладёт trace ID в context. Повторный вызов затеняет
// предыдущее значение.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext достаёт trace ID, положенный WithTraceID.
// Для nil context или context без значения возвращает пустую строку:
//
//	if id := tracing.TraceIDFromContext(ctx); id != "" {
//		logger = logger.With("trace_id", id)
//	}
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// TraceIDOrNew достаёт trace ID из context, а при его отсутствии
// генерирует новый. Для обработчиков команд, которым trace ID нужен
// всегда — хотя бы для metadata результата.
func TraceIDOrNew(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return GenerateTraceID()
}
