// Package tracing отвечает за trace ID: генерацию, прокидывание через
// context и привязку к OpenTelemetry.
//
// Trace ID — 32 hex-символа (16 байт), формат W3C Trace Context:
//
//	"4bf92f3577b34da6a3ce929d0e0e4736"
//
// Один trace ID живёт весь запуск команды и попадает в каждую запись
// лога, что позволяет собрать все сообщения одного запуска:
//
//	traceID := tracing.GenerateTraceID()
//	ctx := tracing.WithTraceID(ctx, traceID)
//	logger.With("trace_id", tracing.TraceIDFromContext(ctx)).Info("Синхронизация началась")
package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID возвращает новый случайный trace ID.
// Источник — crypto/rand; если чтение из него вдруг не удалось,
// используется детерминированный fallback на времени и счётчике.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID собирает ID из наносекундного timestamp и атомарного
// счётчика. Оба поля печатаются как %016x, что даёт ровно 32 символа:
// uint64 не длиннее 16 hex-цифр, короткие значения дополняются нулями.
// Cast timestamp к uint64 защищает от знака UnixNano.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
