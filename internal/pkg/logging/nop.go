package logging

// NopLogger молча игнорирует все записи. Ставится в тестах,
// которым логи не нужны.
type NopLogger struct{}

// NewNopLogger возвращает логгер-заглушку.
func NewNopLogger() Logger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}

func (n *NopLogger) Info(_ string, _ ...any) {}

func (n *NopLogger) Warn(_ string, _ ...any) {}

func (n *NopLogger) Error(_ string, _ ...any) {}

// With возвращает тот же экземпляр: атрибуты всё равно отбрасываются.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}
