package output

import "io"

// Writer сериализует Result в выбранный формат.
// Реализации: JSONWriter, TextWriter.
type Writer interface {
	Write(w io.Writer, result *Result) error
}
