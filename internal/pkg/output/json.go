package output

import (
	"encoding/json"
	"io"
)

// JSONWriter пишет Result как JSON с отступами.
type JSONWriter struct{}

// NewJSONWriter возвращает JSONWriter.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Write сериализует result в w. Summary переезжает внутрь
// metadata.summary; сам result при этом не мутируется — сериализуются
// shallow-копии Result и Metadata.
func (j *JSONWriter) Write(w io.Writer, result *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if result == nil {
		return encoder.Encode(result)
	}

	out := *result
	if result.Summary != nil && result.Metadata != nil {
		metaCopy := *result.Metadata
		metaCopy.Summary = result.Summary
		out.Metadata = &metaCopy
	}

	return encoder.Encode(&out)
}
