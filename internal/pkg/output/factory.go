package output

import "strings"

// Имена форматов для I2M_OUTPUT_FORMAT.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// NewWriter подбирает Writer по имени формата без учёта регистра.
// Всё, что не "json", отдаёт текстовый формат: человекочитаемый
// вывод — безопасный дефолт для незнакомого значения.
func NewWriter(format string) Writer {
	if strings.ToLower(format) == FormatJSON {
		return NewJSONWriter()
	}
	return NewTextWriter()
}
