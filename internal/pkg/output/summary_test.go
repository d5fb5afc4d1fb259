package output

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncSummary собирает сводку в форме, которую пишет обработчик sync.
func syncSummary(added, updated, attachments int, warnings ...string) *SummaryInfo {
	s := NewSummaryInfo()
	s.AddMetric("Задач добавлено", strconv.Itoa(added), "шт")
	s.AddMetric("Задач обновлено", strconv.Itoa(updated), "шт")
	s.AddMetric("Вложений скачано", strconv.Itoa(attachments), "шт")
	for _, w := range warnings {
		s.AddWarning(w)
	}
	return s
}

func TestNewSummaryInfo_StartsEmpty(t *testing.T) {
	s := NewSummaryInfo()

	require.NotNil(t, s)
	assert.Empty(t, s.KeyMetrics)
	assert.Empty(t, s.Warnings)
	assert.Zero(t, s.WarningsCount)
}

func TestSummaryInfo_AddMetric(t *testing.T) {
	s := NewSummaryInfo()
	s.AddMetric("Задач добавлено", "3", "шт")
	s.AddMetric("Время запроса", "1.2", "сек")
	s.AddMetric("Состояние", "завершено", "")

	require.Len(t, s.KeyMetrics, 3)
	assert.Equal(t, KeyMetric{Name: "Задач добавлено", Value: "3", Unit: "шт"}, s.KeyMetrics[0])
	assert.Equal(t, "Время запроса", s.KeyMetrics[1].Name)
	assert.Empty(t, s.KeyMetrics[2].Unit, "единица измерения опциональна")
}

func TestSummaryInfo_AddWarning_IncrementsCounter(t *testing.T) {
	s := NewSummaryInfo()
	s.AddWarning("Пропущено вложений из-за ошибок загрузки: 2")
	s.AddWarning("Endpoint вложений не поддерживается сервером")

	assert.Equal(t, 2, s.WarningsCount)
	require.Len(t, s.Warnings, 2)
	assert.Contains(t, s.Warnings[0], "Пропущено вложений")
}

func TestSummaryInfo_JSONShape(t *testing.T) {
	s := syncSummary(2, 1, 4, "Пропущено вложений из-за ошибок загрузки: 1")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, float64(1), parsed["warnings_count"])

	metrics, ok := parsed["key_metrics"].([]any)
	require.True(t, ok)
	require.Len(t, metrics, 3)

	first, ok := metrics[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Задач добавлено", first["name"])
	assert.Equal(t, "2", first["value"])
	assert.Equal(t, "шт", first["unit"])
}

func TestSummaryInfo_JSONOmitsEmptySlices(t *testing.T) {
	// Zero value без инициализации слайсов
	data, err := json.Marshal(&SummaryInfo{})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.NotContains(t, parsed, "key_metrics")
	assert.NotContains(t, parsed, "warnings")
	assert.Equal(t, float64(0), parsed["warnings_count"], "счётчик сериализуется всегда")
}

func TestJSONWriter_CopiesSummaryIntoMetadata(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "sync",
		Data:    map[string]any{"issues_added": 2},
		Summary: syncSummary(2, 0, 1, "Пропущено вложений из-за ошибок загрузки: 1"),
		Metadata: &Metadata{
			DurationMs: 1500,
			TraceID:    "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6",
			APIVersion: "v1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.NotContains(t, parsed, "summary", "summary живёт только внутри metadata")

	metadata, ok := parsed["metadata"].(map[string]any)
	require.True(t, ok)
	metaSummary, ok := metadata["summary"].(map[string]any)
	require.True(t, ok, "metadata.summary должен присутствовать")

	assert.Equal(t, float64(1), metaSummary["warnings_count"])
	assert.Len(t, metaSummary["key_metrics"], 3)
}

func TestJSONWriter_NilSummaryLeavesMetadataBare(t *testing.T) {
	result := &Result{
		Status:   StatusSuccess,
		Command:  "sync",
		Metadata: &Metadata{DurationMs: 500, APIVersion: "v1"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	metadata, ok := parsed["metadata"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, metadata, "summary")
}

func TestJSONWriter_SummaryWithoutMetadata(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "sync",
		Summary: syncSummary(1, 0, 0),
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	// При nil Metadata summary некуда копировать — вывод остаётся без него
	assert.NotContains(t, parsed, "summary")
	assert.NotContains(t, parsed, "metadata")
}

func TestJSONWriter_DoesNotMutateCallerResult(t *testing.T) {
	metadata := &Metadata{DurationMs: 100, APIVersion: "v1"}
	result := &Result{
		Status:   StatusSuccess,
		Command:  "sync",
		Summary:  syncSummary(1, 1, 1),
		Metadata: metadata,
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	assert.Nil(t, metadata.Summary, "Write работает на копии, исходный Metadata не трогается")
}

func TestTextWriter_SummaryBlock(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "sync",
		Summary: syncSummary(2, 1, 4, "Пропущено вложений из-за ошибок загрузки: 1"),
		Metadata: &Metadata{
			DurationMs: 1500,
			APIVersion: "v1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "📊 Сводка")
	assert.Contains(t, out, "⏱️  Время выполнения: 1.5с")
	assert.Contains(t, out, "📈 Задач добавлено: 2 шт")
	assert.Contains(t, out, "📈 Задач обновлено: 1 шт")
	assert.Contains(t, out, "📈 Вложений скачано: 4 шт")
	assert.Contains(t, out, "⚠️  Предупреждений: 1")
	assert.Contains(t, out, "• Пропущено вложений из-за ошибок загрузки: 1")
}

func TestTextWriter_MetricWithoutUnit(t *testing.T) {
	s := NewSummaryInfo()
	s.AddMetric("Номер задачи", "7", "")

	result := &Result{
		Status:   StatusSuccess,
		Command:  "close",
		Summary:  s,
		Metadata: &Metadata{DurationMs: 100, APIVersion: "v1"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	// Без единицы измерения значение выводится без хвостового пробела
	assert.Contains(t, buf.String(), "📈 Номер задачи: 7\n")
}

func TestTextWriter_NilSummaryShowsDurationOnly(t *testing.T) {
	result := &Result{
		Status:   StatusSuccess,
		Command:  "sync",
		Metadata: &Metadata{DurationMs: 500, APIVersion: "v1"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "📊 Сводка")
	assert.Contains(t, out, "⏱️  Время выполнения: 500мс")
	assert.NotContains(t, out, "📈")
	assert.NotContains(t, out, "⚠️")
}

func TestTextWriter_DurationRendering(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int64
		expected   string
	}{
		{"доли секунды", 500, "500мс"},
		{"секунды с десятыми", 2500, "2.5с"},
		{"ровно секунда", 1000, "1.0с"},
		{"минуты и секунды", 125000, "2м 5с"},
		{"ровно минута", 60000, "1м 0с"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{
				Status:   StatusSuccess,
				Command:  "sync",
				Metadata: &Metadata{DurationMs: tt.durationMs, APIVersion: "v1"},
			}

			var buf bytes.Buffer
			require.NoError(t, NewTextWriter().Write(&buf, result))
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestTextWriter_NilMetadataSkipsDuration(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "sync",
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "📊 Сводка")
	assert.NotContains(t, out, "⏱️")
}
