package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kargones/issue2md/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSyncCollector создаёт включённый PrometheusCollector с nop-логгером.
// Мутаторы правят конфигурацию до создания (URL тестового сервера и т.п.).
func newSyncCollector(t *testing.T, mutate ...func(*Config)) *PrometheusCollector {
	t.Helper()

	cfg := enabledConfig()
	cfg.InstanceLabel = "test-runner"
	for _, m := range mutate {
		m(&cfg)
	}

	collector, err := NewPrometheusCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return collector
}

// familyNames возвращает имена всех metric families, у которых есть хотя бы
// одна серия. Vec-метрики без записей в Gather не попадают.
func familyNames(t *testing.T, c *PrometheusCollector) map[string]bool {
	t.Helper()

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

// counterTotal суммирует значения всех серий counter-семейства.
func counterTotal(t *testing.T, c *PrometheusCollector, name string) float64 {
	t.Helper()

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// seriesLabelSets возвращает labels каждой серии семейства.
func seriesLabelSets(t *testing.T, c *PrometheusCollector, name string) []map[string]string {
	t.Helper()

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)

	var sets []map[string]string
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			sets = append(sets, labels)
		}
	}
	return sets
}

// histogramSampleCount суммирует количество observations по всем сериям histogram.
func histogramSampleCount(t *testing.T, c *PrometheusCollector, name string) uint64 {
	t.Helper()

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)

	var count uint64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				count += h.GetSampleCount()
			}
		}
	}
	return count
}

// TestNewPrometheusCollector_RegistersAllFamilies: после записи команды и
// итогов синхронизации все шесть семейств метрик видны в registry.
func TestNewPrometheusCollector_RegistersAllFamilies(t *testing.T) {
	collector := newSyncCollector(t)

	collector.RecordCommandEnd("sync", "dev/tracker", 1200*time.Millisecond, true)
	collector.RecordCommandEnd("close", "dev/tracker", 300*time.Millisecond, false)
	collector.RecordSyncTotals("dev/tracker", 2, 1, 4)

	names := familyNames(t, collector)
	for _, want := range []string{
		"issue2md_command_duration_seconds",
		"issue2md_command_success_total",
		"issue2md_command_error_total",
		"issue2md_issues_added_total",
		"issue2md_issues_updated_total",
		"issue2md_attachments_downloaded_total",
	} {
		assert.True(t, names[want], "семейство %s должно присутствовать", want)
	}
}

func TestNewPrometheusCollector_RejectsInvalidConfig(t *testing.T) {
	cfg := enabledConfig()
	cfg.PushgatewayURL = ""

	collector, err := NewPrometheusCollector(cfg, logging.NewNopLogger())
	assert.Nil(t, collector)
	assert.ErrorIs(t, err, ErrPushgatewayURLRequired)
}

// TestRecordCommandEnd_RoutesByOutcome: успех и ошибка попадают в разные
// счётчики, а histogram-серия несёт соответствующий label status.
func TestRecordCommandEnd_RoutesByOutcome(t *testing.T) {
	tests := []struct {
		name        string
		success     bool
		wantStatus  string
		wantSuccess float64
		wantError   float64
	}{
		{"успех инкрементирует success counter", true, "success", 1, 0},
		{"ошибка инкрементирует error counter", false, "error", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := newSyncCollector(t)
			collector.RecordCommandEnd("sync", "dev/tracker", 2*time.Second, tt.success)

			assert.Equal(t, tt.wantSuccess, counterTotal(t, collector, "issue2md_command_success_total"))
			assert.Equal(t, tt.wantError, counterTotal(t, collector, "issue2md_command_error_total"))

			series := seriesLabelSets(t, collector, "issue2md_command_duration_seconds")
			require.Len(t, series, 1)
			assert.Equal(t, "sync", series[0]["command"])
			assert.Equal(t, "dev/tracker", series[0]["repository"])
			assert.Equal(t, tt.wantStatus, series[0]["status"])
		})
	}
}

// TestRecordCommandEnd_SanitizesLabelValues: контрольные символы в labels
// заменяются до записи, серия создаётся уже с чистыми значениями.
func TestRecordCommandEnd_SanitizesLabelValues(t *testing.T) {
	collector := newSyncCollector(t)

	collector.RecordCommandEnd("sync\nall", "dev/tracker\r\n", time.Second, true)

	series := seriesLabelSets(t, collector, "issue2md_command_duration_seconds")
	require.Len(t, series, 1)
	assert.Equal(t, "sync_all", series[0]["command"])
	assert.Equal(t, "dev/tracker__", series[0]["repository"])
}

func TestRecordCommandEnd_AggregatesAcrossCommands(t *testing.T) {
	collector := newSyncCollector(t)

	collector.RecordCommandEnd("sync", "dev/tracker", 1*time.Second, true)
	collector.RecordCommandEnd("sync", "dev/tracker", 2*time.Second, true)
	collector.RecordCommandEnd("comment", "dev/docs", 3*time.Second, false)

	assert.Equal(t, float64(2), counterTotal(t, collector, "issue2md_command_success_total"))
	assert.Equal(t, float64(1), counterTotal(t, collector, "issue2md_command_error_total"))
}

func TestRecordSyncTotals_AccumulatesAcrossRuns(t *testing.T) {
	collector := newSyncCollector(t)

	collector.RecordSyncTotals("dev/tracker", 2, 3, 5)
	collector.RecordSyncTotals("dev/tracker", 1, 0, 2)

	assert.Equal(t, float64(3), counterTotal(t, collector, "issue2md_issues_added_total"))
	assert.Equal(t, float64(3), counterTotal(t, collector, "issue2md_issues_updated_total"))
	assert.Equal(t, float64(7), counterTotal(t, collector, "issue2md_attachments_downloaded_total"))
}

// TestRecordSyncTotals_SkipsNonPositive: запуск без изменений (и тем более
// мусорные отрицательные значения) не создаёт time series.
func TestRecordSyncTotals_SkipsNonPositive(t *testing.T) {
	collector := newSyncCollector(t)

	collector.RecordSyncTotals("dev/tracker", 0, 0, 0)
	collector.RecordSyncTotals("dev/tracker", -3, -1, -2)

	names := familyNames(t, collector)
	assert.False(t, names["issue2md_issues_added_total"])
	assert.False(t, names["issue2md_issues_updated_total"])
	assert.False(t, names["issue2md_attachments_downloaded_total"])
}

func TestHistogram_CountsEveryObservation(t *testing.T) {
	collector := newSyncCollector(t)

	// От короткого действия до синхронизации с вложениями.
	collector.RecordCommandEnd("comment", "dev/tracker", 80*time.Millisecond, true)
	collector.RecordCommandEnd("sync", "dev/tracker", 42*time.Second, true)
	collector.RecordCommandEnd("sync", "dev/wiki", 4*time.Minute, true)

	assert.Equal(t, uint64(3), histogramSampleCount(t, collector, "issue2md_command_duration_seconds"))
}

func TestPush_Delivery(t *testing.T) {
	t.Run("отправляет PUT на /metrics/job с instance grouping", func(t *testing.T) {
		var method, path string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			path = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		collector := newSyncCollector(t, func(cfg *Config) {
			cfg.PushgatewayURL = server.URL
			cfg.InstanceLabel = "runner-7"
		})
		collector.RecordCommandEnd("sync", "dev/tracker", time.Second, true)

		require.NoError(t, collector.Push(context.Background()))
		assert.Equal(t, http.MethodPut, method)
		assert.Contains(t, path, "/metrics/job/issue2md")
		assert.Contains(t, path, "/instance/runner-7")
	})

	t.Run("ошибка Pushgateway не превращается в ошибку команды", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "out of disk", http.StatusInternalServerError)
		}))
		defer server.Close()

		collector := newSyncCollector(t, func(cfg *Config) { cfg.PushgatewayURL = server.URL })
		collector.RecordCommandEnd("sync", "dev/tracker", time.Second, true)

		assert.NoError(t, collector.Push(context.Background()))
	})

	t.Run("отменённый контекст пропускает отправку", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		collector := newSyncCollector(t, func(cfg *Config) { cfg.PushgatewayURL = server.URL })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, collector.Push(ctx))
		assert.Zero(t, atomic.LoadInt32(&calls), "HTTP-запрос не должен отправляться")
	})

	t.Run("пустой URL пропускает отправку", func(t *testing.T) {
		collector := newSyncCollector(t)
		collector.config.PushgatewayURL = ""

		assert.NoError(t, collector.Push(context.Background()))
	})
}

func TestInstanceLabel_Resolution(t *testing.T) {
	t.Run("override из конфигурации имеет приоритет", func(t *testing.T) {
		collector := newSyncCollector(t, func(cfg *Config) { cfg.InstanceLabel = "ci-agent-3" })
		assert.Equal(t, "ci-agent-3", collector.instance)
	})

	t.Run("без override используется hostname", func(t *testing.T) {
		collector := newSyncCollector(t, func(cfg *Config) { cfg.InstanceLabel = "" })
		// hostname машины или "unknown" при ошибке, но точно не пусто
		assert.NotEmpty(t, collector.instance)
	})
}

func TestNewCollector_SelectsImplementation(t *testing.T) {
	logger := logging.NewNopLogger()

	t.Run("выключенные метрики дают NopCollector", func(t *testing.T) {
		collector, err := NewCollector(Config{Enabled: false}, logger)
		require.NoError(t, err)
		assert.IsType(t, &NopCollector{}, collector)
	})

	t.Run("включённые метрики дают PrometheusCollector", func(t *testing.T) {
		collector, err := NewCollector(enabledConfig(), logger)
		require.NoError(t, err)
		assert.IsType(t, &PrometheusCollector{}, collector)
	})

	t.Run("невалидная конфигурация — ошибка, не тихий no-op", func(t *testing.T) {
		cfg := enabledConfig()
		cfg.JobName = ""

		collector, err := NewCollector(cfg, logger)
		assert.ErrorIs(t, err, ErrJobNameRequired)
		assert.Nil(t, collector)
	})
}

func TestNopCollector_DropsEverything(t *testing.T) {
	collector := NewNopCollector()

	assert.NotPanics(t, func() {
		collector.RecordCommandStart("sync", "dev/tracker")
		collector.RecordCommandEnd("sync", "dev/tracker", time.Minute, false)
		collector.RecordSyncTotals("dev/tracker", 4, 2, 9)
	})
	assert.NoError(t, collector.Push(context.Background()))
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "обычное имя репозитория не меняется",
			input: "dev/tracker",
			want:  "dev/tracker",
		},
		{
			name:  "пустая строка остаётся пустой",
			input: "",
			want:  "",
		},
		{
			name:  "перевод строки и NUL заменяются на underscore",
			input: "dev\ntracker\x00log",
			want:  "dev_tracker_log",
		},
		{
			name:  "tab заменяется на underscore",
			input: "issue\t42",
			want:  "issue_42",
		},
		{
			name:  "ровно maxLabelLength рун проходит без обрезки",
			input: strings.Repeat("a", maxLabelLength),
			want:  strings.Repeat("a", maxLabelLength),
		},
		{
			name:  "длинное значение обрезается до maxLabelLength",
			input: strings.Repeat("x", maxLabelLength*2),
			want:  strings.Repeat("x", maxLabelLength),
		},
		{
			name:  "кириллица обрезается по рунам, не по байтам",
			input: strings.Repeat("ж", 200),
			want:  strings.Repeat("ж", maxLabelLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeLabel(tt.input))
		})
	}
}
