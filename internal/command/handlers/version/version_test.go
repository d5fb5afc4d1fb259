package version

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/Kargones/issue2md/internal/command"
	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/pkg/output"
	"github.com/Kargones/issue2md/internal/pkg/testutil"
	"github.com/Kargones/issue2md/internal/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execVersion запускает handler и возвращает stdout.
func execVersion(t *testing.T, ctx context.Context) string {
	t.Helper()

	h := &Handler{}
	var execErr error
	out := testutil.CaptureStdout(t, func() {
		execErr = h.Execute(ctx, nil)
	})
	require.NoError(t, execErr)
	return out
}

// decodeResult разбирает JSON-вывод команды.
func decodeResult(t *testing.T, out string) output.Result {
	t.Helper()

	var result output.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result), "stdout должен содержать валидный JSON")
	return result
}

func TestHandler_Name(t *testing.T) {
	h := &Handler{}
	assert.Equal(t, "version", h.Name())
	assert.Equal(t, constants.ActVersion, h.Name())
}

func TestHandler_DefaultFormatIsText(t *testing.T) {
	t.Setenv("I2M_OUTPUT_FORMAT", "")

	out := execVersion(t, context.Background())
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "issue2md version")
}

func TestHandler_JSONOutput(t *testing.T) {
	t.Setenv("I2M_OUTPUT_FORMAT", "json")

	result := decodeResult(t, execVersion(t, context.Background()))

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "version", result.Command)

	dataMap, ok := result.Data.(map[string]any)
	require.True(t, ok, "Data должен быть map")
	assert.NotEmpty(t, dataMap["version"])
	assert.Equal(t, runtime.Version(), dataMap["go_version"])
	assert.NotEmpty(t, dataMap["commit"])
}

func TestHandler_TextOutput(t *testing.T) {
	t.Setenv("I2M_OUTPUT_FORMAT", "text")

	out := execVersion(t, context.Background())

	assert.Contains(t, out, "issue2md version")
	assert.Contains(t, out, "Go:")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, "Commit:")
}

func TestHandler_Metadata(t *testing.T) {
	t.Setenv("I2M_OUTPUT_FORMAT", "json")

	t.Run("trace_id берётся из context", func(t *testing.T) {
		traceID := tracing.GenerateTraceID()
		ctx := tracing.WithTraceID(context.Background(), traceID)

		result := decodeResult(t, execVersion(t, ctx))

		require.NotNil(t, result.Metadata)
		assert.Equal(t, traceID, result.Metadata.TraceID)
		assert.GreaterOrEqual(t, result.Metadata.DurationMs, int64(0))
		assert.Equal(t, constants.APIVersion, result.Metadata.APIVersion)
	})

	t.Run("trace_id генерируется при отсутствии", func(t *testing.T) {
		result := decodeResult(t, execVersion(t, context.Background()))

		require.NotNil(t, result.Metadata)
		assert.Len(t, result.Metadata.TraceID, 32, "ожидался сгенерированный 32-символьный hex")
	})
}

func TestHandler_SelfRegisters(t *testing.T) {
	// Регистрация происходит в init() при импорте пакета
	h, ok := command.Get(constants.ActVersion)
	require.True(t, ok, "version должен присутствовать в реестре")
	assert.Equal(t, constants.ActVersion, h.Name())

	_, sameType := h.(*Handler)
	assert.True(t, sameType)
}

func TestBuildData_Fallbacks(t *testing.T) {
	cases := []struct {
		name        string
		version     string
		commit      string
		wantVersion string
		wantCommit  string
	}{
		{"ldflags не заданы", "", "", "dev", "unknown"},
		{"задан только commit", "", "f3a81b2", "dev", "f3a81b2"},
		{"задана только версия", "2.1.0", "", "2.1.0", "unknown"},
		{"релизная сборка", "2.1.0", "f3a81b2", "2.1.0", "f3a81b2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := buildData(tc.version, tc.commit)
			assert.Equal(t, tc.wantVersion, data.Version)
			assert.Equal(t, tc.wantCommit, data.Commit)
			assert.Equal(t, runtime.Version(), data.GoVersion)
		})
	}
}

func TestData_WriteText(t *testing.T) {
	data := &Data{Version: "1.2.3", GoVersion: "go1.25.1", Commit: "f3a81b2"}

	var buf strings.Builder
	require.NoError(t, data.writeText(&buf))

	out := buf.String()
	assert.Contains(t, out, "issue2md version 1.2.3")
	assert.Contains(t, out, "Go:     go1.25.1")
	assert.Contains(t, out, "Commit: f3a81b2")
}
