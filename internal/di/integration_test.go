package di

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/issue2md/internal/config"
	"github.com/Kargones/issue2md/internal/pkg/output"
)

func TestInitializeApp_WiresAllDependencies(t *testing.T) {
	cfg := &config.Config{
		Command:       "sync",
		GiteaURL:      "https://gitea.example.com",
		AccessToken:   "test-token",
		Owner:         "dev",
		Repo:          "tracker",
		LoggingConfig: &config.LoggingConfig{Level: "info", Format: "json"},
	}

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.Same(t, cfg, app.Config, "Config прокидывается как есть, без копии")
	require.NotNil(t, app.Logger)
	require.NotNil(t, app.OutputWriter)
	require.NotNil(t, app.GiteaAPI)
	require.NotNil(t, app.MetricsCollector)
	require.NotNil(t, app.TracerShutdown)
	assert.Regexp(t, `^[0-9a-f]{32}$`, app.TraceID, "TraceID генерируется при инициализации")

	// Собранный логгер работает, включая scoped-вариант с trace_id
	assert.NotPanics(t, func() {
		app.Logger.Info("Синхронизация началась", "repository", "dev/tracker")
		app.Logger.With("trace_id", app.TraceID).Debug("Scoped-логгер собран")
	})
}

func TestInitializeApp_OutputWriterRendersResult(t *testing.T) {
	app, err := InitializeApp(&config.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.OutputWriter.Write(&buf, &output.Result{
		Status:   "success",
		Command:  "sync",
		Data:     map[string]any{"issues_added": 3, "issues_updated": 1},
		Metadata: &output.Metadata{TraceID: app.TraceID},
	}))

	assert.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "sync")
}

func TestInitializeApp_EachAppGetsOwnTraceID(t *testing.T) {
	cfg := &config.Config{}
	const count = 8

	seen := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		app, err := InitializeApp(cfg)
		require.NoError(t, err)
		require.NotNil(t, app.Logger)
		require.NotNil(t, app.OutputWriter)
		seen[app.TraceID] = true
	}

	assert.Len(t, seen, count, "повторные инициализации не должны делить trace_id")
}

func TestInitializeApp_ConfigVariants(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.Config
	}{
		// nil Config допустим: провайдеры подставляют дефолты
		{name: "nil config", cfg: nil},
		{name: "пустой config", cfg: &config.Config{}},
		{
			name: "полный config",
			cfg: &config.Config{
				Command:       "sync",
				GiteaURL:      "https://gitea.example.com",
				AccessToken:   "test-token",
				Owner:         "dev",
				Repo:          "tracker",
				LoggingConfig: &config.LoggingConfig{Level: "warn", Format: "text"},
			},
		},
		{
			name: "только logging",
			cfg: &config.Config{
				LoggingConfig: &config.LoggingConfig{Level: "error", Format: "json"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, err := InitializeApp(tc.cfg)

			require.NoError(t, err)
			require.NotNil(t, app)
			assert.NotNil(t, app.Logger)
			assert.NotNil(t, app.OutputWriter)
			assert.NotEmpty(t, app.TraceID)
		})
	}
}
