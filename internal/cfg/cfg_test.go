package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, 8501, settings.Port)
				assert.Equal(t, "models/scaler.json", settings.ScalerPath)
				assert.Equal(t, "models/model.json", settings.ModelPath)
				assert.Empty(t, settings.BundlePath)
				assert.False(t, settings.UsesBundle())
				assert.Equal(t, 32, settings.ChartCacheSize)
				assert.Equal(t, 640, settings.ChartWidth)
				assert.Equal(t, 480, settings.ChartHeight)
				assert.Equal(t, 10*time.Second, settings.ReadTimeout)
				assert.Equal(t, "info", settings.LogLevel)
			},
		},
		{
			name: "custom paths and server settings",
			envVars: map[string]string{
				"IRIS_PORT":             "9000",
				"IRIS_SCALER_PATH":      "/srv/iris/scaler.json",
				"IRIS_MODEL_PATH":       "/srv/iris/model.json",
				"IRIS_IMAGE_DIR":        "/srv/iris/img",
				"IRIS_CHART_CACHE_SIZE": "8",
				"IRIS_WRITE_TIMEOUT":    "30s",
				"LOG_LEVEL":             "debug",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, 9000, settings.Port)
				assert.Equal(t, "/srv/iris/scaler.json", settings.ScalerPath)
				assert.Equal(t, "/srv/iris/model.json", settings.ModelPath)
				assert.Equal(t, "/srv/iris/img", settings.ImageDir)
				assert.Equal(t, 8, settings.ChartCacheSize)
				assert.Equal(t, 30*time.Second, settings.WriteTimeout)
				assert.Equal(t, "debug", settings.LogLevel)
			},
		},
		{
			name: "bundle path",
			envVars: map[string]string{
				"IRIS_BUNDLE_PATH": "models/iris.bundle",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.True(t, settings.UsesBundle())
				assert.Equal(t, "models/iris.bundle", settings.BundlePath)
			},
		},
		{
			name:    "port out of range",
			envVars: map[string]string{"IRIS_PORT": "80"},
			wantErr: true,
		},
		{
			name:    "chart too small",
			envVars: map[string]string{"IRIS_CHART_WIDTH": "50"},
			wantErr: true,
		},
		{
			name:    "bad log level",
			envVars: map[string]string{"LOG_LEVEL": "chatty"},
			wantErr: true,
		},
		{
			name:    "malformed port",
			envVars: map[string]string{"IRIS_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "malformed timeout",
			envVars: map[string]string{"IRIS_READ_TIMEOUT": "10 seconds"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearTestEnv(t)

	configContent := `
server:
  port: 8600
  readTimeout: 5s
  writeTimeout: 15s
artifacts:
  scalerPath: artifacts/scaler.json
  modelPath: artifacts/model.json
dashboard:
  chartCacheSize: 16
  chartWidth: 800
  chartHeight: 600
logging:
  level: warn
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))
	t.Setenv("CONFIG_FILE", configPath)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8600, settings.Port)
	assert.Equal(t, 5*time.Second, settings.ReadTimeout)
	assert.Equal(t, 15*time.Second, settings.WriteTimeout)
	assert.Equal(t, 10*time.Second, settings.ShutdownTimeout)
	assert.Equal(t, "artifacts/scaler.json", settings.ScalerPath)
	assert.Equal(t, "artifacts/model.json", settings.ModelPath)
	assert.Equal(t, 16, settings.ChartCacheSize)
	assert.Equal(t, 800, settings.ChartWidth)
	assert.Equal(t, 600, settings.ChartHeight)
	assert.Equal(t, "warn", settings.LogLevel)
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	clearTestEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 8600\n"), 0o644))
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("IRIS_PORT", "8700")
	t.Setenv("IRIS_MODEL_PATH", "override.json")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8700, settings.Port)
	assert.Equal(t, "override.json", settings.ModelPath)
	assert.Equal(t, "models/scaler.json", settings.ScalerPath)
}

func TestLoadFromYAML_Errors(t *testing.T) {
	clearTestEnv(t)

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server:\n  readTimeout: 10 seconds\n"), 0o644))
		t.Setenv("CONFIG_FILE", configPath)
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.readTimeout")
	})

	t.Run("malformed env override", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 8600\n"), 0o644))
		t.Setenv("CONFIG_FILE", configPath)
		t.Setenv("IRIS_CHART_WIDTH", "wide")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IRIS_CHART_WIDTH")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server: [port"), 0o644))
		t.Setenv("CONFIG_FILE", configPath)
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestSetupLogging_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "iris.log")
	closer := SetupLogging(Settings{LogLevel: "info", LogFile: logPath})
	require.NotNil(t, closer)
	require.NoError(t, closer.Close())
}

func TestSetupLogging_ConsoleOnly(t *testing.T) {
	closer := SetupLogging(Settings{LogLevel: "warn"})
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())
	assert.NoError(t, closer.Close())
}

// clearTestEnv clears potentially conflicting environment variables
func clearTestEnv(t *testing.T) {
	envVars := []string{
		"CONFIG_FILE", "IRIS_PORT", "IRIS_SCALER_PATH", "IRIS_MODEL_PATH", "IRIS_BUNDLE_PATH",
		"IRIS_IMAGE_DIR", "IRIS_CHART_CACHE_SIZE", "IRIS_CHART_WIDTH", "IRIS_CHART_HEIGHT",
		"IRIS_READ_TIMEOUT", "IRIS_WRITE_TIMEOUT", "IRIS_SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FILE",
	}

	for _, env := range envVars {
		if val := os.Getenv(env); val != "" {
			t.Setenv(env, "")
		}
	}
}
