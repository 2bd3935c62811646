package tools

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztkent/opt3001/opt3001"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Backend:        BACKEND_DEVFS,
		Bus:            "/dev/i2c-1",
		Address:        0x44,
		Mode:           MODE_CONTINUOUS,
		ConversionTime: opt3001.OPT3001_CONVERSIONTIME_800MS,
		Samples:        10,
		Interval:       time.Second,
	}, config)
}

func TestLoadConfig(t *testing.T) {
	config, err := loadConfig(envFrom(map[string]string{
		"OPT3001_BACKEND":         "PERIPH",
		"OPT3001_ADDR":            "0x47",
		"OPT3001_MODE":            "single",
		"OPT3001_CONVERSION_TIME": "100ms",
		"OPT3001_SAMPLES":         "3",
		"OPT3001_INTERVAL":        "250ms",
		"OPT3001_TIMEOUT":         "2s",
		"LOG_LEVEL":               "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, BACKEND_PERIPH, config.Backend)
	assert.Empty(t, config.Bus, "periph picks the first bus when none is named")
	assert.Equal(t, opt3001.OPT3001_ADDR_SCL, config.Address)
	assert.Equal(t, MODE_SINGLE, config.Mode)
	assert.Equal(t, opt3001.OPT3001_CONVERSIONTIME_100MS, config.ConversionTime)
	assert.Equal(t, 3, config.Samples)
	assert.Equal(t, 250*time.Millisecond, config.Interval)
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.Equal(t, "debug", config.LogLevel)

	config, err = loadConfig(envFrom(map[string]string{"OPT3001_ADDR": "69"}))
	require.NoError(t, err)
	assert.Equal(t, opt3001.OPT3001_ADDR_VDD, config.Address)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := map[string]string{
		"OPT3001_BACKEND":         "spi",
		"OPT3001_ADDR":            "0x80",
		"OPT3001_MODE":            "burst",
		"OPT3001_CONVERSION_TIME": "400ms",
		"OPT3001_SAMPLES":         "0",
		"OPT3001_INTERVAL":        "soon",
		"OPT3001_TIMEOUT":         "-1s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := loadConfig(envFrom(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestDescribeLightLevel(t *testing.T) {
	tests := []struct {
		lux  float64
		want string
	}{
		{lux: 0, want: "Very dark"},
		{lux: 0.99, want: "Very dark"},
		{lux: 1, want: "Dark"},
		{lux: 49, want: "Dark"},
		{lux: 50, want: "Dim"},
		{lux: 200, want: "Normal indoor"},
		{lux: 500, want: "Bright indoor"},
		{lux: 1000, want: "Very bright"},
		{lux: 10000, want: "Direct sunlight"},
		{lux: 83865.6, want: "Direct sunlight"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeLightLevel(tt.lux), "lux %v", tt.lux)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("verbose"))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opt3001.log")

	logger, closer, err := NewLogger("info", path)
	require.NoError(t, err)
	logger.WithField("lux", 11.28).Info("reading")
	logger.Debug("hidden at info")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"reading"`)
	assert.Contains(t, string(content), `"lux":11.28`)
	assert.NotContains(t, string(content), "hidden at info")
}

func TestNewLoggerBadPath(t *testing.T) {
	_, _, err := NewLogger("info", filepath.Join(t.TempDir(), "missing", "opt3001.log"))
	assert.Error(t, err)
}
