package logs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/talgya/cardcity/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestHelpersUseInstalledLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	prev := L()
	Use(zap.New(core))
	t.Cleanup(func() { Use(prev) })

	Info("day started", zap.Int("day", 3))
	Debug("intent", zap.String("type", "roll"))

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "day started", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["day"])
}

func TestInitWritesFileAndSetLevel(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Use(prev); SetLevel("info") })

	path := filepath.Join(t.TempDir(), "citysim.log")
	require.NoError(t, Init("test", config.LogConfig{Level: "warn", File: path}))
	assert.Equal(t, zapcore.WarnLevel, Level())

	Info("dropped")
	Warn("kept")
	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, Level())
	Debug("now kept")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
	assert.Contains(t, string(data), "now kept")
}
