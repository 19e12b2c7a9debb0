package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	log.Debugf("不应输出")
	log.Infof("开始生成: %s", "Assets/Game")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "不应输出")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "开始生成: Assets/Game")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbose: true, Output: &buf})

	log.Debugf("扫描 %s", "Widget.cs")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "扫描 Widget.cs")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Output: &buf})

	log.Infow("生成文件", "classes", 2)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "生成文件", entry["msg"])
	assert.EqualValues(t, 2, entry["classes"])
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.ErrorLevel))
	assert.NotPanics(t, func() {
		log.Infof("丢弃 %d", 1)
		_ = log.Sync()
	})
}
