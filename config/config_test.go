package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_StyleMatchesAnnotateDefaults(t *testing.T) {
	style, err := Default().Style.ToStyle()
	require.NoError(t, err)

	want := annotate.DefaultStyle().Resolve(600)
	got := style.Resolve(600)
	assert.Equal(t, want.TextSize, got.TextSize)
	assert.Equal(t, want.StrokeWidth, got.StrokeWidth)
	assert.Equal(t, want.ScoreThreshold, got.ScoreThreshold)
	assertSameColor(t, want.BoxColor, got.BoxColor)
	assertSameColor(t, want.LabelBackground, got.LabelBackground)
	assertSameColor(t, want.TextColor, got.TextColor)
}

func assertSameColor(t *testing.T, want, got color.Color) {
	t.Helper()
	assert.Equal(t, color.NRGBAModel.Convert(want), color.NRGBAModel.Convert(got))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
camera:
  device_id: 1
  resolution: 1080p
model:
  model_path: models/yolov8n.onnx
  relevant_classes: [person, cat]
style:
  score_threshold: 0.5
  box_color: "#00FF00"
server:
  addr: "127.0.0.1:9000"
  format: png
output:
  dir: captures
  format: webp
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Camera.DeviceID)
	assert.Equal(t, "1080p", cfg.Camera.Resolution)
	assert.Equal(t, "models/yolov8n.onnx", cfg.Model.ModelPath)
	assert.Equal(t, []string{"person", "cat"}, cfg.Model.RelevantClasses)
	assert.Equal(t, 640, cfg.Model.InputSize, "unset keys keep defaults")
	assert.Equal(t, 0.5, cfg.Style.ScoreThreshold)
	assert.Equal(t, "#FFFFFF", cfg.Style.TextColor)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "png", cfg.Server.Format)
	assert.Equal(t, "captures", cfg.Output.Dir)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)

	style, err := cfg.Style.ToStyle()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, style.BoxColor)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed yaml", body: "camera: [1, 2"},
		{name: "negative device", body: "camera:\n  device_id: -1\n"},
		{name: "bad resolution", body: "camera:\n  resolution: huge\n"},
		{name: "bad model", body: "model:\n  model_path: m.onnx\n  input_size: 100\n"},
		{name: "bad color", body: "style:\n  box_color: red\n"},
		{name: "threshold above one", body: "style:\n  score_threshold: 2\n"},
		{name: "bad server format", body: "server:\n  format: gif\n"},
		{name: "bad output format", body: "output:\n  format: bmp\n"},
		{name: "bad log level", body: "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.NRGBA
	}{
		{input: "#FF0000", want: color.NRGBA{R: 255, A: 255}},
		{input: "00000096", want: color.NRGBA{A: 150}},
		{input: "#fff", want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{input: " #123456 ", want: color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "#12", "#12345", "#GGGGGG", "#1234567890"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestStyle_EmptyColorsUseDefaults(t *testing.T) {
	style, err := Style{ScoreThreshold: 0.3}.ToStyle()
	require.NoError(t, err)
	assert.Nil(t, style.BoxColor)
	assert.Equal(t, annotate.DefaultBoxColor, style.Resolve(100).BoxColor)
}
