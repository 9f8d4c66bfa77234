// Package config loads the YAML configuration of the snapshot tools.
package config

import (
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/inference"
	"github.com/nvr-ai/go-snapshot/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration.
type Config struct {
	Camera Camera           `json:"camera" yaml:"camera"`
	Model  inference.Config `json:"model" yaml:"model"`
	Style  Style            `json:"style" yaml:"style"`
	Server Server           `json:"server" yaml:"server"`
	Output Output           `json:"output" yaml:"output"`
	Log    Log              `json:"log" yaml:"log"`
}

// Camera selects where frames come from. ImagePath takes precedence over VideoPath,
// which takes precedence over DeviceID.
type Camera struct {
	DeviceID   int    `json:"device_id" yaml:"device_id"`
	VideoPath  string `json:"video_path" yaml:"video_path"`
	ImagePath  string `json:"image_path" yaml:"image_path"`
	Resolution string `json:"resolution" yaml:"resolution"`
}

// Style is the annotation style with colors as hex strings ("#RRGGBB" or "#RRGGBBAA").
type Style struct {
	TextSize        float64 `json:"text_size" yaml:"text_size"`
	StrokeWidth     float64 `json:"stroke_width" yaml:"stroke_width"`
	ScoreThreshold  float64 `json:"score_threshold" yaml:"score_threshold"`
	BoxColor        string  `json:"box_color" yaml:"box_color"`
	LabelBackground string  `json:"label_background" yaml:"label_background"`
	TextColor       string  `json:"text_color" yaml:"text_color"`
}

// Server configures the HTTP display.
type Server struct {
	Addr      string `json:"addr" yaml:"addr"`
	Format    string `json:"format" yaml:"format"`
	Quality   int    `json:"quality" yaml:"quality"`
	MaxWidth  int    `json:"max_width" yaml:"max_width"`
	MaxHeight int    `json:"max_height" yaml:"max_height"`
}

// Output configures where annotated captures are written. An empty Dir disables saving.
type Output struct {
	Dir     string `json:"dir" yaml:"dir"`
	Format  string `json:"format" yaml:"format"`
	Quality int    `json:"quality" yaml:"quality"`
}

// Log configures logging.
type Log struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Camera: Camera{Resolution: string(images.ResolutionAlias720p)},
		Model:  inference.DefaultConfig(),
		Style: Style{
			ScoreThreshold:  annotate.DefaultScoreThreshold,
			BoxColor:        "#FF0000",
			LabelBackground: "#00000096",
			TextColor:       "#FFFFFF",
		},
		Server: Server{
			Addr:    ":8080",
			Format:  string(images.FormatJPEG),
			Quality: images.DefaultQuality,
		},
		Output: Output{
			Format:  string(images.FormatJPEG),
			Quality: images.DefaultQuality,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults and validates the result. Keys missing
// from the file keep their default values.
//
// Arguments:
//   - path: The YAML file.
//
// Returns:
//   - Config: The loaded configuration.
//   - error: An error if the file cannot be read, parsed or is invalid.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks every section. The model section is only checked when a model path
// is set, so configurations that use static detections stay valid.
func (c Config) Validate() error {
	if c.Camera.DeviceID < 0 {
		return errors.Errorf("camera.device_id %d must not be negative", c.Camera.DeviceID)
	}
	if c.Camera.Resolution != "" {
		if _, err := images.ParseResolution(c.Camera.Resolution); err != nil {
			return errors.Wrap(err, "camera.resolution")
		}
	}
	if c.Model.ModelPath != "" {
		if err := c.Model.Validate(); err != nil {
			return errors.Wrap(err, "model")
		}
	}
	if _, err := c.Style.ToStyle(); err != nil {
		return errors.Wrap(err, "style")
	}
	if _, err := images.ParseFormat(c.Server.Format); err != nil {
		return errors.Wrap(err, "server.format")
	}
	if _, err := images.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, "output.format")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// ToStyle parses the colors and returns the annotation style.
func (s Style) ToStyle() (annotate.Style, error) {
	style := annotate.Style{
		TextSize:       s.TextSize,
		StrokeWidth:    s.StrokeWidth,
		ScoreThreshold: s.ScoreThreshold,
	}
	if s.ScoreThreshold < 0 || s.ScoreThreshold > 1 {
		return style, errors.Errorf("score_threshold %v must be within [0, 1]", s.ScoreThreshold)
	}

	var err error
	if style.BoxColor, err = parseOptionalColor(s.BoxColor); err != nil {
		return style, errors.Wrap(err, "box_color")
	}
	if style.LabelBackground, err = parseOptionalColor(s.LabelBackground); err != nil {
		return style, errors.Wrap(err, "label_background")
	}
	if style.TextColor, err = parseOptionalColor(s.TextColor); err != nil {
		return style, errors.Wrap(err, "text_color")
	}
	return style, nil
}

func parseOptionalColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	return ParseHexColor(s)
}

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the "#" is optional) into a
// non-premultiplied color.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, errors.Errorf("color %q must be #RGB, #RRGGBB or #RRGGBBAA", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Errorf("color %q is not hexadecimal", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
