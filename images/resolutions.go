package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AspectRatio represents a camera aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Defines the aspect ratios of the capture resolutions below.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
)

// ResolutionAlias is the short name a capture resolution can be configured by.
type ResolutionAlias string

// Capture resolutions commonly offered by webcams and network cameras.
const (
	ResolutionAliasVGA   ResolutionAlias = "vga"
	ResolutionAlias360p  ResolutionAlias = "360p"
	ResolutionAlias480p  ResolutionAlias = "480p"
	ResolutionAlias720p  ResolutionAlias = "720p"
	ResolutionAlias1MP   ResolutionAlias = "1mp"
	ResolutionAlias1080p ResolutionAlias = "1080p"
	ResolutionAlias1440p ResolutionAlias = "1440p"
	ResolutionAlias4K    ResolutionAlias = "4k"
)

// Pixels describes the exact dimensions of a resolution.
type Pixels struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution describes a capture resolution.
type Resolution struct {
	Name        string      `json:"name" yaml:"name"`
	AspectRatio AspectRatio `json:"aspectRatio" yaml:"aspectRatio"`
	Pixels      Pixels      `json:"pixels" yaml:"pixels"`
}

// Resolutions holds the named capture resolutions keyed by alias.
var Resolutions = map[ResolutionAlias]Resolution{
	ResolutionAliasVGA:   {Name: "VGA", AspectRatio: AspectRatio43, Pixels: Pixels{Width: 640, Height: 480}},
	ResolutionAlias360p:  {Name: "nHD", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 640, Height: 360}},
	ResolutionAlias480p:  {Name: "FWVGA", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 854, Height: 480}},
	ResolutionAlias720p:  {Name: "HD 720p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 1280, Height: 720}},
	ResolutionAlias1MP:   {Name: "1MP (5:4)", AspectRatio: AspectRatio54, Pixels: Pixels{Width: 1280, Height: 1024}},
	ResolutionAlias1080p: {Name: "Full HD 1080p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 1920, Height: 1080}},
	ResolutionAlias1440p: {Name: "QHD 1440p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 2560, Height: 1440}},
	ResolutionAlias4K:    {Name: "4K UHD", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 3840, Height: 2160}},
}

// GetMegaPixels calculates the megapixel value rounded to two decimal places
// (e.g., 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

// ParseResolution parses a configured capture resolution. Both aliases ("720p", "4K")
// and explicit dimensions ("1280x720") are accepted.
//
// Arguments:
//   - s: The alias or WIDTHxHEIGHT string.
//
// Returns:
//   - Resolution: The parsed resolution.
//   - error: An error if s is neither a known alias nor valid dimensions.
//
// @example
// res, err := images.ParseResolution("1920x1080")
func ParseResolution(s string) (Resolution, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if res, ok := Resolutions[ResolutionAlias(key)]; ok {
		return res, nil
	}

	w, h, ok := strings.Cut(key, "x")
	if !ok {
		return Resolution{}, errors.Errorf("unknown resolution %q (want one of %s or WIDTHxHEIGHT)", s, strings.Join(aliases(), ", "))
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "resolution %q width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "resolution %q height", s)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, errors.Errorf("resolution %q must have positive dimensions", s)
	}

	return Resolution{
		Name:        fmt.Sprintf("%dx%d", width, height),
		AspectRatio: aspectRatio(width, height),
		Pixels:      Pixels{Width: width, Height: height},
	}, nil
}

func aspectRatio(w, h int) AspectRatio {
	a, b := w, h
	for b != 0 {
		a, b = b, a%b
	}
	return AspectRatio(fmt.Sprintf("%d:%d", w/a, h/a))
}

func aliases() []string {
	out := make([]string, 0, len(Resolutions))
	for k := range Resolutions {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
