package script

import (
	"fmt"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// AssembleConfig selects presentation presets and fade behavior.
type AssembleConfig struct {
	CompName string
	Width    int
	Height   int
	FPS      int

	StylePreset    string
	PositionPreset string

	FadeEnabled    bool
	FadeInSeconds  float64
	FadeOutSeconds float64
}

// DefaultAssembleConfig mirrors the compositing defaults.
func DefaultAssembleConfig() AssembleConfig {
	return AssembleConfig{
		CompName:       "Captions",
		Width:          1920,
		Height:         1080,
		FPS:            30,
		StylePreset:    "classic",
		PositionPreset: "bottom",
		FadeEnabled:    true,
		FadeInSeconds:  0.25,
		FadeOutSeconds: 0.25,
	}
}

var stylePresets = map[string]types.Style{
	"classic": {
		Font:        "Arial-BoldMT",
		FontSize:    48,
		FillColor:   [3]float64{1, 1, 1},
		StrokeColor: [3]float64{0, 0, 0},
		StrokeWidth: 3,
	},
	"bold": {
		Font:        "Impact",
		FontSize:    64,
		FillColor:   [3]float64{1, 1, 1},
		StrokeColor: [3]float64{0, 0, 0},
		StrokeWidth: 5,
	},
	"minimal": {
		Font:        "Helvetica",
		FontSize:    40,
		FillColor:   [3]float64{0.95, 0.95, 0.95},
		StrokeColor: [3]float64{0, 0, 0},
		StrokeWidth: 0,
	},
}

var positionPresets = map[string]types.Anchor{
	"bottom": {XPercent: 50, YPercent: 90},
	"center": {XPercent: 50, YPercent: 50},
	"top":    {XPercent: 50, YPercent: 10},
}

// ResolveStyle maps a preset name to its font/size/color bundle.
func ResolveStyle(name string) (types.Style, error) {
	s, ok := stylePresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.Style{}, fmt.Errorf("unknown style preset %q", name)
	}
	return s, nil
}

// ResolveAnchor maps a preset name to a normalized (x%, y%) anchor.
func ResolveAnchor(name string) (types.Anchor, error) {
	a, ok := positionPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.Anchor{}, fmt.Errorf("unknown position preset %q", name)
	}
	return a, nil
}

// Assemble converts scenes into a structured animation script: one unit per
// scene with start/out times and, when fades are enabled, opacity keyframes
// at start, start+fadeIn, end-fadeOut, end. Fade windows are clamped so
// neither exceeds half the scene duration. Times stay float seconds; no
// rounding happens here, and no I/O.
func Assemble(in []types.Scene, cfg AssembleConfig) (types.AnimationScript, error) {
	style, err := ResolveStyle(cfg.StylePreset)
	if err != nil {
		return types.AnimationScript{}, err
	}
	anchor, err := ResolveAnchor(cfg.PositionPreset)
	if err != nil {
		return types.AnimationScript{}, err
	}

	script := types.AnimationScript{
		CompName: cfg.CompName,
		Width:    cfg.Width,
		Height:   cfg.Height,
		FPS:      cfg.FPS,
		Style:    style,
		Anchor:   anchor,
		Units:    make([]types.Unit, 0, len(in)),
	}

	for _, sc := range in {
		u := types.Unit{
			Index:     sc.Index,
			StartTime: sc.Start,
			OutTime:   sc.End,
			Text:      strings.Join(sc.Lines, "\n"),
			Lines:     sc.Lines,
		}
		if cfg.FadeEnabled {
			u.Keyframes = fadeKeyframes(sc, cfg.FadeInSeconds, cfg.FadeOutSeconds)
		}
		script.Units = append(script.Units, u)
		if sc.End > script.Duration {
			script.Duration = sc.End
		}
	}
	return script, nil
}

func fadeKeyframes(sc types.Scene, fadeIn, fadeOut float64) []types.Keyframe {
	half := sc.Duration() / 2
	if fadeIn > half {
		fadeIn = half
	}
	if fadeOut > half {
		fadeOut = half
	}
	return []types.Keyframe{
		{Time: sc.Start, Opacity: 0},
		{Time: sc.Start + fadeIn, Opacity: 1},
		{Time: sc.End - fadeOut, Opacity: 1},
		{Time: sc.End, Opacity: 0},
	}
}
