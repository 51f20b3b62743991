package types

// Segment is one recognized span of speech. Times are in seconds.
// The speech engine emits window-local times; the chunk engine converts
// them to global times before anything downstream sees them.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the span length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Transcript is a globally time-ordered, deduplicated segment sequence.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// Scene is one caption-display unit assembled from consecutive segments.
// Lines are already reflowed to the configured width.
type Scene struct {
	Index int      `json:"index"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Lines []string `json:"lines"`
}

// Duration returns the scene length in seconds.
func (s Scene) Duration() float64 { return s.End - s.Start }

// Keyframe is one opacity key on a presentation unit's timeline.
// Opacity is in [0,1]; Time is in global seconds.
type Keyframe struct {
	Time    float64 `json:"time"`
	Opacity float64 `json:"opacity"`
}

// Style is a resolved font/size/color bundle. Colors are RGB floats in
// [0,1], matching what the compositing tool expects.
type Style struct {
	Font        string     `json:"font"`
	FontSize    int        `json:"fontSize"`
	FillColor   [3]float64 `json:"fillColor"`
	StrokeColor [3]float64 `json:"strokeColor"`
	StrokeWidth int        `json:"strokeWidth"`
}

// Anchor is a normalized position, percentages of comp width/height.
type Anchor struct {
	XPercent float64 `json:"xPercent"`
	YPercent float64 `json:"yPercent"`
}

// Unit is one scene rendered into presentation instructions.
type Unit struct {
	Index     int        `json:"index"`
	StartTime float64    `json:"startTime"`
	OutTime   float64    `json:"outTime"`
	Text      string     `json:"text"`
	Lines     []string   `json:"lines"`
	Keyframes []Keyframe `json:"keyframes,omitempty"`
}

// AnimationScript is the full structured output consumed by a serializer.
type AnimationScript struct {
	CompName string  `json:"compName"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      int     `json:"fps"`
	Duration float64 `json:"duration"`
	Style    Style   `json:"style"`
	Anchor   Anchor  `json:"anchor"`
	Units    []Unit  `json:"units"`
}
