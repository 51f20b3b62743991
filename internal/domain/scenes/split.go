package scenes

import (
	"fmt"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// SplitConfig bounds scene duration, silence gaps, and caption line width.
type SplitConfig struct {
	MinSceneSeconds float64
	MaxSceneSeconds float64
	GapThreshold    float64
	MaxLineChars    int
}

// DefaultSplitConfig returns the production caption bounds.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		MinSceneSeconds: 1.0,
		MaxSceneSeconds: 6.0,
		GapThreshold:    2.0,
		MaxLineChars:    42,
	}
}

func (c SplitConfig) validate() error {
	if c.MaxSceneSeconds <= 0 || c.MinSceneSeconds < 0 || c.MinSceneSeconds > c.MaxSceneSeconds {
		return fmt.Errorf("scene duration band [%.2f,%.2f] is invalid", c.MinSceneSeconds, c.MaxSceneSeconds)
	}
	if c.GapThreshold <= 0 {
		return fmt.Errorf("gap threshold must be > 0, got %.2f", c.GapThreshold)
	}
	if c.MaxLineChars <= 0 {
		return fmt.Errorf("max line chars must be > 0, got %d", c.MaxLineChars)
	}
	return nil
}

// Split groups the transcript into bounded caption scenes. A new scene
// starts on a silence gap exceeding GapThreshold or when the next segment
// would push the scene past MaxSceneSeconds. Scenes shorter than
// MinSceneSeconds are merged into a neighbor. Each scene's span is exactly
// the union of its segments, so output scenes are ordered and
// non-overlapping by construction.
func Split(tr types.Transcript, cfg SplitConfig) ([]types.Scene, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	groups := groupSegments(tr.Segments, cfg)
	groups = mergeShortGroups(groups, cfg)

	out := make([]types.Scene, 0, len(groups))
	for i, g := range groups {
		out = append(out, types.Scene{
			Index: i,
			Start: g[0].Start,
			End:   g[len(g)-1].End,
			Lines: reflowLines(joinText(g), cfg.MaxLineChars),
		})
	}
	return out, nil
}

func groupSegments(segs []types.Segment, cfg SplitConfig) [][]types.Segment {
	var groups [][]types.Segment
	var cur []types.Segment
	for _, s := range segs {
		if strings.TrimSpace(s.Text) == "" || s.End <= s.Start {
			continue
		}
		if len(cur) == 0 {
			cur = []types.Segment{s}
			continue
		}
		gap := s.Start - cur[len(cur)-1].End
		wouldRun := s.End - cur[0].Start
		if gap > cfg.GapThreshold || wouldRun > cfg.MaxSceneSeconds {
			groups = append(groups, cur)
			cur = []types.Segment{s}
			continue
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// mergeShortGroups folds scenes below the minimum duration into a
// neighbor: forward by preference, backward for the final scene. Merging
// never crosses a silence gap wider than the threshold.
func mergeShortGroups(groups [][]types.Segment, cfg SplitConfig) [][]types.Segment {
	for i := 0; i < len(groups); i++ {
		g := groups[i]
		dur := g[len(g)-1].End - g[0].Start
		if dur >= cfg.MinSceneSeconds || len(groups) == 1 {
			continue
		}
		if i < len(groups)-1 && gapBetween(g, groups[i+1]) <= cfg.GapThreshold {
			groups[i+1] = append(g, groups[i+1]...)
			groups = append(groups[:i], groups[i+1:]...)
			i--
			continue
		}
		if i > 0 && gapBetween(groups[i-1], g) <= cfg.GapThreshold {
			groups[i-1] = append(groups[i-1], g...)
			groups = append(groups[:i], groups[i+1:]...)
			i--
		}
	}
	return groups
}

func gapBetween(a, b []types.Segment) float64 {
	return b[0].Start - a[len(a)-1].End
}

func joinText(segs []types.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// reflowLines wraps text into lines of at most maxChars runes, breaking only
// at word boundaries. Line lengths are balanced: the wrap keeps the line
// count a plain greedy fill would produce but narrows the fill width until
// the lines even out, instead of packing the first line full.
func reflowLines(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := greedyWrap(words, maxChars)
	want := len(lines)
	if want == 1 {
		return lines
	}

	total := 0
	for _, w := range words {
		total += len([]rune(w))
	}
	total += len(words) - 1 // spaces

	// Shrink the width toward the per-line average until the line count
	// would grow; the narrowest width preserving the count is the most
	// balanced layout.
	for width := (total + want - 1) / want; width < maxChars; width++ {
		cand := greedyWrap(words, width)
		if len(cand) <= want {
			return cand
		}
	}
	return lines
}

func greedyWrap(words []string, maxChars int) []string {
	var lines []string
	cur := ""
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		next := curLen
		if curLen > 0 {
			next++
		}
		next += wl
		if curLen > 0 && next > maxChars {
			lines = append(lines, cur)
			cur, curLen = w, wl
			continue
		}
		if curLen > 0 {
			cur += " "
		}
		cur += w
		curLen = next
	}
	if curLen > 0 {
		lines = append(lines, cur)
	}
	return lines
}
