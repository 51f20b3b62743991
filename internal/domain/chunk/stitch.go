package chunk

import (
	"sort"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// StitchConfig tunes boundary deduplication and coverage checks.
type StitchConfig struct {
	// OverlapSeconds is the planner overlap; the dedup pass only inspects
	// segments inside each adjacent pair's overlap region.
	OverlapSeconds float64
	// OverlapTolerance is the residual overlap two stitched neighbors may
	// keep before both are truncated at the midpoint.
	OverlapTolerance float64
	// ToleratedMissing is how many windows may be absent from the results
	// before stitching fails with a CoverageError.
	ToleratedMissing int
}

// DefaultStitchConfig matches the default window plan.
func DefaultStitchConfig() StitchConfig {
	return StitchConfig{
		OverlapSeconds:   DefaultOverlapSeconds,
		OverlapTolerance: 0.2,
		ToleratedMissing: 0,
	}
}

type stitchSeg struct {
	types.Segment
	win int
}

// Stitch merges per-window segment lists into one global transcript:
// window-local times are shifted by each window's start, segments are
// time-sorted, duplicate text in overlap regions is collapsed, and any
// residual neighbor overlap beyond tolerance is truncated at the midpoint
// so no speech content is dropped. Stitching is a pure function: the same
// inputs always yield the same transcript.
func Stitch(results map[int][]types.Segment, windows []Window, cfg StitchConfig) (types.Transcript, error) {
	missing := missingWindows(results, windows)
	if len(missing) > cfg.ToleratedMissing {
		return types.Transcript{}, &CoverageError{Expected: len(windows), Missing: missing}
	}

	segs := globalize(results, windows)
	sortSegs(segs)

	for i := 0; i+1 < len(windows); i++ {
		left, right := windows[i], windows[i+1]
		if _, ok := results[left.Index]; !ok {
			continue
		}
		if _, ok := results[right.Index]; !ok {
			continue
		}
		segs = dedupeRegion(segs, left.Index, right.Index, right.Start, left.End)
	}

	sortSegs(segs)
	truncateResidualOverlaps(segs, cfg.OverlapTolerance)

	out := make([]types.Segment, 0, len(segs))
	for _, s := range segs {
		if s.End > s.Start && strings.TrimSpace(s.Text) != "" {
			out = append(out, s.Segment)
		}
	}
	return types.Transcript{Segments: out}, nil
}

func missingWindows(results map[int][]types.Segment, windows []Window) []int {
	var missing []int
	for _, w := range windows {
		if _, ok := results[w.Index]; !ok {
			missing = append(missing, w.Index)
		}
	}
	sort.Ints(missing)
	return missing
}

func globalize(results map[int][]types.Segment, windows []Window) []stitchSeg {
	var out []stitchSeg
	for _, w := range windows {
		for _, s := range results[w.Index] {
			if s.End <= s.Start || strings.TrimSpace(s.Text) == "" {
				continue
			}
			out = append(out, stitchSeg{
				Segment: types.Segment{
					Start: s.Start + w.Start,
					End:   s.End + w.Start,
					Text:  strings.TrimSpace(s.Text),
				},
				win: w.Index,
			})
		}
	}
	return out
}

func sortSegs(segs []stitchSeg) {
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].Start != segs[j].Start {
			return segs[i].Start < segs[j].Start
		}
		return segs[i].win < segs[j].win
	})
}

// dedupeRegion collapses duplicated text between two adjacent windows'
// segments inside the overlap region [regionStart, regionEnd]. The later
// window's text wins (it had more trailing context) but the merged segment
// keeps the earlier start. Ambiguous partial matches prefer the longer text.
func dedupeRegion(segs []stitchSeg, leftWin, rightWin int, regionStart, regionEnd float64) []stitchSeg {
	for li := 0; li < len(segs); li++ {
		ls := segs[li]
		if ls.win != leftWin || !intersects(ls.Segment, regionStart, regionEnd) {
			continue
		}
		for ri := 0; ri < len(segs); ri++ {
			rs := segs[ri]
			if rs.win != rightWin || !intersects(rs.Segment, regionStart, regionEnd) {
				continue
			}
			if ls.End <= rs.Start || rs.End <= ls.Start {
				continue
			}
			if !textMatches(ls.Text, rs.Text) {
				continue
			}

			merged := rs
			if ls.Start < merged.Start {
				merged.Start = ls.Start
			}
			if merged.End < ls.End {
				merged.End = ls.End
			}
			// Exact or containing match keeps the later window's text;
			// partial matches keep whichever side carries more context.
			if len(normalizeText(ls.Text)) > len(normalizeText(rs.Text)) {
				merged.Text = ls.Text
			}
			segs[ri] = merged
			segs = append(segs[:li], segs[li+1:]...)
			li--
			break
		}
	}
	return segs
}

func intersects(s types.Segment, start, end float64) bool {
	return s.End > start && s.Start < end
}

// textMatches reports whether two spans carry the same speech. Matching is
// conservative on purpose: normalized equality, or one side being a
// prefix/suffix of the other. Fuzzy edit-distance matching is avoided so
// stitching never collapses genuinely distinct speech.
func textMatches(a, b string) bool {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na) ||
		strings.HasSuffix(na, nb) || strings.HasSuffix(nb, na)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// truncateResidualOverlaps clamps neighbors that still overlap beyond
// tolerance to the midpoint of their overlap. Truncation keeps both
// segments so no speech content is lost. A segment fully nested inside
// its predecessor is left untouched: any cut would invert one span and
// delete its text.
func truncateResidualOverlaps(segs []stitchSeg, tolerance float64) {
	for i := 0; i+1 < len(segs); i++ {
		prev, next := &segs[i], &segs[i+1]
		overlap := prev.End - next.Start
		if overlap <= tolerance {
			continue
		}
		if next.End <= prev.End {
			continue
		}
		mid := (next.Start + prev.End) / 2
		prev.End = mid
		next.Start = mid
	}
}
