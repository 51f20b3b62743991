package chunk

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

func twoWindowPlan(t *testing.T) []Window {
	t.Helper()
	ws, err := PlanWindows(50, 30, 2)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return ws
}

func TestStitch_NoDuplicationAtBoundary(t *testing.T) {
	windows := twoWindowPlan(t)
	// Both windows heard "see you tomorrow" inside the [28,30] overlap.
	results := map[int][]types.Segment{
		0: {
			{Start: 0, End: 5, Text: "hello everyone"},
			{Start: 28.2, End: 29.8, Text: "see you tomorrow"},
		},
		1: {
			// Window-local times; window 1 starts at 28.
			{Start: 0.2, End: 1.9, Text: "see you tomorrow"},
			{Start: 2.5, End: 6, Text: "and thanks for listening"},
		},
	}

	tr, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}

	count := 0
	for _, s := range tr.Segments {
		if normalizeText(s.Text) == "see you tomorrow" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("boundary text appears %d times, want 1\nsegments: %+v", count, tr.Segments)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(tr.Segments), tr.Segments)
	}
}

func TestStitch_MergedSegmentKeepsEarlierStart(t *testing.T) {
	windows := twoWindowPlan(t)
	results := map[int][]types.Segment{
		0: {{Start: 28.1, End: 29.9, Text: "closing words"}},
		1: {{Start: 0.5, End: 1.9, Text: "closing words"}},
	}

	tr, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(tr.Segments))
	}
	// Earlier window started at 28.1 global; later at 28.5.
	if got := tr.Segments[0].Start; got != 28.1 {
		t.Fatalf("merged start = %v, want 28.1", got)
	}
}

func TestStitch_PartialMatchPrefersLongerText(t *testing.T) {
	windows := twoWindowPlan(t)
	results := map[int][]types.Segment{
		0: {{Start: 28.0, End: 29.9, Text: "and that is why the answer matters"}},
		1: {{Start: 0.1, End: 1.8, Text: "the answer matters"}},
	}

	tr, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("expected 1 merged segment, got %d: %+v", len(tr.Segments), tr.Segments)
	}
	if !strings.Contains(tr.Segments[0].Text, "that is why") {
		t.Fatalf("expected longer text kept, got %q", tr.Segments[0].Text)
	}
}

func TestStitch_Idempotent(t *testing.T) {
	windows := twoWindowPlan(t)
	results := map[int][]types.Segment{
		0: {
			{Start: 1, End: 6, Text: "first thought"},
			{Start: 28.3, End: 29.7, Text: "bridge phrase"},
		},
		1: {
			{Start: 0.4, End: 1.6, Text: "bridge phrase"},
			{Start: 3, End: 8, Text: "second thought"},
		},
	}

	first, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	second, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch twice: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("stitch not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestStitch_ResidualOverlapTruncatedAtMidpoint(t *testing.T) {
	windows := twoWindowPlan(t)
	// Distinct text overlapping by 1s in global time; beyond the 0.2s
	// tolerance, so both survive truncated at the midpoint 29.0.
	results := map[int][]types.Segment{
		0: {{Start: 27.5, End: 29.5, Text: "one phrase"}},
		1: {{Start: 0.5, End: 3.0, Text: "different phrase"}},
	}

	tr, err := Stitch(results, windows, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("expected both segments kept, got %d", len(tr.Segments))
	}
	if tr.Segments[0].End != 29.0 || tr.Segments[1].Start != 29.0 {
		t.Fatalf("expected midpoint truncation at 29.0, got end=%v start=%v",
			tr.Segments[0].End, tr.Segments[1].Start)
	}
}

func TestStitch_NestedSegmentKeepsBothTexts(t *testing.T) {
	ws, err := PlanWindows(10, 30, 2)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// A short interjection nested inside a longer span from the same
	// window. Neither side may be cut or dropped.
	results := map[int][]types.Segment{
		0: {
			{Start: 0, End: 10, Text: "a long narration covering the whole window"},
			{Start: 1, End: 2, Text: "a short distinct interjection"},
		},
	}

	tr, err := Stitch(results, ws, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("expected both segments kept, got %d: %+v", len(tr.Segments), tr.Segments)
	}
	if tr.Segments[0].End != 10 {
		t.Fatalf("outer segment lost its tail: %+v", tr.Segments[0])
	}
	if tr.Segments[1].Start != 1 || tr.Segments[1].End != 2 {
		t.Fatalf("nested segment changed: %+v", tr.Segments[1])
	}
	if !strings.Contains(tr.Segments[1].Text, "interjection") {
		t.Fatalf("nested text lost: %+v", tr.Segments)
	}
}

func TestStitch_InsufficientCoverage(t *testing.T) {
	ws, err := PlanWindows(140, 30, 2)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(ws) != 5 {
		t.Fatalf("expected 5 windows for this plan, got %d", len(ws))
	}

	results := map[int][]types.Segment{
		0: {{Start: 1, End: 2, Text: "a"}},
		2: {{Start: 1, End: 2, Text: "b"}},
		4: {{Start: 1, End: 2, Text: "c"}},
	}

	cfg := DefaultStitchConfig()
	cfg.ToleratedMissing = 1
	_, err = Stitch(results, ws, cfg)

	var cov *CoverageError
	if !errors.As(err, &cov) {
		t.Fatalf("expected CoverageError, got %v", err)
	}
	if !reflect.DeepEqual(cov.Missing, []int{1, 3}) {
		t.Fatalf("missing = %v, want [1 3]", cov.Missing)
	}
	if cov.Expected != 5 {
		t.Fatalf("expected = %d, want 5", cov.Expected)
	}
}

func TestStitch_ToleratesMissingWithinBudget(t *testing.T) {
	ws, _ := PlanWindows(86, 30, 2)
	results := map[int][]types.Segment{
		0: {{Start: 1, End: 2, Text: "a"}},
		2: {{Start: 1, End: 2, Text: "b"}},
	}
	cfg := DefaultStitchConfig()
	cfg.ToleratedMissing = 1
	tr, err := Stitch(results, ws, cfg)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tr.Segments))
	}
}

func TestStitch_GlobalOrdering(t *testing.T) {
	ws, _ := PlanWindows(86, 30, 2)
	results := map[int][]types.Segment{
		0: {{Start: 5, End: 9, Text: "alpha"}},
		1: {{Start: 10, End: 14, Text: "gamma"}}, // global [38,42]
		2: {{Start: 2, End: 6, Text: "delta"}},   // global [58,62]
	}
	tr, err := Stitch(results, ws, DefaultStitchConfig())
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	for i := 1; i < len(tr.Segments); i++ {
		if tr.Segments[i].Start < tr.Segments[i-1].Start {
			t.Fatalf("segments out of order: %+v", tr.Segments)
		}
	}
	if tr.Segments[1].Start != 38 {
		t.Fatalf("window offset not applied: %+v", tr.Segments[1])
	}
}
