package script

import (
	"strings"
	"testing"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

func TestRenderJSX(t *testing.T) {
	in := []types.Scene{
		{Index: 0, Start: 0, End: 2.5, Lines: []string{`he said "hi"`, "second line"}},
		{Index: 1, Start: 3, End: 5, Lines: []string{"bye"}},
	}
	s, err := Assemble(in, DefaultAssembleConfig())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	jsx := RenderJSX(s)

	if !strings.Contains(jsx, `addComp("Captions", 1920, 1080, 1, 7.000, 30)`) {
		t.Fatalf("comp line missing or wrong:\n%s", jsx)
	}
	if !strings.Contains(jsx, `he said \"hi\"`) {
		t.Fatalf("quotes not escaped:\n%s", jsx)
	}
	if !strings.Contains(jsx, `\r`) {
		t.Fatalf("newline between lines not encoded:\n%s", jsx)
	}
	if got := strings.Count(jsx, "{start:"); got != 2 {
		t.Fatalf("expected 2 caption entries, got %d", got)
	}
	if !strings.Contains(jsx, "setValueAtTime") {
		t.Fatalf("fade keyframe application missing")
	}
	// bottom preset: y = 1080 * 90% = 972
	if !strings.Contains(jsx, "position.setValue([960.0, 972.0])") {
		t.Fatalf("anchor position not applied:\n%s", jsx)
	}
}

func TestRenderJSX_NoStrokeForMinimal(t *testing.T) {
	cfg := DefaultAssembleConfig()
	cfg.StylePreset = "minimal"
	s, err := Assemble([]types.Scene{{Start: 0, End: 1, Lines: []string{"x"}}}, cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(RenderJSX(s), "applyStroke") {
		t.Fatalf("minimal preset should not emit stroke settings")
	}
}

func TestRenderSRT(t *testing.T) {
	in := []types.Scene{
		{Index: 0, Start: 0, End: 2.5, Lines: []string{"first", "caption"}},
		{Index: 1, Start: 61.25, End: 65, Lines: []string{"second"}},
	}
	got := RenderSRT(in)
	want := "1\n00:00:00,000 --> 00:00:02,500\nfirst\ncaption\n\n2\n00:01:01,250 --> 00:01:05,000\nsecond\n"
	if got != want {
		t.Fatalf("srt output:\n%q\nwant:\n%q", got, want)
	}
}
