package scenes

import (
	"reflect"
	"testing"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

func TestFormat_NormalizesLines(t *testing.T) {
	in := []types.Scene{{
		Index: 0,
		Start: 0,
		End:   3,
		Lines: []string{"  so   anyway ,  here we are", "it  works !"},
	}}
	got := Format(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(got))
	}
	want := []string{"So anyway, here we are", "it works!"}
	if !reflect.DeepEqual(got[0].Lines, want) {
		t.Fatalf("lines = %q, want %q", got[0].Lines, want)
	}
}

func TestFormat_DropsSoundTags(t *testing.T) {
	in := []types.Scene{
		{Index: 0, Start: 0, End: 2, Lines: []string{"[Music]"}},
		{Index: 1, Start: 2, End: 4, Lines: []string{"hello [applause] there"}},
	}
	got := Format(in)
	if len(got) != 1 {
		t.Fatalf("expected tag-only scene dropped, got %d scenes", len(got))
	}
	if got[0].Index != 0 {
		t.Fatalf("expected reindexed scene, got index %d", got[0].Index)
	}
	if got[0].Lines[0] != "Hello there" {
		t.Fatalf("line = %q, want %q", got[0].Lines[0], "Hello there")
	}
}

func TestFormat_KeepsTiming(t *testing.T) {
	in := []types.Scene{{Index: 0, Start: 1.25, End: 4.75, Lines: []string{"text"}}}
	got := Format(in)
	if got[0].Start != 1.25 || got[0].End != 4.75 {
		t.Fatalf("format changed timing: %+v", got[0])
	}
}
