package scenes

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

var (
	// Sound-event tags whisper emits, e.g. "[Music]" or "(applause)".
	reSoundTag   = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	reSpacePunct = regexp.MustCompile(`\s+([,.!?;:])`)
)

// Format normalizes caption text in place of each scene's lines: sound-event
// tags are dropped, whitespace collapsed, stray space before punctuation
// removed, and each scene's first line starts with a capital letter. Scenes
// whose text becomes empty are dropped and the remainder reindexed.
func Format(in []types.Scene) []types.Scene {
	out := make([]types.Scene, 0, len(in))
	for _, sc := range in {
		lines := make([]string, 0, len(sc.Lines))
		for _, l := range sc.Lines {
			if f := formatLine(l); f != "" {
				lines = append(lines, f)
			}
		}
		if len(lines) == 0 {
			continue
		}
		lines[0] = capitalize(lines[0])
		sc.Lines = lines
		sc.Index = len(out)
		out = append(out, sc)
	}
	return out
}

func formatLine(s string) string {
	s = reSoundTag.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	s = reSpacePunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
