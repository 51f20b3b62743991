package script

import (
	"fmt"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// RenderSRT serializes scenes into SubRip text. Times round to millisecond
// precision only here, at the serialization boundary.
func RenderSRT(in []types.Scene) string {
	var b strings.Builder
	for i, sc := range in {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, srtTime(sc.Start), srtTime(sc.End), strings.Join(sc.Lines, "\n"))
		if i < len(in)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func srtTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int(sec*1000 + 0.5)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
