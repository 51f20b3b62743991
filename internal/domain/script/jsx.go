package script

import (
	"fmt"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// RenderJSX serializes an AnimationScript into an After Effects script:
// one comp, a caption data array, and a layer-building loop applying the
// resolved style, anchor position, and opacity keyframes.
func RenderJSX(s types.AnimationScript) string {
	var b strings.Builder

	b.WriteString("// Auto-generated After Effects caption script\n\n")
	fmt.Fprintf(&b, "var comp = app.project.items.addComp(%q, %d, %d, 1, %.3f, %d);\n\n",
		s.CompName, s.Width, s.Height, s.Duration+2, s.FPS)

	b.WriteString("var captions = [\n")
	for i, u := range s.Units {
		fmt.Fprintf(&b, "    {start: %.3f, end: %.3f, text: \"%s\"}", u.StartTime, u.OutTime, sanitizeJSX(u.Text))
		if i < len(s.Units)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("];\n\n")

	fmt.Fprintf(&b, "var fadeKeys = [\n")
	for i, u := range s.Units {
		b.WriteString("    [")
		for j, k := range u.Keyframes {
			fmt.Fprintf(&b, "[%.3f, %.0f]", k.Time, k.Opacity*100)
			if j < len(u.Keyframes)-1 {
				b.WriteString(", ")
			}
		}
		b.WriteString("]")
		if i < len(s.Units)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("];\n\n")

	anchorX := float64(s.Width) * s.Anchor.XPercent / 100
	anchorY := float64(s.Height) * s.Anchor.YPercent / 100

	b.WriteString("for (var i = 0; i < captions.length; i++) {\n")
	b.WriteString("    var entry = captions[i];\n")
	b.WriteString("    var textLayer = comp.layers.addText(entry.text);\n")
	b.WriteString("    textLayer.startTime = entry.start;\n")
	b.WriteString("    textLayer.inPoint = entry.start;\n")
	b.WriteString("    textLayer.outPoint = entry.end;\n\n")
	b.WriteString("    var textProp = textLayer.property(\"Source Text\");\n")
	b.WriteString("    var textDocument = textProp.value;\n")
	fmt.Fprintf(&b, "    textDocument.fontSize = %d;\n", s.Style.FontSize)
	fmt.Fprintf(&b, "    textDocument.font = %q;\n", s.Style.Font)
	fmt.Fprintf(&b, "    textDocument.fillColor = [%s];\n", fmtColor(s.Style.FillColor))
	if s.Style.StrokeWidth > 0 {
		b.WriteString("    textDocument.applyStroke = true;\n")
		b.WriteString("    textDocument.strokeOverFill = false;\n")
		fmt.Fprintf(&b, "    textDocument.strokeColor = [%s];\n", fmtColor(s.Style.StrokeColor))
		fmt.Fprintf(&b, "    textDocument.strokeWidth = %d;\n", s.Style.StrokeWidth)
	}
	b.WriteString("    textDocument.justification = ParagraphJustification.CENTER_JUSTIFY;\n")
	b.WriteString("    textProp.setValue(textDocument);\n\n")
	b.WriteString("    var position = textLayer.property(\"Transform\").property(\"Position\");\n")
	fmt.Fprintf(&b, "    position.setValue([%.1f, %.1f]);\n\n", anchorX, anchorY)
	b.WriteString("    var keys = fadeKeys[i];\n")
	b.WriteString("    if (keys.length > 0) {\n")
	b.WriteString("        var opacity = textLayer.property(\"Transform\").property(\"Opacity\");\n")
	b.WriteString("        for (var k = 0; k < keys.length; k++) {\n")
	b.WriteString("            opacity.setValueAtTime(keys[k][0], keys[k][1]);\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "alert(\"Caption import complete! \" + captions.length + \" text layers created.\");\n")

	return b.String()
}

func fmtColor(c [3]float64) string {
	return fmt.Sprintf("%.3f, %.3f, %.3f", c[0], c[1], c[2])
}

func sanitizeJSX(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\r")
	return s
}
