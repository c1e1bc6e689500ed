// Package badge renders flat shields-style SVG status badges, used for the
// embeddable "users online" indicator.
package badge

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Badge colors follow the shields.io palette.
const (
	ColorGreen  = "#4c1"
	ColorYellow = "#dfb317"
	ColorRed    = "#e05d44"
	ColorGray   = "#9f9f9f"
)

const (
	badgeHeight   = 20
	fontSize      = 11
	sidePadding   = 6.0
	textBaseline  = 14
	shadowOffset  = 1
	activeWarnMin = 0.1
)

// ColorForCounts picks the badge color for the given presence counts:
// red when nobody is online, yellow when fewer than a tenth of the team is,
// green otherwise. Unknown totals render gray.
func ColorForCounts(active, total int) string {
	if total <= 0 {
		return ColorGray
	}
	if active <= 0 {
		return ColorRed
	}
	if float64(active)/float64(total) < activeWarnMin {
		return ColorYellow
	}
	return ColorGreen
}

// Render produces the SVG bytes for a two-section badge: subject on a dark
// left section, status on a colored right section.
func Render(subject, status, color string) []byte {
	leftWidth := textWidth(subject) + 2*sidePadding
	rightWidth := textWidth(status) + 2*sidePadding
	totalWidth := leftWidth + rightWidth

	escapedSubject := escapeText(subject)
	escapedStatus := escapeText(status)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%d">`, totalWidth, badgeHeight)
	buf.WriteString(`<linearGradient id="smooth" x2="0" y2="100%">` +
		`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/>` +
		`<stop offset="1" stop-opacity=".1"/>` +
		`</linearGradient>`)
	fmt.Fprintf(&buf, `<mask id="round"><rect width="%.0f" height="%d" rx="3" fill="#fff"/></mask>`, totalWidth, badgeHeight)
	fmt.Fprintf(&buf, `<g mask="url(#round)">`)
	fmt.Fprintf(&buf, `<path fill="#555" d="M0 0h%.0fv%dH0z"/>`, leftWidth, badgeHeight)
	fmt.Fprintf(&buf, `<path fill="%s" d="M%.0f 0h%.0fv%dH%.0fz"/>`, color, leftWidth, rightWidth, badgeHeight, leftWidth)
	fmt.Fprintf(&buf, `<path fill="url(#smooth)" d="M0 0h%.0fv%dH0z"/>`, totalWidth, badgeHeight)
	buf.WriteString(`</g>`)
	fmt.Fprintf(&buf, `<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,sans-serif" font-size="%d">`, fontSize)
	writeText(&buf, leftWidth/2, escapedSubject)
	writeText(&buf, leftWidth+rightWidth/2, escapedStatus)
	buf.WriteString(`</g></svg>`)
	return buf.Bytes()
}

func writeText(buf *bytes.Buffer, x float64, text string) {
	fmt.Fprintf(buf, `<text x="%.1f" y="%d" fill="#010101" fill-opacity=".3">%s</text>`, x, textBaseline+shadowOffset, text)
	fmt.Fprintf(buf, `<text x="%.1f" y="%d">%s</text>`, x, textBaseline, text)
}

// textWidth approximates the rendered width of text in 11px Verdana.
// A character class table is close enough for badge sizing; exact metrics
// would need font rasterization.
func textWidth(text string) float64 {
	width := 0.0
	for _, r := range text {
		width += charWidth(r)
	}
	return width
}

func charWidth(r rune) float64 {
	switch {
	case r == 'i' || r == 'j' || r == 'l' || r == '.' || r == ',' || r == '\'' || r == '|':
		return 3.5
	case r == 'f' || r == 't' || r == 'r' || r == 'I' || r == '/' || r == '(' || r == ')' || r == '[' || r == ']' || r == ' ':
		return 4.5
	case r >= '0' && r <= '9':
		return 7
	case r == 'm' || r == 'w' || r == 'M' || r == 'W' || r == '@':
		return 10.5
	case r >= 'A' && r <= 'Z':
		return 8
	case r > 0x7f:
		return 9
	default:
		return 7
	}
}

func escapeText(text string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}
