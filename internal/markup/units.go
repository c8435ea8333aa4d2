package markup

import (
	"html"
	"regexp"

	"github.com/rivo/uniseg"
)

var charRef = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// Unit is one caret step inside a text run: a grapheme cluster, or a whole
// character reference such as "&amp;".
type Unit struct {
	Span
	Text  string // Decoded text
	Width int    // Monospace cell width
}

// Units splits src[run.Start:run.End] into caret units.
func Units(src string, run Span) []Unit {
	var out []Unit
	rest := src[run.Start:run.End]
	pos := run.Start
	state := -1
	for len(rest) > 0 {
		if ref := charRef.FindString(rest); ref != "" {
			text := html.UnescapeString(ref)
			out = append(out, Unit{Span: Span{pos, pos + len(ref)}, Text: text, Width: uniseg.StringWidth(text)})
			pos += len(ref)
			rest = rest[len(ref):]
			state = -1
			continue
		}
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out = append(out, Unit{Span: Span{pos, pos + len(cluster)}, Text: cluster, Width: width})
		pos += len(cluster)
	}
	return out
}
