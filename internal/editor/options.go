package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bethropolis/wysiii/internal/logger"
)

// Attributes read from the mirrored input at construction.
const (
	AttrButtons = "data-wysiii-buttons" // JSON array of button names
	AttrColors  = "data-wysiii-colors"  // Comma separated colour values
)

// DefaultPlaceholder is shown when the mirrored input starts empty.
const DefaultPlaceholder = "<p>Start writing here...</p>"

// DefaultButtons is the toolbar when the input carries no button list.
var DefaultButtons = []string{"bold", "italic", "underline"}

// ErrInvalidOptions is returned by New when the button list is malformed.
var ErrInvalidOptions = errors.New("invalid editor options")

// Options is the configuration resolved once at construction.
type Options struct {
	Buttons     []string // Ordered, known button names only
	Colors      []string // Ordered colour values; empty hides the colour select
	Placeholder string
}

// DefaultOptions returns the options used when the input has no attributes.
func DefaultOptions() Options {
	return Options{
		Buttons:     append([]string(nil), DefaultButtons...),
		Placeholder: DefaultPlaceholder,
	}
}

// ParseOptions reads the button and colour attributes of in over base.
// Unknown button names and non-string entries are dropped. A blank button
// attribute counts as absent; any other that is not a JSON array fails with
// ErrInvalidOptions.
func ParseOptions(in Input, base Options) (Options, error) {
	opts := Options{
		Buttons:     knownButtons(base.Buttons),
		Colors:      splitColors(strings.Join(base.Colors, ",")),
		Placeholder: base.Placeholder,
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	if raw, ok := in.Attr(AttrButtons); ok && strings.TrimSpace(raw) != "" {
		if !gjson.Valid(raw) {
			return Options{}, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidOptions, AttrButtons)
		}
		list := gjson.Parse(raw)
		if !list.IsArray() {
			return Options{}, fmt.Errorf("%w: %s must be a JSON array", ErrInvalidOptions, AttrButtons)
		}
		var names []string
		list.ForEach(func(_, v gjson.Result) bool {
			if v.Type == gjson.String {
				names = append(names, v.String())
			} else {
				logger.Debugf("Options: ignoring non-string button %s", v.Raw)
			}
			return true
		})
		opts.Buttons = knownButtons(names)
	}

	if raw, ok := in.Attr(AttrColors); ok {
		opts.Colors = splitColors(raw)
	}
	return opts, nil
}

// knownButtons keeps recognised names in order, without repeats.
func knownButtons(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := buttonSpecs[n]; !ok {
			logger.Debugf("Options: dropping unknown button '%s'", n)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func splitColors(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
