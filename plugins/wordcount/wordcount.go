// plugins/wordcount/wordcount.go
package wordcount

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "wordcount"

// Ensure WordCount implements the capabilities it relies on.
var (
	_ plugin.Initializer   = (*WordCount)(nil)
	_ plugin.AfterExecHook = (*WordCount)(nil)
)

// WordCount reports word and character counts on the status line after
// every command, and on demand through the "wc" command.
type WordCount struct {
	host plugin.Host
}

// New creates a new instance of the WordCount plugin.
func New() *WordCount {
	return &WordCount{}
}

// Init stores the host and registers the "wc" command.
func (p *WordCount) Init(host plugin.Host) error {
	p.host = host
	if err := host.RegisterCommand("wc", p.executeWordCount); err != nil {
		return fmt.Errorf("failed to register 'wc' command: %w", err)
	}
	return nil
}

// AfterExecCommand refreshes the counts.
func (p *WordCount) AfterExecCommand(name, value string) error {
	return p.executeWordCount(nil)
}

func (p *WordCount) executeWordCount(args []string) error {
	if p.host == nil {
		return fmt.Errorf("wordcount plugin not initialized with host")
	}
	words, chars := Count(p.host.Content().Serialize())
	p.host.SetStatusMessage("Words: %d, Characters: %d", words, chars)
	return nil
}

// Count returns the number of words and user-perceived characters in the
// text of an HTML fragment. Text in different blocks never joins into one
// word.
func Count(src string) (words, chars int) {
	doc := markup.Parse(src)
	var blocks []string
	var last *markup.Element
	for i, run := range doc.TextRuns() {
		text := html.UnescapeString(src[run.Start:run.End])
		block := doc.BlockAt(run.Start)
		if block == nil && strings.TrimSpace(text) == "" {
			continue // Formatting whitespace between tags
		}
		if i > 0 && block != nil && block == last {
			blocks[len(blocks)-1] += text
		} else {
			blocks = append(blocks, text)
		}
		last = block
	}

	for _, text := range blocks {
		chars += uniseg.GraphemeClusterCount(text)
		state := -1
		var word string
		for len(text) > 0 {
			word, text, state = uniseg.FirstWordInString(text, state)
			if isWord(word) {
				words++
			}
		}
	}
	return words, chars
}

// isWord reports whether a word-boundary segment holds a letter or digit,
// so spaces and punctuation are not counted.
func isWord(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
