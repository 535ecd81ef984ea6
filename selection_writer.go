package graphql

import (
	"io"
	"strings"

	"github.com/llehouerou/go-graphql-variants/types"
)

// selectionWriter writes a selection set one line at a time, indenting
// every line by the current depth. The first write error is kept and
// later writes are dropped.
type selectionWriter struct {
	w     io.Writer
	depth int
	err   error
}

func newSelectionWriter(w io.Writer, depth int) *selectionWriter {
	return &selectionWriter{w: w, depth: depth}
}

func (sw *selectionWriter) line(s string) {
	if sw.err != nil {
		return
	}
	_, sw.err = io.WriteString(sw.w, strings.Repeat(types.Indent, sw.depth)+s+"\n")
}

// open writes "head {" and enters a nested block.
func (sw *selectionWriter) open(head string) {
	sw.line(head + " {")
	sw.depth++
}

func (sw *selectionWriter) close() {
	sw.depth--
	sw.line("}")
}

// block re-indents a rendered selection at the current depth. The common
// leading whitespace of text is removed, deeper lines keep their relative
// indentation and blank lines are dropped.
func (sw *selectionWriter) block(text string) {
	lines := strings.Split(text, "\n")
	margin := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if margin < 0 || n < margin {
			margin = n
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		sw.line(strings.TrimRight(l[margin:], " \t\r"))
	}
}
