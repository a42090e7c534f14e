// Package report renders a session view as plain text for non-interactive
// commands.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AntoineGS/ticklist/internal/session"
)

// Row markers
const (
	markerActionable = ">"
	markerHighlight  = "*"
	boxDone          = "[x]"
	boxOpen          = "[ ]"
)

// Render writes v to w.
func Render(w io.Writer, v session.View) error {
	_, err := io.WriteString(w, String(v))
	return err
}

// String renders v.
func String(v session.View) string {
	var b strings.Builder

	if !v.Loaded {
		b.WriteString("No list loaded.\n")
		return b.String()
	}

	if v.Source != "" {
		fmt.Fprintf(&b, "List: %s\n", filepath.Base(v.Source))
	}
	fmt.Fprintf(&b, "Remaining: %d of %d\n", v.Remaining, v.Total)

	if v.Total == 0 {
		b.WriteString("\nNo items.\n")
		return b.String()
	}

	b.WriteString("\n")

	width := 1
	if n := len(v.Rows); n > 0 {
		width = len(strconv.Itoa(v.Rows[n-1].Index))
	}

	for _, r := range v.Rows {
		marker := " "
		switch {
		case r.Status == session.RowActionable:
			marker = markerActionable
		case r.Highlight:
			marker = markerHighlight
		}

		box := boxOpen
		if r.Status == session.RowDone {
			box = boxDone
		}

		fmt.Fprintf(&b, "%s %s %*d. %s\n", marker, box, width, r.Index, r.Text)

		if v.ShowDetails && r.Detail != "" {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", 6+width+2), r.Detail)
		}
	}

	if v.Complete {
		b.WriteString("\nAll items checked.\n")
	}

	return b.String()
}
