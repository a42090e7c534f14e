package session

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ListChange describes, line by line, how the item list saved with some
// progress differs from the list loaded now. Unchanged runs are collapsed.
func ListChange(saved, current []string) string {
	dmp := diffmatchpatch.New()

	oldText := joinLines(saved)
	newText := joinLines(current)

	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				sb.WriteString("- " + line + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				sb.WriteString("+ " + line + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 0 {
				sb.WriteString(fmt.Sprintf("  (%d unchanged)\n", len(lines)))
			}
		}
	}

	return sb.String()
}

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
