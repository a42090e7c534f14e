package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// plainText strips escape sequences and trailing blanks so views compare
// as text.
func plainText(s string) string {
	lines := strings.Split(ansi.Strip(s), "\n")

	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}
