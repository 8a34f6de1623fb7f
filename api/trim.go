package api

import "strings"

const truncMark = "[...]"

// trimDetail bounds a verdict detail to at most maxLines lines of at most
// maxCols bytes each. Overlong lines are cut and marked, and a dropped tail
// of lines is replaced by a single marker line.
func trimDetail(s string, maxLines, maxCols int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	clipped := false
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		clipped = true
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) > maxCols {
			b.WriteString(line[:maxCols])
			b.WriteString(truncMark)
		} else {
			b.WriteString(line)
		}
	}
	if clipped {
		b.WriteByte('\n')
		b.WriteString(truncMark)
	}
	return b.String()
}
