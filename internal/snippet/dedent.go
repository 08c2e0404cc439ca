package snippet

import "strings"

// Dedent removes the longest run of leading whitespace shared by every
// non-blank line. Lines holding only spaces and tabs become empty.
func Dedent(lines []string) []string {
	margin, haveMargin := "", false
	for _, ln := range lines {
		if strings.TrimLeft(ln, " \t") == "" {
			continue
		}
		indent := ln[:len(ln)-len(strings.TrimLeft(ln, " \t"))]
		if !haveMargin {
			margin, haveMargin = indent, true
			continue
		}
		margin = commonPrefix(margin, indent)
	}

	out := make([]string, len(lines))
	for i, ln := range lines {
		if strings.TrimLeft(ln, " \t") == "" {
			out[i] = ""
			continue
		}
		out[i] = strings.TrimPrefix(ln, margin)
	}
	return out
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// expandTabs replaces tabs in a whitespace prefix with spaces up to the next tab stop.
func expandTabs(s string, tabLength int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			if tabLength > 0 {
				pad := tabLength - col%tabLength
				b.WriteString(strings.Repeat(" ", pad))
				col += pad
			}
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
