package snippet

import "strings"

type lineKind int

const (
	lineText lineKind = iota
	lineBlock
	lineInline
)

// markerLine is one source line classified by the transclusion grammar.
type markerLine struct {
	kind    lineKind
	indent  string
	escaped bool
	// ref is the unquoted, trimmed reference of an inline marker.
	ref string
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// scanScissors matches `-+8<-+` at s[i:] and returns the index just past it, or -1.
func scanScissors(s string, i int) int {
	j := i
	for j < len(s) && s[j] == '-' {
		j++
	}
	if j == i || !strings.HasPrefix(s[j:], "8<") {
		return -1
	}
	j += 2
	k := j
	for k < len(s) && s[k] == '-' {
		k++
	}
	if k == j {
		return -1
	}
	return k
}

// scanMarkerLine classifies a line as text, a block toggle or an inline reference.
func scanMarkerLine(line string) markerLine {
	s := strings.TrimSuffix(line, "\r")
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	j := i
	for j < len(s) && s[j] == ';' {
		j++
	}
	n := scanScissors(s, j)
	if n < 0 {
		return markerLine{}
	}
	ml := markerLine{indent: s[:i], escaped: j > i}

	rest := s[n:]
	if rest == "" {
		ml.kind = lineBlock
		return ml
	}
	k := 0
	for k < len(rest) && isBlank(rest[k]) {
		k++
	}
	if k == 0 {
		return markerLine{}
	}
	ref, ok := unquote(rest[k:])
	if !ok {
		return markerLine{}
	}
	ml.kind = lineInline
	ml.ref = strings.TrimSpace(ref)
	return ml
}

// unquote accepts a non-empty single- or double-quoted string spanning all of q.
// The quote character may only appear inside when escaped with a backslash.
func unquote(q string) (string, bool) {
	if len(q) < 3 || (q[0] != '"' && q[0] != '\'') || q[len(q)-1] != q[0] {
		return "", false
	}
	inner := q[1 : len(q)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == q[0] && (i == 0 || inner[i-1] != '\\') {
			return "", false
		}
	}
	return inner, true
}

// sectionMarker is a `-8<- [start: name]` or `-8<- [end: name]` marker found in a line.
type sectionMarker struct {
	start   bool
	name    string
	escaped bool
	// unescaped is the line with one escaping `;` removed.
	unescaped string
}

// scanSectionMarker finds the leftmost section marker in line.
func scanSectionMarker(line string) (sectionMarker, bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != ';' && line[i] != '-' {
			continue
		}
		j := i
		for j < len(line) && line[j] == ';' {
			j++
		}
		n := scanScissors(line, j)
		if n < 0 {
			continue
		}
		start, name, ok := scanSectionTag(line[n:])
		if !ok {
			continue
		}
		m := sectionMarker{start: start, name: name, escaped: j > i}
		if m.escaped {
			m.unescaped = line[:i] + line[i+1:]
		}
		return m, true
	}
	return sectionMarker{}, false
}

// scanSectionTag parses `[ \t]+\[ start|end : name \]` at the start of s.
func scanSectionTag(s string) (start bool, name string, ok bool) {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '[' {
		return false, "", false
	}
	i = skipBlank(s, i+1)

	switch {
	case hasFoldPrefix(s[i:], "start"):
		start = true
		i += len("start")
	case hasFoldPrefix(s[i:], "end"):
		i += len("end")
	default:
		return false, "", false
	}
	i = skipBlank(s, i)
	if i >= len(s) || s[i] != ':' {
		return false, "", false
	}
	i = skipBlank(s, i+1)

	j := i
	if j >= len(s) || !isNameStart(s[j]) {
		return false, "", false
	}
	for j < len(s) && isNameChar(s[j]) {
		j++
	}
	name = s[i:j]
	j = skipBlank(s, j)
	if j >= len(s) || s[j] != ']' {
		return false, "", false
	}
	return start, name, true
}

func skipBlank(s string, i int) int {
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	return i
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}
