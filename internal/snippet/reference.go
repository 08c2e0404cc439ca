package snippet

import (
	"strconv"
	"strings"
)

// Reference is one parsed transclusion target.
type Reference struct {
	// Raw is the reference exactly as written.
	Raw  string
	Path string
	// Start and End bound a line range as slice indices; nil means open.
	Start *int
	End   *int
	// Section names a marker-delimited section.
	Section string
	// Verbatim reads a compiled source file as-is instead of its generated output.
	Verbatim bool
}

// HasRange reports whether a line range was requested.
func (r Reference) HasRange() bool { return r.Start != nil || r.End != nil }

// IsURL reports whether the path names an http(s) resource.
func (r Reference) IsURL() bool {
	p := strings.ToLower(r.Path)
	return strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "http://")
}

// ParseReference splits `path[:start][:end]`, `path[:section]` and a trailing `!`
// on the path. A `!` ending the whole reference is accepted as well.
//
// Start is 1-based and converted to the 0-based slice start; end is used as the
// exclusive slice bound, so `file.md:2:4` selects the second through fourth lines.
// A bare `:` is ignored. An empty path is returned as-is for the caller to reject.
func ParseReference(raw string) Reference {
	ref := Reference{Raw: raw}
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, "!") {
		ref.Verbatim = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "!"))
	}
	ref.Path = splitSuffix(s, &ref)
	if strings.HasSuffix(ref.Path, "!") {
		ref.Verbatim = true
		ref.Path = strings.TrimSpace(strings.TrimSuffix(ref.Path, "!"))
	}
	return ref
}

// splitSuffix returns the path part of s, storing any range or section on ref.
// The shortest path whose remainder is a valid suffix wins.
func splitSuffix(s string, ref *Reference) string {
	for i := 0; i <= len(s); i++ {
		if start, end, ok := parseRange(s[i:]); ok {
			ref.Start, ref.End = start, end
			return strings.TrimSpace(s[:i])
		}
		if name, ok := parseSectionSuffix(s[i:]); ok {
			ref.Section = name
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

// parseRange matches `(:[0-9]*)?(:[0-9]*)?` against all of s.
func parseRange(s string) (start, end *int, ok bool) {
	if s == "" {
		return nil, nil, true
	}
	if s[0] != ':' {
		return nil, nil, false
	}
	parts := strings.Split(s[1:], ":")
	if len(parts) > 2 {
		return nil, nil, false
	}
	for _, p := range parts {
		if strings.Trim(p, "0123456789") != "" {
			return nil, nil, false
		}
	}
	if n, err := strconv.Atoi(parts[0]); err == nil {
		v := max(0, n-1)
		start = &v
	}
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			end = &n
		}
	}
	return start, end, true
}

// parseSectionSuffix matches `:[a-z][-_0-9a-z]*` (case-insensitive) against all of s.
func parseSectionSuffix(s string) (string, bool) {
	if len(s) < 2 || s[0] != ':' || !isNameStart(s[1]) {
		return "", false
	}
	for i := 2; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return "", false
		}
	}
	return s[1:], true
}

// sliceLines slices with both bounds clamped to the line count.
func sliceLines(lines []string, start, end *int) []string {
	lo, hi := 0, len(lines)
	if start != nil {
		lo = min(*start, len(lines))
	}
	if end != nil {
		hi = min(*end, len(lines))
	}
	if lo >= hi {
		return []string{}
	}
	return append([]string(nil), lines[lo:hi]...)
}
