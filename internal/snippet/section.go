package snippet

// SectionOptions controls ExtractSection.
type SectionOptions struct {
	// Dedent removes the common leading whitespace of the extracted lines.
	Dedent bool
	// Compiled marks lines read from generated output, which may have lost its markers.
	Compiled bool
	// Fallback holds the compiled file's source lines, searched when Compiled
	// content lacks the section.
	Fallback []string
	// FallbackPath names the source file for error context.
	FallbackPath string
}

// ExtractSection returns the lines between the start and end markers of name.
//
// Markers never appear in the result. Escaped markers inside the section are
// kept with one `;` removed, markers of other sections are dropped, a repeated
// start is ignored, and an end seen before any start ends the scan.
func ExtractSection(name string, lines []string, opts SectionOptions) ([]string, error) {
	out, found := scanSection(name, lines)
	if !found && opts.Compiled {
		if opts.Fallback != nil {
			out, found = scanSection(name, opts.Fallback)
		}
		if !found {
			return nil, missingCompiledSection(name, opts.FallbackPath)
		}
	}
	if !found {
		return nil, missingSection(name)
	}
	if opts.Dedent {
		out = Dedent(out)
	}
	return out, nil
}

func scanSection(name string, lines []string) ([]string, bool) {
	out := []string{}
	inside, found := false, false
	for _, ln := range lines {
		m, ok := scanSectionMarker(ln)
		switch {
		case ok && m.escaped:
			if inside {
				out = append(out, m.unescaped)
			}
			continue
		case ok && m.name == name:
			if m.start {
				if !inside {
					inside, found = true, true
				}
				continue
			}
			return out, found
		case ok:
			continue
		}
		if inside {
			out = append(out, ln)
		}
	}
	return out, found
}
