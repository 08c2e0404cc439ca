// Package nav models the site navigation tree.
package nav

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Entry is one navigation item: a page (Path set), a group (Children set), or both labels empty
// for a bare page listed under a group.
type Entry struct {
	Label    string
	Path     string
	Children []Entry
}

// Pair is a page path with the display name the navigation gives it.
type Pair struct {
	Path  string
	Label string
}

// Parse converts a YAML nav sequence into entries, preserving order.
//
// Accepted items are bare strings (`- page.md`), single-key mappings from a
// label to a path (`- Home: index.md`) and single-key mappings from a label to
// a nested sequence (`- Guide: [...]`).
func Parse(node *yaml.Node) ([]Entry, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(node, "nav must be a list")
	}
	entries := make([]Entry, 0, len(node.Content))
	for _, item := range node.Content {
		parsed, err := parseItem(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

func parseItem(item *yaml.Node) ([]Entry, error) {
	switch item.Kind {
	case yaml.ScalarNode:
		return []Entry{{Path: item.Value}}, nil
	case yaml.MappingNode:
		var out []Entry
		for i := 0; i+1 < len(item.Content); i += 2 {
			label, value := item.Content[i].Value, item.Content[i+1]
			switch value.Kind {
			case yaml.ScalarNode:
				out = append(out, Entry{Label: label, Path: value.Value})
			case yaml.SequenceNode:
				children, err := Parse(value)
				if err != nil {
					return nil, err
				}
				out = append(out, Entry{Label: label, Children: children})
			default:
				return nil, invalid(value, "nav group must map to a path or a list")
			}
		}
		return out, nil
	default:
		return nil, invalid(item, "unsupported nav item")
	}
}

func invalid(node *yaml.Node, msg string) error {
	return ferrors.ValidationError(msg).WithContext("line", node.Line).Build()
}

// Pairs flattens entries into (path, label) pairs in navigation order.
//
// A labelled page contributes its own label. A bare page inside a group takes
// the group's label. A bare page at the top level has no label and is skipped.
func Pairs(entries []Entry) []Pair {
	var out []Pair
	walk(entries, "", &out)
	return out
}

func walk(entries []Entry, parent string, out *[]Pair) {
	for _, e := range entries {
		switch {
		case len(e.Children) > 0:
			walk(e.Children, e.Label, out)
		case e.Path == "":
		case e.Label != "":
			*out = append(*out, Pair{Path: e.Path, Label: e.Label})
		case parent != "":
			*out = append(*out, Pair{Path: e.Path, Label: parent})
		}
	}
}

// Page is the minimal page information needed to synthesize a navigation.
type Page struct {
	Path  string
	Title string
}

// FromPages builds a navigation from discovered pages, ordered by path, with
// each page labelled by its title (or its path when untitled). Pages in
// sub-directories are grouped under the directory name.
func FromPages(pages []Page) []Entry {
	sorted := append([]Page(nil), pages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var root []Entry
	groups := map[string]int{}
	for _, p := range sorted {
		label := p.Title
		if label == "" {
			label = strings.TrimSuffix(p.Path, ".md")
		}
		entry := Entry{Label: label, Path: p.Path}
		dir, _, nested := strings.Cut(p.Path, "/")
		if !nested {
			root = append(root, entry)
			continue
		}
		idx, ok := groups[dir]
		if !ok {
			idx = len(root)
			groups[dir] = idx
			root = append(root, Entry{Label: dir})
		}
		root[idx].Children = append(root[idx].Children, entry)
	}
	return root
}

// String renders entries as an indented outline, used by debug output.
func String(entries []Entry) string {
	var b strings.Builder
	var render func([]Entry, int)
	render = func(es []Entry, depth int) {
		for _, e := range es {
			fmt.Fprintf(&b, "%s- %s", strings.Repeat("  ", depth), e.Label)
			if e.Path != "" {
				fmt.Fprintf(&b, " (%s)", e.Path)
			}
			b.WriteByte('\n')
			render(e.Children, depth+1)
		}
	}
	render(entries, 0)
	return b.String()
}
