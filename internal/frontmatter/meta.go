package frontmatter

import (
	"fmt"
	"strings"
)

// AliasKind tags the shape an `alias` key was declared with.
type AliasKind int

const (
	AliasNone AliasKind = iota
	AliasSingle
	AliasMany
	AliasNamed
)

func (k AliasKind) String() string {
	switch k {
	case AliasSingle:
		return "single"
	case AliasMany:
		return "many"
	case AliasNamed:
		return "named"
	default:
		return "none"
	}
}

// AliasValue is the normalized form of a page's `alias` declaration.
type AliasValue struct {
	Kind  AliasKind
	names []string
}

// Names returns the declared alias names in declaration order.
func (a AliasValue) Names() []string {
	return append([]string(nil), a.names...)
}

// Declared reports whether the page declared at least one alias name.
func (a AliasValue) Declared() bool {
	return len(a.names) > 0
}

// DecodeAlias normalizes the raw `alias` value. Accepted shapes are a string,
// a list of strings (non-strings are skipped) and a mapping with a `name` string.
func DecodeAlias(raw any) AliasValue {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return AliasValue{}
		}
		return AliasValue{Kind: AliasSingle, names: []string{v}}
	case []any:
		var names []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		if len(names) == 0 {
			return AliasValue{}
		}
		return AliasValue{Kind: AliasMany, names: names}
	case map[string]any:
		if s, ok := v["name"].(string); ok && s != "" {
			return AliasValue{Kind: AliasNamed, names: []string{s}}
		}
	}
	return AliasValue{}
}

// Meta holds the front-matter keys docweave understands.
type Meta struct {
	Alias         AliasValue
	Title         string
	ListWikilinks bool
	// MermaidWikilinks overrides the site-wide diagram setting when set.
	MermaidWikilinks *bool
	// Todos overrides the site-wide todo visibility when set.
	Todos *bool
}

// DecodeMeta extracts Meta from parsed front-matter fields, applying defaults.
func DecodeMeta(fields map[string]any) Meta {
	m := Meta{ListWikilinks: true}
	if fields == nil {
		return m
	}
	m.Alias = DecodeAlias(fields["alias"])
	if t, ok := fields["title"]; ok && t != nil {
		m.Title = strings.TrimSpace(fmt.Sprint(t))
	}
	if b, ok := fields["list_wikilinks"].(bool); ok {
		m.ListWikilinks = b
	}
	if b, ok := fields["mermaid_wikilinks"].(bool); ok {
		m.MermaidWikilinks = &b
	}
	if b, ok := fields["todos"].(bool); ok {
		m.Todos = &b
	}
	return m
}

// Document is a Markdown source split into metadata and body.
type Document struct {
	Fields map[string]any
	Meta   Meta
	Body   []byte
	// BodyLine is the 0-based source line the body starts at.
	BodyLine int
}

// Parse splits and decodes a Markdown source.
func Parse(content []byte) (Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Fields: fields, Meta: DecodeMeta(fields), Body: body}
	if had {
		doc.BodyLine = strings.Count(string(fm), "\n") + 2
	}
	return doc, nil
}
