// Package events publishes build findings for downstream consumers.
package events

import (
	"context"
	"time"
)

// BrokenWikilinkEvent reports a wikilink whose target could not be resolved.
type BrokenWikilinkEvent struct {
	// Target is the name written between the brackets.
	Target string `json:"target"`

	// Source page
	SourcePath string `json:"source_path"`
	SourceURL  string `json:"source_url,omitempty"`
	Title      string `json:"title,omitempty"`

	// Build context
	BuildID   string    `json:"build_id,omitempty"`
	SiteURL   string    `json:"site_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends events somewhere.
type Publisher interface {
	PublishBrokenWikilinks(ctx context.Context, events []BrokenWikilinkEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishBrokenWikilinks(context.Context, []BrokenWikilinkEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
