package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes JSON events on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("docweave"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", url).Retryable().Build()
	}
	logger.Info("NATS publisher initialized", logfields.URL(url), slog.String("subject", subject))
	return newPublisher(nc, subject, logger), nil
}

func newPublisher(c conn, subject string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject, logger: logger}
}

// PublishBrokenWikilinks publishes each event and flushes once.
func (p *NATSPublisher) PublishBrokenWikilinks(ctx context.Context, evts []BrokenWikilinkEvent) error {
	if len(evts) == 0 {
		return nil
	}
	now := time.Now()
	for i := range evts {
		if evts[i].Timestamp.IsZero() {
			evts[i].Timestamp = now
		}
		data, err := json.Marshal(evts[i])
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal event").Build()
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to publish event").
				WithContext("subject", p.subject).Retryable().Build()
		}
		p.logger.Debug("Published broken wikilink event",
			logfields.Page(evts[i].SourcePath), logfields.Target(evts[i].Target))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to flush events").
			WithContext("subject", p.subject).Retryable().Build()
	}
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
