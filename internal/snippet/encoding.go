package snippet

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// decoder turns raw snippet bytes into lines using a configured character set.
type decoder struct {
	enc encoding.Encoding
}

func newDecoder(name string) (decoder, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return decoder{enc: unicode.UTF8BOM}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return decoder{}, ferrors.WrapError(err, ferrors.CategoryConfig, "unsupported snippet encoding").
			WithContext("encoding", name).Build()
	}
	return decoder{enc: enc}, nil
}

// lines decodes data and splits it into lines without their terminators.
// A trailing newline does not produce a final empty line.
func (d decoder) lines(data []byte) ([]string, error) {
	text, err := d.enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, err
	}
	return splitLines(string(bytes.TrimPrefix(text, []byte("\uFEFF")))), nil
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.TrimSuffix(s, "\n")
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
