package config

import (
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.Site.URL); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid site url").
			WithContext("url", c.Site.URL).Fatal().Build()
	}
	if c.Snippets.URLMaxSize < 0 {
		return errors.ValidationError("snippets.url_max_size must not be negative").
			WithContext("value", c.Snippets.URLMaxSize).Build()
	}
	if c.Snippets.URLTimeout < 0 {
		return errors.ValidationError("snippets.url_timeout must not be negative").
			WithContext("value", c.Snippets.URLTimeout.String()).Build()
	}
	for _, b := range c.Snippets.BasePath {
		if strings.TrimSpace(b) == "" {
			return errors.ValidationError("snippets.base_path entries must not be empty").Build()
		}
	}
	if c.Compiled.Enabled && !strings.HasSuffix(c.Compiled.Suffix, ".md") {
		return errors.ValidationError("compiled.suffix must end in .md").
			WithContext("suffix", c.Compiled.Suffix).Build()
	}
	if c.Nav.Kind != 0 && c.Nav.Kind != yaml.SequenceNode {
		return errors.ValidationError("nav must be a list").Build()
	}
	return nil
}
