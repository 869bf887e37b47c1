package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/retry"
)

// Validate checks the site file after defaults have been applied and
// canonicalises the logging enums.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return errors.ConfigError("no pages configured").Build()
	}

	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if p.Slug == "" {
			return errors.ConfigError("page slug cannot be empty").
				WithContext("name", fmt.Sprintf("pages[%d]", i)).
				Build()
		}
		if strings.ContainsAny(p.Slug, `/\`) || strings.HasPrefix(p.Slug, ".") {
			return errors.ConfigError("page slug must be a plain file name").
				WithContext("name", p.Slug).
				Build()
		}
		if seen[p.Slug] {
			return errors.ConfigError("duplicate page slug").
				WithContext("name", p.Slug).
				Build()
		}
		seen[p.Slug] = true
	}

	for name, l := range c.Layouts {
		if l.File == "" {
			return errors.ConfigError("layout file cannot be empty").
				WithContext("name", name).
				Build()
		}
	}

	for m := range c.Months {
		if m < 1 || m > 12 {
			return errors.ConfigError("month override out of range 1..12").
				WithContext("name", fmt.Sprint(m)).
				Build()
		}
	}

	if c.SummaryLength < 0 {
		return errors.ConfigError("summary_length cannot be negative").Build()
	}
	if c.Concurrency < 0 {
		return errors.ConfigError("concurrency cannot be negative").Build()
	}
	if c.Schedule.IntervalDuration() <= 0 {
		return errors.ConfigError("schedule interval must be a positive duration").
			WithContext("name", c.Schedule.Interval).
			Build()
	}

	if _, err := retry.NormalizeBackoff(c.Notify.Retry.Backoff); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid notify retry backoff").Fatal().Build()
	}
	if r := c.Notify.Retry; r.Initial < 0 || r.Max < 0 || (r.MaxRetries != nil && *r.MaxRetries < 0) {
		return errors.ConfigError("notify retry values cannot be negative").Build()
	}

	level, err := logLevelNormalizer.NormalizeWithError(string(c.Logging.Level))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging level").Fatal().Build()
	}
	format, err := logFormatNormalizer.NormalizeWithError(string(c.Logging.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging format").Fatal().Build()
	}
	c.Logging.Level, c.Logging.Format = level, format
	return nil
}
