// Package config loads the YAML site file that drives a makesite build.
package config

import (
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/makesite/internal/retry"
)

// DefaultConfigFile is the site file read when none is given.
const DefaultConfigFile = "site.yaml"

// Config is the parsed site file.
type Config struct {
	ContentDir string `yaml:"content_dir"`
	LayoutDir  string `yaml:"layout_dir"`
	StaticDir  string `yaml:"static_dir"`
	OutputDir  string `yaml:"output_dir"`
	Clean      *bool  `yaml:"clean"`

	Locale        string         `yaml:"locale"`
	Months        map[int]string `yaml:"months"`
	SummaryLength int            `yaml:"summary_length"`
	Concurrency   int            `yaml:"concurrency"`

	ParamsFile string         `yaml:"params_file"`
	Params     map[string]any `yaml:"params"`
	// FileParams holds the mapping read from ParamsFile.
	FileParams map[string]any `yaml:"-"`

	Layouts map[string]LayoutConfig `yaml:"layouts"`
	Pages   []PageConfig            `yaml:"pages"`

	Markdown MarkdownConfig `yaml:"markdown"`
	Logging  LoggingConfig  `yaml:"logging"`
	History  HistoryConfig  `yaml:"history"`
	Notify   NotifyConfig   `yaml:"notify"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Schedule ScheduleConfig `yaml:"schedule"`

	// BaseDir is the directory of the site file; relative paths resolve against it.
	BaseDir string `yaml:"-"`
}

// LayoutConfig names a layout file and how it is composed from other layouts.
type LayoutConfig struct {
	File string `yaml:"file"`
	// Bind renders this layout with other (resolved) layouts bound under the given keys.
	Bind map[string]string `yaml:"bind"`
	// Extends renders the named layout with this one bound as content.
	Extends string `yaml:"extends"`
}

// PageConfig is one output page.
type PageConfig struct {
	Slug     string         `yaml:"slug"`
	ListOnly bool           `yaml:"list_only"`
	Render   bool           `yaml:"render"`
	Params   map[string]any `yaml:"params"`
}

type MarkdownConfig struct {
	Enabled        *bool  `yaml:"enabled"`
	HighlightStyle string `yaml:"highlight_style"`
	HardWraps      bool   `yaml:"hard_wraps"`
	UnsafeHTML     *bool  `yaml:"unsafe_html"`
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// HistoryConfig enables the SQLite build history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig publishes build events to NATS when NATSURL is set.
type NotifyConfig struct {
	NATSURL string      `yaml:"nats_url"`
	Subject string      `yaml:"subject"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of failed notifications. Unset fields use
// retry.DefaultPolicy.
type RetryConfig struct {
	Backoff    string        `yaml:"backoff"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries *int          `yaml:"max_retries"`
}

// Policy converts the section into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	n := -1
	if r.MaxRetries != nil {
		n = *r.MaxRetries
	}
	return retry.NewPolicy(retry.Backoff(r.Backoff), r.Initial, r.Max, n)
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ScheduleConfig drives the daemon. Cron, when set, replaces Interval.
type ScheduleConfig struct {
	Interval string `yaml:"interval"`
	Cron     string `yaml:"cron"`
}

// CleanOutput reports whether the output directory is emptied before a build.
func (c *Config) CleanOutput() bool { return c.Clean == nil || *c.Clean }

func (m MarkdownConfig) IsEnabled() bool { return m.Enabled == nil || *m.Enabled }
func (m MarkdownConfig) AllowHTML() bool { return m.UnsafeHTML == nil || *m.UnsafeHTML }

// IntervalDuration parses Schedule.Interval. Validate has already checked it.
func (s ScheduleConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0
	}
	return d
}

// Path resolves p against the site file's directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// LayoutPath is the full path of a layout file.
func (c *Config) LayoutPath(name string) string {
	return filepath.Join(c.LayoutDir, c.Layouts[name].File)
}
