package config

import "path/filepath"

const (
	defaultContentDir    = "content"
	defaultLayoutDir     = "layout"
	defaultStaticDir     = "static"
	defaultOutputDir     = "_site"
	defaultHistoryPath   = ".makesite/history.db"
	defaultNotifySubject = "makesite.builds"
	defaultMetricsListen = ":9464"
	defaultInterval      = "15m"
)

// applyDefaults fills unset fields and makes paths absolute.
func applyDefaults(c *Config) {
	if c.ContentDir == "" {
		c.ContentDir = defaultContentDir
	}
	if c.LayoutDir == "" {
		c.LayoutDir = defaultLayoutDir
	}
	if c.StaticDir == "" {
		c.StaticDir = defaultStaticDir
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = defaultNotifySubject
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = defaultMetricsListen
	}
	if c.Schedule.Interval == "" {
		c.Schedule.Interval = defaultInterval
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}

	if abs, err := filepath.Abs(c.BaseDir); err == nil {
		c.BaseDir = abs
	}
	c.ContentDir = c.Path(c.ContentDir)
	c.LayoutDir = c.Path(c.LayoutDir)
	c.StaticDir = c.Path(c.StaticDir)
	c.OutputDir = c.Path(c.OutputDir)
	c.History.Path = c.Path(c.History.Path)
}
