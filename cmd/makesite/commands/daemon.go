package commands

import (
	"time"

	"git.home.luguber.info/inful/makesite/internal/daemon"
)

// DaemonCmd rebuilds the site on the configured schedule.
type DaemonCmd struct {
	Interval       time.Duration `help:"Rebuild interval (overrides schedule.interval)."`
	Cron           string        `help:"Cron expression (overrides schedule.cron)."`
	NoInitialBuild bool          `name:"no-initial-build" help:"Wait for the first scheduled run instead of building at start."`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	env, err := loadSite(g, root)
	if err != nil {
		return err
	}
	defer env.Close()

	opts := daemon.Options{
		Interval:     env.cfg.Schedule.IntervalDuration(),
		Cron:         env.cfg.Schedule.Cron,
		BuildOnStart: !d.NoInitialBuild,
		Metrics:      env.metricsHandler(),
		MetricsAddr:  env.cfg.Metrics.Listen,
		Logger:       env.logger,
	}
	if d.Interval > 0 {
		opts.Interval, opts.Cron = d.Interval, ""
	}
	if d.Cron != "" {
		opts.Cron = d.Cron
	}

	ctx, cancel := signalContext()
	defer cancel()
	return daemon.Run(ctx, env.builder, opts)
}
