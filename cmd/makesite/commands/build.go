package commands

import (
	"fmt"
	"path/filepath"
	"time"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory (overrides output_dir)" type:"path"`
	NoClean bool   `name:"no-clean" help:"Keep existing files in the output directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	env, err := loadSite(g, root)
	if err != nil {
		return err
	}
	defer env.Close()

	if b.Output != "" {
		env.cfg.OutputDir, _ = filepath.Abs(b.Output)
	}
	if b.NoClean {
		clean := false
		env.cfg.Clean = &clean
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := env.builder.Build(ctx)
	if report != nil {
		_, _ = fmt.Fprintf(g.Out, "Built %d of %d pages into %s in %s\n",
			len(report.Slugs()), len(report.Pages), env.cfg.OutputDir, report.Duration.Round(time.Millisecond))
	}
	return err
}
