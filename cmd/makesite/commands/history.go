package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/eventstore"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

// HistoryCmd lists recent builds from the history database.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to show."`
	JSON  bool `name:"json" help:"Print JSON instead of a table."`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.ConfigError("build history is disabled (set history.enabled)").
			WithContext("name", root.Config).
			Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signalContext()
	defer cancel()
	builds, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}

	if h.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Out, "no builds recorded")
		return nil
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUILD\tSTARTED\tTRIGGER\tSTATUS\tPAGES\tDURATION\tFAILED")
	for _, b := range builds {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(b.BuildID),
			b.StartedAt.Local().Format(time.DateTime),
			b.Trigger,
			b.Status,
			b.Pages,
			b.Duration.Round(time.Millisecond),
			strings.Join(b.FailedPages, ","))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
