package commands

import (
	"git.home.luguber.info/inful/makesite/internal/preview"
)

// ServeCmd builds the site, serves it and rebuilds it when sources change.
type ServeCmd struct {
	Addr         string `name:"addr" default:"localhost:8000" help:"Listen address."`
	NoLiveReload bool   `name:"no-live-reload" help:"Do not inject the live reload script into pages."`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	env, err := loadSite(g, root)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext()
	defer cancel()

	return preview.Run(ctx, env.builder, preview.Options{
		Addr:       s.Addr,
		Metrics:    env.metricsHandler(),
		LiveReload: !s.NoLiveReload,
		Logger:     env.logger,
	})
}
