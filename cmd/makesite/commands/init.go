package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/makesite/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

// Run writes the example site next to the --config path.
func (i *InitCmd) Run(g *Global, root *CLI) error {
	dir := filepath.Dir(root.Config)
	written, err := config.Init(dir, i.Force)
	for _, f := range written {
		_, _ = fmt.Fprintf(g.Out, "wrote %s\n", f)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Initialized site in %s; run 'makesite build' to build it\n", dir)
	return nil
}
