package site

import (
	"time"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/listing"
	"git.home.luguber.info/inful/makesite/internal/page"
	"git.home.luguber.info/inful/makesite/internal/render"
	"git.home.luguber.info/inful/makesite/internal/version"
)

// Keys of the bindings every page starts from.
const (
	KeyBasePath    = "base_path"
	KeySiteURL     = "site_url"
	KeyCurrentYear = "current_year"
	KeyBuildID     = "build_id"
	KeyBuildTime   = "build_time"
	KeyBuildCommit = "build_commit"
	KeyVersion     = "makesite_version"
)

// defaultBindings are the lowest layer of every page's bindings.
func defaultBindings(buildID, commit string, now time.Time) render.Bindings {
	return render.Bindings{
		KeyBasePath:    "",
		KeySiteURL:     "http://localhost:8000",
		KeyCurrentYear: now.Year(),
		KeyBuildID:     buildID,
		KeyBuildTime:   now.UTC().Format(time.RFC3339),
		KeyBuildCommit: commit,
		KeyVersion:     version.Version,
	}
}

// siteBindings layers the site file parameters over the defaults.
func siteBindings(cfg *config.Config, defaults render.Bindings) render.Bindings {
	return render.Merge(defaults, cfg.FileParams, cfg.Params)
}

// pageBindings adds a page's params and flags. Flags only ever switch on.
func pageBindings(site render.Bindings, p config.PageConfig) render.Bindings {
	flags := render.Bindings{}
	if p.ListOnly {
		flags[page.KeyListOnly] = true
	}
	if p.Render {
		flags[listing.KeyRender] = true
	}
	return render.Merge(site, p.Params, flags)
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
