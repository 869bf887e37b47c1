package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPage       = "page"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyPattern    = "pattern"
	KeyLayout     = "layout"
	KeyCount      = "count"
	KeyToken      = "token"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyBytes      = "bytes"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Page(name string) slog.Attr      { return slog.String(KeyPage, name) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Layout(name string) slog.Attr    { return slog.String(KeyLayout, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Token(tok string) slog.Attr      { return slog.String(KeyToken, tok) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
