package content

import (
	"strconv"

	"git.home.luguber.info/inful/makesite/internal/render"
)

// Field names set by the loader.
const (
	FieldSlug          = "slug"
	FieldContent       = "content"
	FieldSummary       = "summary"
	FieldDate          = "date"
	FieldDateYear      = "date_year"
	FieldDateMonth     = "date_month"
	FieldDateDay       = "date_day"
	FieldDateMonthAbbr = "date_month_abbr"
	FieldRFC2822Date   = "rfc_2822_date"
)

// Record is one loaded content file. It is a value: callers extend it with
// render.Merge instead of writing to it.
type Record map[string]any

// Bindings views r as template bindings.
func (r Record) Bindings() render.Bindings { return render.Bindings(r) }

func (r Record) Slug() string    { return r.String(FieldSlug) }
func (r Record) Content() string { return r.String(FieldContent) }

// String returns the stringified field, "" when absent.
func (r Record) String(key string) string {
	v, _ := render.Bindings(r).Lookup(key)
	return v
}

// DateKey returns the (year, month, day) sort key. Header overrides given as
// text are parsed; anything unparsable counts as zero.
func (r Record) DateKey() (year, month, day int) {
	return r.intField(FieldDateYear), r.intField(FieldDateMonth), r.intField(FieldDateDay)
}

func (r Record) intField(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
