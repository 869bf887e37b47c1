package content

import (
	"fmt"

	"golang.org/x/text/language"
)

var monthTables = []struct {
	tag   language.Tag
	names [12]string
}{
	{language.English, [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}},
	{language.German, [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}},
	{language.French, [12]string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"}},
	{language.Spanish, [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}},
	{language.Dutch, [12]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}},
	{language.Swedish, [12]string{"jan", "feb", "mar", "apr", "maj", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}},
}

var monthMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(monthTables))
	for i, t := range monthTables {
		tags[i] = t.tag
	}
	return language.NewMatcher(tags)
}()

// MonthTable maps month numbers to the abbreviations bound as date_month_abbr.
type MonthTable struct {
	tag   language.Tag
	names [12]string
}

// DefaultMonths is the English table.
var DefaultMonths = &MonthTable{tag: monthTables[0].tag, names: monthTables[0].names}

// NewMonthTable picks the built-in table closest to locale (English when nothing
// matches) and applies overrides keyed by month number.
func NewMonthTable(locale string, overrides map[int]string) (*MonthTable, error) {
	idx := 0
	if locale != "" {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		_, i, conf := monthMatcher.Match(tag)
		if conf != language.No {
			idx = i
		}
	}

	mt := &MonthTable{tag: monthTables[idx].tag, names: monthTables[idx].names}
	for m, name := range overrides {
		if m < 1 || m > 12 {
			return nil, fmt.Errorf("month override %d out of range 1..12", m)
		}
		mt.names[m-1] = name
	}
	return mt, nil
}

// Abbr returns the abbreviation for month m (1..12), or "" when out of range.
func (t *MonthTable) Abbr(m int) string {
	if t == nil {
		t = DefaultMonths
	}
	if m < 1 || m > 12 {
		return ""
	}
	return t.names[m-1]
}

// Language is the tag of the built-in table in use.
func (t *MonthTable) Language() language.Tag {
	if t == nil {
		return DefaultMonths.tag
	}
	return t.tag
}
