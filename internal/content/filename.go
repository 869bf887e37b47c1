package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

var (
	datedName = regexp.MustCompile(`^(?:(\d{4})-(\d{2})-(\d{2})-)?(.+)$`)
	bareDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-?$`)
)

// BaseName strips everything from the first dot of a file name.
func BaseName(filename string) string {
	if i := strings.IndexByte(filename, '.'); i >= 0 {
		return filename[:i]
	}
	return filename
}

// ParseFilename derives slug and date fields from a base name (see BaseName).
// Names without a date prefix, or with a prefix that is not a calendar date,
// get 1970-01-01.
func ParseFilename(base string, months *MonthTable) (Record, error) {
	rec, _, err := parseFilename(base, months)
	return rec, err
}

// parseFilename also reports whether a date prefix had to be discarded.
func parseFilename(base string, months *MonthTable) (Record, bool, error) {
	if bareDate.MatchString(base) {
		return nil, false, errors.MalformedFilename(base, fmt.Errorf("date without slug"))
	}
	m := datedName.FindStringSubmatch(base)
	if m == nil {
		return nil, false, errors.MalformedFilename(base, fmt.Errorf("empty name"))
	}

	year, month, day := 1970, 1, 1
	discarded := false
	if m[1] != "" {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		if int(t.Month()) == mo && t.Day() == d {
			year, month, day = y, mo, d
		} else {
			discarded = true
		}
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	return Record{
		FieldDate:          date.Format(time.DateOnly),
		FieldDateYear:      year,
		FieldDateMonth:     month,
		FieldDateDay:       day,
		FieldDateMonthAbbr: months.Abbr(month),
		FieldRFC2822Date:   date.Format(time.RFC1123Z),
		FieldSlug:          m[4],
	}, discarded, nil
}
