package content

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/markup"
	"git.home.luguber.info/inful/makesite/internal/metrics"
)

// Loader reads content files into records.
type Loader struct {
	// Converter renders markdown bodies. Nil behaves like markup.Unavailable.
	Converter markup.Converter
	// Months supplies date_month_abbr. Nil means DefaultMonths.
	Months *MonthTable
	// SummaryLength > 0 adds a summary field to records without a summary header.
	SummaryLength int
	Recorder      metrics.Recorder
	Logger        *slog.Logger
}

// Load reads path and returns its record. A malformed file name is reported
// with errors.MalformedFilename; a markdown conversion failure is logged and
// the body kept as is.
func (l *Loader) Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileSystemError("read content file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	text := string(data)

	base := BaseName(filepath.Base(path))
	rec, discarded, err := parseFilename(base, l.Months)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	if discarded {
		l.logger().Warn("Invalid date in file name, using 1970-01-01", logfields.Path(path))
	}

	end := 0
	for h := range Headers(text) {
		rec[h.Key] = h.Value
		end = max(end, h.End)
	}
	body := text[end:]

	if markup.IsMarkdown(filepath.Ext(path)) {
		body = l.convert(path, body)
	}
	rec[FieldContent] = body

	if _, ok := rec[FieldSummary]; !ok && l.SummaryLength > 0 {
		rec[FieldSummary] = Summary(body, l.SummaryLength)
	}
	return rec, nil
}

func (l *Loader) convert(path, body string) string {
	conv := l.Converter
	if conv == nil {
		conv = markup.Unavailable{}
	}
	out, err := conv.Convert([]byte(body))
	if err == nil {
		return string(out)
	}

	merr := errors.MarkupError("cannot render markdown").WithCause(err).WithContext("path", path).Build()
	l.logger().Warn(merr.Message(), logfields.Path(path), logfields.Error(merr.Cause()))
	metrics.OrNoop(l.Recorder).IncMarkupFallback()
	return body
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
