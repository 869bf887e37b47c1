package content

import (
	"iter"
	"regexp"
)

// A header line, or any other line. The second alternative ends the header block.
var headerLine = regexp.MustCompile(`\s*<!--\s*(.+?)\s*:\s*(.+?)\s*-->\s*|.+`)

// Header is one key/value line of a content file's header block. End is the
// offset just past the line and any whitespace that follows it.
type Header struct {
	Key   string
	Value string
	End   int
}

// Headers lazily yields the leading header lines of text. It stops at the first
// line that is not a header.
func Headers(text string) iter.Seq[Header] {
	return func(yield func(Header) bool) {
		pos := 0
		for pos < len(text) {
			m := headerLine.FindStringSubmatchIndex(text[pos:])
			if m == nil || m[2] < 0 {
				return
			}
			h := Header{
				Key:   text[pos+m[2] : pos+m[3]],
				Value: text[pos+m[4] : pos+m[5]],
				End:   pos + m[1],
			}
			if !yield(h) {
				return
			}
			pos = h.End
		}
	}
}

// SplitHeaders collects the header block of text and returns the remaining body.
// A later header with the same key wins.
func SplitHeaders(text string) (map[string]string, string) {
	headers := make(map[string]string)
	end := 0
	for h := range Headers(text) {
		headers[h.Key] = h.Value
		end = max(end, h.End)
	}
	return headers, text[end:]
}
