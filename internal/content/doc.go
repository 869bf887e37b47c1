// Package content turns content files into records.
//
// A content file is named [YYYY-MM-DD-]slug.ext and may start with a block of
// header lines of the form
//
//	<!-- title: Hello -->
//
// Header keys become record fields next to the ones derived from the file name
// (slug, date, date_year, ...). The rest of the file is the body, converted to
// HTML when the extension is a markdown one, and stored as "content".
package content
