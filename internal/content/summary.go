package content

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Summary returns the visible text of an HTML (or plain) body, whitespace
// collapsed and cut to at most n runes on a word boundary. Text inside script,
// style and pre elements is skipped.
func Summary(body string, n int) string {
	if n <= 0 {
		return ""
	}

	var sb strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return ""
			}
			return truncateWords(strings.Join(strings.Fields(sb.String()), " "), n)
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "pre":
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			case "p", "br", "li", "div", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func truncateWords(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if utf8.RuneCountInString(s[:i]) > n {
			break
		}
		if s[i] == ' ' {
			cut = i
		}
	}
	if cut == 0 {
		runes := []rune(s)
		return string(runes[:n]) + "…"
	}
	return s[:cut] + "…"
}
