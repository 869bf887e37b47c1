// Package render substitutes {{ token }} placeholders in page templates.
//
// Rendering is a single pass over the template: a placeholder whose token has a
// binding is replaced by the stringified value, any other placeholder is left in
// the output untouched. Values are inserted as opaque text, nothing is escaped.
// Nested layouts are built by rendering the inner template first and passing the
// result as a binding to the outer render.
package render

import (
	"fmt"
	"maps"
	"regexp"
	"strconv"
)

var placeholder = regexp.MustCompile(`{{\s*([^}\s]+)\s*}}`)

// Bindings maps placeholder tokens to values.
type Bindings map[string]any

// Merge returns a new mapping holding every layer in order; later layers win.
// Nil layers are ignored and no layer is modified.
func Merge(layers ...Bindings) Bindings {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	out := make(Bindings, size)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}

// Lookup returns the stringified value for key.
func (b Bindings) Lookup(key string) (string, bool) {
	v, ok := b[key]
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Flag reports whether key holds a true bool or a string strconv.ParseBool reads as true.
func (b Bindings) Flag(key string) bool {
	switch v := b[key].(type) {
	case bool:
		return v
	case string:
		ok, err := strconv.ParseBool(v)
		return err == nil && ok
	default:
		return false
	}
}

// Stringify converts a binding value to the text inserted into a template.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Render replaces every bound placeholder in tpl.
func Render(tpl string, b Bindings) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(marker string) string {
		token := placeholder.FindStringSubmatch(marker)[1]
		if v, ok := b.Lookup(token); ok {
			return v
		}
		return marker
	})
}

// Tokens lists the distinct placeholder tokens of tpl in order of first appearance.
func Tokens(tpl string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholder.FindAllStringSubmatch(tpl, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Unresolved lists the tokens of tpl that have no binding in b.
func Unresolved(tpl string, b Bindings) []string {
	var out []string
	for _, tok := range Tokens(tpl) {
		if _, ok := b[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}
