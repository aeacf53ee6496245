// Package styling scopes widget stylesheets so their class names cannot
// collide with the page or with the chart library's own CSS.
package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ComponentStyle is a stylesheet whose class selectors were rewritten to
// hashed names.
type ComponentStyle struct {
	// Hash is derived from the source CSS
	Hash string

	// names maps original class names to scoped class names,
	// e.g. "search-option" -> "_a1b2c3_search-option"
	names map[string]string

	// CSS is the rewritten stylesheet
	CSS string
}

// Style parses css, scopes every class selector and returns the result.
func Style(css string) *ComponentStyle {
	sum := sha256.Sum256([]byte(css))
	hash := "_" + hex.EncodeToString(sum[:])[:6]

	css = removeComments(css)
	names := make(map[string]string)
	for _, name := range extractClassNames(css) {
		names[name] = hash + "_" + name
	}

	return &ComponentStyle{
		Hash:  hash,
		names: names,
		CSS:   rewrite(css, names),
	}
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// extractClassNames returns the class names used in selectors, sorted.
// Declaration blocks are skipped so values like "0.5px" are not taken for
// classes.
func extractClassNames(css string) []string {
	seen := make(map[string]bool)
	depth := 0
	for i := 0; i < len(css); i++ {
		switch c := css[i]; {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '.' && depth == 0:
			end := i + 1
			for end < len(css) && isNameByte(css[end]) {
				end++
			}
			if end > i+1 {
				seen[css[i+1:end]] = true
			}
			i = end - 1
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// rewrite replaces class selectors outside declaration blocks.
func rewrite(css string, names map[string]string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(css); i++ {
		c := css[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '.' && depth == 0:
			end := i + 1
			for end < len(css) && isNameByte(css[end]) {
				end++
			}
			if scoped, ok := names[css[i+1:end]]; ok {
				b.WriteByte('.')
				b.WriteString(scoped)
				i = end - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// removeComments removes CSS comments from the string
func removeComments(css string) string {
	var b strings.Builder
	for i := 0; i < len(css); i++ {
		if i < len(css)-1 && css[i] == '/' && css[i+1] == '*' {
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}
		b.WriteByte(css[i])
	}
	return b.String()
}

// Class returns the scoped class name for name. Unknown names are returned
// unchanged.
func (c *ComponentStyle) Class(name string) string {
	if c == nil {
		return name
	}
	if v, ok := c.names[name]; ok {
		return v
	}
	return name
}

// Classes returns several scoped class names separated by spaces.
func (c *ComponentStyle) Classes(names ...string) string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = c.Class(name)
	}
	return strings.Join(out, " ")
}

// Has returns whether a class name exists in this stylesheet
func (c *ComponentStyle) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.names[name]
	return ok
}
