package templatecode

import (
	"slices"
	"strings"

	"golang.org/x/net/html/atom"
)

// allowedTags are the layout, text, list and table elements a template may emit.
var allowedTags = map[atom.Atom]bool{
	atom.Div: true, atom.Span: true, atom.P: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Header: true, atom.Footer: true, atom.Main: true,
	atom.Article: true, atom.Aside: true, atom.Nav: true, atom.Address: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Strong: true, atom.Em: true, atom.B: true, atom.I: true, atom.U: true,
	atom.Small: true, atom.Sup: true, atom.Sub: true, atom.Mark: true, atom.Abbr: true,
	atom.Time: true, atom.Blockquote: true, atom.A: true, atom.Br: true, atom.Hr: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

// voidTags never carry children.
var voidTags = map[atom.Atom]bool{atom.Br: true, atom.Hr: true}

// allowedProps maps accepted prop names to their HTML attribute names.
var allowedProps = map[string]string{
	"className": "class",
	"id":        "id",
	"title":     "title",
	"href":      "href",
	"role":      "role",
	"lang":      "lang",
	"colSpan":   "colspan",
	"rowSpan":   "rowspan",
	"dateTime":  "datetime",
	"style":     "style",
	"key":       "",
}

// unitlessCSS lists properties whose numeric values take no px suffix.
var unitlessCSS = map[string]bool{
	"lineHeight": true, "fontWeight": true, "opacity": true, "zIndex": true,
	"flex": true, "flexGrow": true, "flexShrink": true, "order": true,
}

// AllowedTags returns the accepted tag names in sorted order.
func AllowedTags() []string {
	tags := make([]string, 0, len(allowedTags))
	for a := range allowedTags {
		tags = append(tags, a.String())
	}
	slices.Sort(tags)
	return tags
}

// lookupTag returns the atom for an allowed tag name.
func lookupTag(name string) (atom.Atom, bool) {
	a := atom.Lookup([]byte(name))
	if a == 0 || a.String() != name {
		return 0, false
	}
	return a, allowedTags[a]
}

// checkProp reports whether a prop name may be used and returns its
// attribute name ("" for props that are not rendered).
func checkProp(name string, offset int) (string, error) {
	if strings.HasPrefix(name, "on") && len(name) > 2 && name[2] >= 'A' && name[2] <= 'Z' {
		return "", structureError(offset, "event handler %q is not allowed", name)
	}
	if attr, ok := allowedProps[name]; ok {
		return attr, nil
	}
	if (strings.HasPrefix(name, "aria-") || strings.HasPrefix(name, "data-")) && isAttrName(name) {
		return name, nil
	}
	return "", structureError(offset, "prop %q is not allowed", name)
}

func isAttrName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

// isCSSProperty accepts camelCase or kebab-case property names.
func isCSSProperty(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-') {
			return false
		}
	}
	return true
}

// cssName converts camelCase to the kebab-case CSS property name.
func cssName(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			sb.WriteByte('-')
			sb.WriteByte(c + ('a' - 'A'))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// isSafeCSSValue rejects values that could load resources or escape the declaration.
func isSafeCSSValue(v string) bool {
	lower := strings.ToLower(v)
	for _, bad := range []string{"url(", "expression(", "javascript:", "@import", "behavior:", "-moz-binding"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return !strings.ContainsAny(v, ";{}<>\\\"")
}

// isSafeURL allows http(s), mailto, tel and scheme-less links.
func isSafeURL(raw string) bool {
	// Browsers ignore control characters and spaces inside the scheme.
	cleaned := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	lower := strings.ToLower(cleaned)

	colon := strings.IndexByte(lower, ':')
	if colon < 0 {
		return true
	}
	if sep := strings.IndexAny(lower, "/?#"); sep >= 0 && sep < colon {
		return true
	}
	switch lower[:colon] {
	case "http", "https", "mailto", "tel":
		return true
	}
	return false
}
