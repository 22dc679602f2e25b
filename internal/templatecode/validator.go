package templatecode

import (
	"errors"
	"strings"
)

// EntryPoint is the call every template must start with.
const EntryPoint = "React.createElement("

// MaxSourceLength bounds accepted template source.
const MaxSourceLength = 64 * 1024

// forbiddenIdentifiers may not appear as identifiers outside string literals.
var forbiddenIdentifiers = map[string]bool{
	"import":                  true,
	"export":                  true,
	"require":                 true,
	"eval":                    true,
	"Function":                true,
	"document":                true,
	"window":                  true,
	"globalThis":              true,
	"self":                    true,
	"fetch":                   true,
	"XMLHttpRequest":          true,
	"setTimeout":              true,
	"setInterval":             true,
	"dangerouslySetInnerHTML": true,
	"constructor":             true,
	"prototype":               true,
	"__proto__":               true,
}

// forbiddenSequences may not appear outside string literals.
var forbiddenSequences = []struct {
	seq    string
	reason string
}{
	{"```", "markdown code fence"},
	{"//", "comment"},
	{"/*", "comment"},
	{"*/", "comment"},
}

// Result is the outcome of Validate.
type Result struct {
	Valid    bool
	Reason   string
	Err      error     // wraps ErrInvalidTemplateStructure or ErrValidationSyntax
	Code     string    // normalized source
	Template *Template // parsed template when Valid
}

// Validate decides whether source is an acceptable template. Checks run in
// order and stop at the first failure: entry point, forbidden constructs,
// bracket balance, completion, then a full parse against the allow-lists.
func Validate(source string) Result {
	code := Normalize(source)
	res := Result{Code: code}

	tmpl, err := check(code)
	if err != nil {
		res.Err = err
		var tErr *Error
		if errors.As(err, &tErr) {
			res.Reason = tErr.Reason
		} else {
			res.Reason = err.Error()
		}
		return res
	}

	res.Valid = true
	res.Template = tmpl
	return res
}

// Compile validates source and returns the parsed template.
func Compile(source string) (*Template, error) {
	res := Validate(source)
	if !res.Valid {
		return nil, res.Err
	}
	return res.Template, nil
}

func check(code string) (*Template, error) {
	if len(code) > MaxSourceLength {
		return nil, structureError(-1, "template exceeds %d bytes", MaxSourceLength)
	}

	if !strings.HasPrefix(code, EntryPoint) {
		return nil, structureError(0, "template must start with %s", EntryPoint)
	}

	masked, unterminated := maskStrings(code)

	if err := checkForbidden(masked); err != nil {
		return nil, err
	}

	if unterminated >= 0 {
		return nil, syntaxError(unterminated, "unterminated string literal")
	}
	if err := checkBalance(masked); err != nil {
		return nil, err
	}

	if !strings.HasSuffix(code, ")") {
		return nil, syntaxError(len(code)-1, "template must end with a closing parenthesis")
	}

	return Parse(code)
}

// Normalize trims whitespace, one wrapping markdown fence pair and a trailing
// semicolon from model output.
func Normalize(source string) string {
	code := strings.TrimSpace(source)

	if strings.HasPrefix(code, "```") {
		if nl := strings.IndexByte(code, '\n'); nl >= 0 {
			code = code[nl+1:]
		} else {
			code = strings.TrimPrefix(code, "```")
		}
		code = strings.TrimSpace(code)
	}
	if strings.HasSuffix(code, "```") {
		code = strings.TrimSpace(strings.TrimSuffix(code, "```"))
	}

	code = strings.TrimSuffix(code, ";")
	return strings.TrimSpace(code)
}

// maskStrings replaces the contents of quoted string literals with spaces so
// later checks only see code. It returns the offset of an unterminated
// literal, or -1.
func maskStrings(code string) (string, int) {
	b := []byte(code)
	var quote byte
	start := -1
	for i := 0; i < len(b); i++ {
		c := b[i]
		if quote == 0 {
			if c == '\'' || c == '"' {
				quote = c
				start = i
			}
			continue
		}
		switch {
		case c == '\\':
			b[i] = ' '
			if i+1 < len(b) {
				i++
				b[i] = ' '
			}
		case c == quote:
			quote = 0
		case c == '\n':
			return string(b), start
		default:
			b[i] = ' '
		}
	}
	if quote != 0 {
		return string(b), start
	}
	return string(b), -1
}

func checkForbidden(masked string) error {
	for _, f := range forbiddenSequences {
		if idx := strings.Index(masked, f.seq); idx >= 0 {
			return structureError(idx, "%s is not allowed", f.reason)
		}
	}

	for i := 0; i < len(masked); {
		if !isIdentStart(masked[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(masked) && isIdentPart(masked[j]) {
			j++
		}
		word := masked[i:j]
		if forbiddenIdentifiers[word] {
			return structureError(i, "%q is not allowed", word)
		}
		i = j
	}
	return nil
}

func checkBalance(masked string) error {
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	var stack []int
	for i := 0; i < len(masked); i++ {
		c := masked[i]
		switch c {
		case '(', '[', '{':
			stack = append(stack, i)
		case ')', ']', '}':
			if len(stack) == 0 || masked[stack[len(stack)-1]] != pairs[c] {
				return syntaxError(i, "unbalanced %q", string(c))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return syntaxError(open, "unclosed %q", string(masked[open]))
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
