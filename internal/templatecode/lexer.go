package templatecode

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string // identifier name, punctuation, or decoded string value
	num  float64
	pos  int
}

// punctuators are matched longest first. "?." followed by a digit is a
// conditional and a number, as in a?.5:1.
var punctuators = []string{
	"===", "!==",
	"?.", "=>", "&&", "||", "==", "!=", ">=", "<=",
	"(", ")", "[", "]", "{", "}", ",", ".", ":", ";", "?", "+", "-", "!", ">", "<",
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j

		case isDigit(c) || c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			j := i + 1
			for j < len(src) && (isDigit(src[j]) || src[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, syntaxError(i, "invalid number %q", src[i:j])
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], num: n, pos: i})
			i = j

		case c == '\'' || c == '"':
			s, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i = next

		case c == '`':
			return nil, syntaxError(i, "template literals are not supported, use + to join strings")

		default:
			matched := false
			for _, p := range punctuators {
				if strings.HasPrefix(src[i:], p) && !(p == "?." && i+2 < len(src) && isDigit(src[i+2])) {
					toks = append(toks, token{kind: tokPunct, text: p, pos: i})
					i += len(p)
					matched = true
					break
				}
			}
			if !matched {
				r, _ := utf8.DecodeRuneInString(src[i:])
				return nil, syntaxError(i, "unexpected character %q", r)
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// lexString decodes the quoted literal starting at src[start] and returns the
// value and the offset just past the closing quote.
func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var sb strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == quote:
			return sb.String(), i + 1, nil
		case c == '\n':
			return "", 0, syntaxError(start, "unterminated string literal")
		case c == '\\':
			if i+1 >= len(src) {
				return "", 0, syntaxError(start, "unterminated string literal")
			}
			esc := src[i+1]
			i += 2
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'u':
				if i+4 > len(src) {
					return "", 0, syntaxError(i, "invalid unicode escape")
				}
				code, err := strconv.ParseUint(src[i:i+4], 16, 32)
				if err != nil {
					return "", 0, syntaxError(i, "invalid unicode escape")
				}
				sb.WriteRune(rune(code))
				i += 4
			default:
				sb.WriteByte(esc)
			}
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return "", 0, syntaxError(start, "unterminated string literal")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
