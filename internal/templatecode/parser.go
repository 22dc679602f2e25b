package templatecode

import (
	"slices"
	"strings"

	"golang.org/x/net/html/atom"
)

// maxDepth bounds expression nesting.
const maxDepth = 128

// dataRoots are the identifiers bound to the resume data.
var dataRoots = []string{"resumeData", "data"}

// methods maps the callable methods to their [min, max] argument counts.
// map and filter take a single arrow function.
var methods = map[string][2]int{
	"map":         {1, 1},
	"filter":      {1, 1},
	"join":        {0, 1},
	"slice":       {0, 2},
	"toUpperCase": {0, 0},
	"toLowerCase": {0, 0},
	"trim":        {0, 0},
}

// ========================================
// AST
// ========================================

type node interface{}

type literalNode struct{ value any }

type identNode struct{ name string }

type memberNode struct {
	target node
	name   string
}

type indexNode struct {
	target node
	index  node
}

type lambdaNode struct {
	params []string
	body   node
}

type callNode struct {
	target node
	method string
	args   []node
	fn     *lambdaNode
}

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

type condNode struct {
	test, then, otherwise node
}

type arrayNode struct{ items []node }

type objectNode struct {
	keys   []string
	values []node
}

type propNode struct {
	name  string
	attr  string
	value node
}

type elementNode struct {
	tag      atom.Atom // 0 for React.Fragment
	props    []propNode
	children []node
}

// Template is a parsed, allow-listed template ready to render.
type Template struct {
	root   *elementNode
	source string
}

// Source returns the normalized source the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Parse builds a Template from normalized source. It accepts exactly one
// React.createElement expression.
func Parse(source string) (*Template, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxError(tok.pos, "unexpected %q after template expression", tok.text)
	}
	el, ok := root.(*elementNode)
	if !ok {
		return nil, structureError(0, "template must be a single React.createElement call")
	}
	return &Template{root: el, source: source}, nil
}

type parser struct {
	toks  []token
	pos   int
	depth int
	scope []string
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.kind == tokPunct && tok.text == text
}

func (p *parser) accept(text string) bool {
	if p.isPunct(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if p.accept(text) {
		return nil
	}
	tok := p.peek()
	if tok.kind == tokEOF {
		return syntaxError(tok.pos, "expected %q but reached end of template", text)
	}
	return syntaxError(tok.pos, "expected %q, found %q", text, tok.text)
}

func (p *parser) expectIdent() (token, error) {
	tok := p.next()
	if tok.kind != tokIdent {
		return tok, syntaxError(tok.pos, "expected identifier, found %q", tok.text)
	}
	return tok, nil
}

func (p *parser) inScope(name string) bool {
	return slices.Contains(p.scope, name)
}

// ========================================
// Expressions
// ========================================

func (p *parser) parseExpr() (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, syntaxError(p.peek().pos, "expression nested too deeply")
	}

	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return test, nil
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &condNode{test: test, then: then, otherwise: otherwise}, nil
}

// binaryLevels lists operators from lowest to highest precedence.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"===", "!==", "==", "!="},
	{">", "<", ">=", "<="},
	{"+", "-"},
}

func (p *parser) parseBinary(level int) (node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokPunct || !slices.Contains(binaryLevels[level], tok.text) {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.isPunct("!") || p.isPunct("-") {
		op := p.next().text
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxDepth {
			return nil, syntaxError(p.peek().pos, "expression nested too deeply")
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary)
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return &literalNode{value: tok.text}, nil
	case tokNumber:
		return &literalNode{value: tok.num}, nil
	case tokEOF:
		return nil, syntaxError(tok.pos, "unexpected end of template")
	case tokPunct:
		switch tok.text {
		case "(":
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			return p.parseArray()
		case "{":
			return p.parseObject()
		}
		return nil, syntaxError(tok.pos, "unexpected %q", tok.text)
	}

	switch tok.text {
	case "true":
		return &literalNode{value: true}, nil
	case "false":
		return &literalNode{value: false}, nil
	case "null", "undefined":
		return &literalNode{value: nil}, nil
	case "React":
		return p.parseReact(tok)
	}
	if slices.Contains(dataRoots, tok.text) || p.inScope(tok.text) {
		return &identNode{name: tok.text}, nil
	}
	return nil, structureError(tok.pos, "unknown identifier %q", tok.text)
}

func (p *parser) parseReact(reactTok token) (node, error) {
	if err := p.expect("."); err != nil {
		return nil, err
	}
	member, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch member.text {
	case "createElement":
		return p.parseElement()
	case "Fragment":
		return nil, structureError(member.pos, "React.Fragment may only be used as an element tag")
	}
	return nil, structureError(reactTok.pos, "React.%s is not allowed", member.text)
}

func (p *parser) parsePostfix(target node) (node, error) {
	for {
		switch {
		case p.isPunct(".") || p.isPunct("?."):
			p.next()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if p.isPunct("(") {
				target, err = p.parseCall(target, name)
				if err != nil {
					return nil, err
				}
				continue
			}
			target = &memberNode{target: target, name: name.text}

		case p.isPunct("["):
			p.next()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			target = &indexNode{target: target, index: index}

		case p.isPunct("("):
			return nil, structureError(p.peek().pos, "only map, filter, join, slice and string case methods may be called")

		default:
			return target, nil
		}
	}
}

func (p *parser) parseCall(target node, name token) (node, error) {
	arity, ok := methods[name.text]
	if !ok {
		return nil, structureError(name.pos, "method %q is not allowed", name.text)
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}

	call := &callNode{target: target, method: name.text}
	if name.text == "map" || name.text == "filter" {
		fn, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		call.fn = fn
		p.accept(",")
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return call, nil
	}

	for !p.isPunct(")") {
		if len(call.args) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
			if p.isPunct(")") {
				break
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
	}
	p.next()

	if len(call.args) < arity[0] || len(call.args) > arity[1] {
		return nil, syntaxError(name.pos, "%s takes %d to %d arguments, got %d", name.text, arity[0], arity[1], len(call.args))
	}
	return call, nil
}

// parseLambda accepts `x => body` and `(x, i) => body`, where body is an
// expression or a block holding a single return statement.
func (p *parser) parseLambda() (*lambdaNode, error) {
	var params []string
	if p.accept("(") {
		for !p.isPunct(")") {
			if len(params) > 0 {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
			param, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, param.text)
		}
		p.next()
	} else {
		param, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, param.text)
	}
	if len(params) == 0 || len(params) > 2 {
		return nil, syntaxError(p.peek().pos, "arrow functions take one or two parameters")
	}
	for _, name := range params {
		if name == "React" || slices.Contains(dataRoots, name) {
			return nil, structureError(p.peek().pos, "parameter %q shadows a reserved name", name)
		}
	}
	if err := p.expect("=>"); err != nil {
		return nil, err
	}

	saved := p.scope
	p.scope = append(slices.Clone(p.scope), params...)
	defer func() { p.scope = saved }()

	var body node
	var err error
	if p.isPunct("{") && p.peekAt(1).kind == tokIdent && p.peekAt(1).text == "return" {
		p.next()
		p.next()
		if body, err = p.parseExpr(); err != nil {
			return nil, err
		}
		p.accept(";")
		if err := p.expect("}"); err != nil {
			return nil, err
		}
	} else if body, err = p.parseExpr(); err != nil {
		return nil, err
	}
	return &lambdaNode{params: params, body: body}, nil
}

func (p *parser) parseArray() (node, error) {
	arr := &arrayNode{}
	for !p.isPunct("]") {
		if len(arr.items) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
			if p.isPunct("]") {
				break
			}
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, item)
	}
	p.next()
	return arr, nil
}

// parseObject parses an object literal after its opening brace. Keys must be
// identifiers or string literals.
func (p *parser) parseObject() (*objectNode, error) {
	obj := &objectNode{}
	for !p.isPunct("}") {
		if len(obj.keys) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
			if p.isPunct("}") {
				break
			}
		}
		keyTok := p.next()
		if keyTok.kind != tokIdent && keyTok.kind != tokString {
			return nil, syntaxError(keyTok.pos, "expected object key, found %q", keyTok.text)
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		obj.keys = append(obj.keys, keyTok.text)
		obj.values = append(obj.values, value)
	}
	p.next()
	return obj, nil
}

// ========================================
// Elements
// ========================================

func (p *parser) parseElement() (node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	el := &elementNode{}
	tagTok := p.next()
	switch {
	case tagTok.kind == tokString:
		a, ok := lookupTag(tagTok.text)
		if !ok {
			return nil, structureError(tagTok.pos, "element <%s> is not allowed", tagTok.text)
		}
		el.tag = a
	case tagTok.kind == tokIdent && tagTok.text == "React":
		if err := p.expect("."); err != nil {
			return nil, err
		}
		frag, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if frag.text != "Fragment" {
			return nil, structureError(frag.pos, "element tag must be a string or React.Fragment")
		}
	case tagTok.kind == tokEOF:
		return nil, syntaxError(tagTok.pos, "unexpected end of template")
	default:
		return nil, structureError(tagTok.pos, "element tag must be a string or React.Fragment")
	}

	if p.accept(",") && !p.isPunct(")") {
		props, err := p.parseProps()
		if err != nil {
			return nil, err
		}
		el.props = props

		for p.accept(",") {
			if p.isPunct(")") {
				break
			}
			child, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return el, nil
}

func (p *parser) parseProps() ([]propNode, error) {
	tok := p.peek()
	if tok.kind == tokIdent && (tok.text == "null" || tok.text == "undefined") {
		p.next()
		return nil, nil
	}
	if !p.accept("{") {
		return nil, structureError(tok.pos, "element props must be an object literal or null")
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}

	props := make([]propNode, 0, len(obj.keys))
	for i, name := range obj.keys {
		attr, err := checkProp(name, tok.pos)
		if err != nil {
			return nil, err
		}
		value := obj.values[i]
		switch name {
		case "style":
			if err := checkStyle(value, tok.pos); err != nil {
				return nil, err
			}
		case "href":
			if lit, ok := value.(*literalNode); ok {
				if s, ok := lit.value.(string); ok && !isSafeURL(s) {
					return nil, structureError(tok.pos, "href %q uses a disallowed scheme", s)
				}
			}
		}
		props = append(props, propNode{name: name, attr: attr, value: value})
	}
	return props, nil
}

func checkStyle(value node, pos int) error {
	obj, ok := value.(*objectNode)
	if !ok {
		return structureError(pos, "style must be an object literal")
	}
	for i, key := range obj.keys {
		if !isCSSProperty(key) {
			return structureError(pos, "style property %q is not allowed", key)
		}
		if lit, ok := obj.values[i].(*literalNode); ok {
			if s, ok := lit.value.(string); ok && !isSafeCSSValue(s) {
				return structureError(pos, "style value %q is not allowed", strings.TrimSpace(s))
			}
		}
	}
	return nil
}
