package templatecode

import (
	"bytes"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxRenderNodes bounds the number of HTML nodes a single render may emit.
const MaxRenderNodes = 20000

// element is an evaluated React.createElement call.
type element struct {
	el       *elementNode
	attrs    []html.Attribute
	children []any
}

// binding is one frame of arrow-function parameters.
type binding struct {
	name  string
	value any
}

type evaluator struct {
	data  map[string]any
	scope []binding
	nodes int
}

// Render evaluates the template against data (JSON-shaped: maps, slices,
// strings, float64 and bools) and returns the resulting HTML.
func (t *Template) Render(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	ev := &evaluator{data: data}

	root, err := ev.eval(t.root)
	if err != nil {
		return "", err
	}

	container := &html.Node{Type: html.ElementNode, Data: "div"}
	if err := ev.appendChild(container, root); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", renderError("failed to write html: %v", err)
		}
	}
	return buf.String(), nil
}

// ========================================
// Evaluation
// ========================================

func (ev *evaluator) eval(n node) (any, error) {
	switch n := n.(type) {
	case *literalNode:
		return n.value, nil

	case *identNode:
		for i := len(ev.scope) - 1; i >= 0; i-- {
			if ev.scope[i].name == n.name {
				return ev.scope[i].value, nil
			}
		}
		return ev.data, nil

	case *memberNode:
		target, err := ev.eval(n.target)
		if err != nil {
			return nil, err
		}
		return member(target, n.name), nil

	case *indexNode:
		target, err := ev.eval(n.target)
		if err != nil {
			return nil, err
		}
		index, err := ev.eval(n.index)
		if err != nil {
			return nil, err
		}
		return indexValue(target, index), nil

	case *callNode:
		return ev.evalCall(n)

	case *unaryNode:
		v, err := ev.eval(n.operand)
		if err != nil {
			return nil, err
		}
		if n.op == "!" {
			return !truthy(v), nil
		}
		if f, ok := v.(float64); ok {
			return -f, nil
		}
		return math.NaN(), nil

	case *binaryNode:
		return ev.evalBinary(n)

	case *condNode:
		test, err := ev.eval(n.test)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return ev.eval(n.then)
		}
		return ev.eval(n.otherwise)

	case *arrayNode:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			v, err := ev.eval(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case *objectNode:
		out := make(map[string]any, len(n.keys))
		for i, key := range n.keys {
			v, err := ev.eval(n.values[i])
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil

	case *elementNode:
		return ev.evalElement(n)
	}
	return nil, renderError("unsupported expression %T", n)
}

func (ev *evaluator) evalBinary(n *binaryNode) (any, error) {
	left, err := ev.eval(n.left)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "&&":
		if !truthy(left) {
			return left, nil
		}
		return ev.eval(n.right)
	case "||":
		if truthy(left) {
			return left, nil
		}
		return ev.eval(n.right)
	}

	right, err := ev.eval(n.right)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "+":
		lf, lok := left.(float64)
		rf, rok := right.(float64)
		if lok && rok {
			return lf + rf, nil
		}
		return toString(left) + toString(right), nil
	case "-":
		lf, lok := left.(float64)
		rf, rok := right.(float64)
		if lok && rok {
			return lf - rf, nil
		}
		return math.NaN(), nil
	case "===", "==":
		return equal(left, right), nil
	case "!==", "!=":
		return !equal(left, right), nil
	case ">", "<", ">=", "<=":
		return compare(n.op, left, right), nil
	}
	return nil, renderError("unsupported operator %q", n.op)
}

func (ev *evaluator) evalCall(n *callNode) (any, error) {
	target, err := ev.eval(n.target)
	if err != nil {
		return nil, err
	}

	switch n.method {
	case "map", "filter":
		if target == nil {
			return []any{}, nil
		}
		items, ok := target.([]any)
		if !ok {
			return nil, renderError("%s called on a non-list value", n.method)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := ev.callLambda(n.fn, item, float64(i))
			if err != nil {
				return nil, err
			}
			if n.method == "map" {
				out = append(out, v)
			} else if truthy(v) {
				out = append(out, item)
			}
		}
		return out, nil

	case "join":
		sep := ","
		if len(n.args) == 1 {
			v, err := ev.eval(n.args[0])
			if err != nil {
				return nil, err
			}
			sep = toString(v)
		}
		items, _ := target.([]any)
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, toString(item))
		}
		return strings.Join(parts, sep), nil

	case "slice":
		args := make([]float64, 0, len(n.args))
		for _, a := range n.args {
			v, err := ev.eval(a)
			if err != nil {
				return nil, err
			}
			f, _ := v.(float64)
			args = append(args, f)
		}
		return sliceValue(target, args), nil

	case "toUpperCase":
		return strings.ToUpper(toString(target)), nil
	case "toLowerCase":
		return strings.ToLower(toString(target)), nil
	case "trim":
		return strings.TrimSpace(toString(target)), nil
	}
	return nil, renderError("unsupported method %q", n.method)
}

func (ev *evaluator) callLambda(fn *lambdaNode, item any, index float64) (any, error) {
	saved := len(ev.scope)
	ev.scope = append(ev.scope, binding{name: fn.params[0], value: item})
	if len(fn.params) > 1 {
		ev.scope = append(ev.scope, binding{name: fn.params[1], value: index})
	}
	defer func() { ev.scope = ev.scope[:saved] }()
	return ev.eval(fn.body)
}

func (ev *evaluator) evalElement(n *elementNode) (any, error) {
	ev.nodes++
	if ev.nodes > MaxRenderNodes {
		return nil, renderError("template produced more than %d elements", MaxRenderNodes)
	}

	el := &element{el: n}
	for _, prop := range n.props {
		if prop.attr == "" {
			continue
		}
		v, err := ev.eval(prop.value)
		if err != nil {
			return nil, err
		}
		if prop.name == "style" {
			if css := styleString(prop.value.(*objectNode), v); css != "" {
				el.attrs = append(el.attrs, html.Attribute{Key: "style", Val: css})
			}
			continue
		}
		if v == nil || v == false {
			continue
		}
		val := toString(v)
		if v == true {
			val = ""
		}
		if prop.name == "href" && !isSafeURL(val) {
			continue
		}
		el.attrs = append(el.attrs, html.Attribute{Key: prop.attr, Val: val})
	}

	for _, child := range n.children {
		v, err := ev.eval(child)
		if err != nil {
			return nil, err
		}
		el.children = append(el.children, v)
	}
	return el, nil
}

// styleString renders a style object in declaration order, dropping
// declarations with unsafe or empty values.
func styleString(decl *objectNode, v any) string {
	values, _ := v.(map[string]any)
	var parts []string
	for _, key := range decl.keys {
		raw, ok := values[key]
		if !ok || raw == nil {
			continue
		}
		var val string
		switch rv := raw.(type) {
		case float64:
			val = formatNumber(rv)
			if !unitlessCSS[key] && rv != 0 {
				val += "px"
			}
		default:
			val = strings.TrimSpace(toString(rv))
		}
		if val == "" || !isSafeCSSValue(val) {
			continue
		}
		name := key
		if !strings.Contains(key, "-") {
			name = cssName(key)
		}
		parts = append(parts, name+": "+val)
	}
	return strings.Join(parts, "; ")
}

// ========================================
// HTML output
// ========================================

func (ev *evaluator) appendChild(parent *html.Node, v any) error {
	switch v := v.(type) {
	case nil, bool:
		return nil
	case string:
		if v != "" {
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		}
	case float64:
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: formatNumber(v)})
	case []any:
		for _, item := range v {
			if err := ev.appendChild(parent, item); err != nil {
				return err
			}
		}
	case *element:
		if v.el.tag == 0 {
			for _, child := range v.children {
				if err := ev.appendChild(parent, child); err != nil {
					return err
				}
			}
			return nil
		}
		n := &html.Node{
			Type:     html.ElementNode,
			DataAtom: v.el.tag,
			Data:     v.el.tag.String(),
			Attr:     v.attrs,
		}
		parent.AppendChild(n)
		if voidTags[v.el.tag] {
			return nil
		}
		for _, child := range v.children {
			if err := ev.appendChild(n, child); err != nil {
				return err
			}
		}
	case map[string]any:
		return renderError("objects are not valid as element children")
	default:
		return renderError("unsupported child value %T", v)
	}
	return nil
}

// ========================================
// Value helpers
// ========================================

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	}
	return true
}

// toString converts a value the way string concatenation does. Missing
// values become empty strings.
func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = toString(item)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func member(target any, name string) any {
	switch t := target.(type) {
	case map[string]any:
		return t[name]
	case []any:
		if name == "length" {
			return float64(len(t))
		}
	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(t))
		}
	}
	return nil
}

func indexValue(target, index any) any {
	switch t := target.(type) {
	case []any:
		if f, ok := index.(float64); ok && f >= 0 && f == math.Trunc(f) && int(f) < len(t) {
			return t[int(f)]
		}
	case map[string]any:
		if s, ok := index.(string); ok {
			return t[s]
		}
	}
	return nil
}

func sliceValue(target any, args []float64) any {
	clamp := func(f float64, n int) int {
		i := int(f)
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	bounds := func(n int) (int, int) {
		start, end := 0, n
		if len(args) > 0 {
			start = clamp(args[0], n)
		}
		if len(args) > 1 {
			end = clamp(args[1], n)
		}
		return start, max(start, end)
	}

	switch t := target.(type) {
	case []any:
		start, end := bounds(len(t))
		return slices.Clone(t[start:end])
	case string:
		runes := []rune(t)
		start, end := bounds(len(runes))
		return string(runes[start:end])
	}
	return []any{}
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool, float64, string:
		return a == b
	case *element:
		bv, ok := b.(*element)
		return ok && av == bv
	}
	return false
}

func compare(op string, a, b any) bool {
	var c int
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		switch {
		case av < bv:
			c = -1
		case av > bv:
			c = 1
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			return false
		}
		c = strings.Compare(av, bv)
	default:
		return false
	}

	switch op {
	case ">":
		return c > 0
	case "<":
		return c < 0
	case ">=":
		return c >= 0
	default:
		return c <= 0
	}
}
