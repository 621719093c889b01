package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/kind"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

const extrasPrefix = "extras."

type scope struct {
	self string
	ctx  visibility.Context
}

type node interface {
	eval(s *scope) (bool, error)
}

type constant bool

func (c constant) eval(*scope) (bool, error) { return bool(c), nil }

type anyOf []node

func (n anyOf) eval(s *scope) (bool, error) {
	for _, term := range n {
		ok, err := term.eval(s)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

type allOf []node

func (n allOf) eval(s *scope) (bool, error) {
	for _, term := range n {
		ok, err := term.eval(s)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type negate struct{ inner node }

func (n negate) eval(s *scope) (bool, error) {
	ok, err := n.inner.eval(s)
	return !ok && err == nil, err
}

// ref is an operand. For $self, path holds the sub path after the marker.
type ref struct {
	self bool
	path string
}

func (r ref) resolve(s *scope) (any, bool) {
	if r.self {
		if s.self == "" {
			return nil, false
		}
		return find(s.ctx.Values, s.self+r.path)
	}
	if len(r.path) > len(extrasPrefix) && strings.EqualFold(r.path[:len(extrasPrefix)], extrasPrefix) {
		return find(s.ctx.Extras, r.path[len(extrasPrefix):])
	}
	return find(s.ctx.Values, r.path)
}

// find prefers a flattened key such as "cta.headline" over nested traversal.
func find(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	return modelpath.Get(values, path)
}

type truthy struct{ operand ref }

func (n truthy) eval(s *scope) (bool, error) {
	value, ok := n.operand.resolve(s)
	return ok && kind.Truthy(value), nil
}

type litKind uint8

const (
	litString litKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind litKind
	str  string
	num  float64
	flag bool
}

type comparison struct {
	operand ref
	op      tokKind
	want    literal
}

func (n comparison) eval(s *scope) (bool, error) {
	value, found := n.operand.resolve(s)
	if !found || value == kind.Missing {
		value = nil
	}

	switch n.want.kind {
	case litNull:
		return n.equality(value == nil)
	case litBool:
		return n.equality(asBool(value) == n.want.flag)
	case litString:
		return n.equality(asString(value) == n.want.str)
	case litNumber:
		got, ok := asNumber(value)
		if !ok {
			return n.op == tokNeq, nil
		}
		switch n.op {
		case tokLt:
			return got < n.want.num, nil
		case tokLte:
			return got <= n.want.num, nil
		case tokGt:
			return got > n.want.num, nil
		case tokGte:
			return got >= n.want.num, nil
		}
		return n.equality(got == n.want.num)
	}
	return false, fmt.Errorf("expr: unsupported literal")
}

func (n comparison) equality(equal bool) (bool, error) {
	switch n.op {
	case tokEq:
		return equal, nil
	case tokNeq:
		return !equal, nil
	}
	return false, fmt.Errorf("expr: operator needs a number")
}

func asBool(value any) bool {
	if text, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return parsed
		}
		return strings.TrimSpace(text) != ""
	}
	return kind.Truthy(value)
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}

func asNumber(value any) (float64, bool) {
	if text, ok := value.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		return n, err == nil
	}
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
