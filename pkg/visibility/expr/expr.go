// Package expr compiles attribute rules such as
//
//	profile.status == "locked" && !extras.admin
//	$self != null || (count >= 3 && kind != 'draft')
//
// into reusable Rules.
//
// Operands are model paths (dot and bracket addressing), `extras.` paths into
// the caller extras, and `$self`, the model path of the field the rule is
// attached to, optionally followed by a sub path (`$self.city`, `$self[0]`).
// An operand on its own tests truthiness. Comparisons take a literal on the
// right: a quoted string, a number, true, false, null or a bare word, which
// is read as a string. Ordering operators (<, <=, >, >=) need a number.
package expr

import (
	"strings"

	"github.com/goliatone/go-formengine/pkg/visibility"
)

// Rule is a parsed rule.
type Rule struct {
	source string
	root   node
}

// Compile parses rule. A blank rule always evaluates to true.
func Compile(rule string) (*Rule, error) {
	source := strings.TrimSpace(rule)
	if source == "" {
		return &Rule{root: constant(true)}, nil
	}
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	return &Rule{source: source, root: root}, nil
}

// MustCompile is like Compile but panics on syntax errors.
func MustCompile(rule string) *Rule {
	r, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return r
}

// Eval evaluates the rule for the field at fieldPath.
func (r *Rule) Eval(fieldPath string, ctx visibility.Context) (bool, error) {
	if r == nil || r.root == nil {
		return true, nil
	}
	return r.root.eval(&scope{self: strings.TrimSpace(fieldPath), ctx: ctx})
}

// String returns the trimmed rule source.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Compiler implements visibility.Compiler with Compile.
type Compiler struct{}

// New returns the default rule compiler.
func New() *Compiler { return &Compiler{} }

// Compile implements visibility.Compiler.
func (*Compiler) Compile(rule string) (visibility.Rule, error) {
	r, err := Compile(rule)
	if err != nil {
		return nil, err
	}
	return r, nil
}
