// Package visibility defines the contract used to turn attribute rule strings
// (disabled, readonly, featured, required) into booleans against a form model.
package visibility

// Compiler parses a rule string into a Rule. Syntax errors are reported by
// Compile; Rule.Eval only fails on evaluation errors.
type Compiler interface {
	Compile(rule string) (Rule, error)
}

// Rule is a compiled attribute rule. fieldPath is the model path of the
// field the rule belongs to.
type Rule interface {
	Eval(fieldPath string, ctx Context) (bool, error)
}

// Context provides inputs to a Rule. Values is the form model while Extras
// carries caller context such as user roles or feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// CompilerFunc adapts a function into a Compiler.
type CompilerFunc func(rule string) (Rule, error)

// Compile delegates to the underlying function.
func (fn CompilerFunc) Compile(rule string) (Rule, error) {
	return fn(rule)
}

// RuleFunc adapts a function into a Rule.
type RuleFunc func(fieldPath string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn RuleFunc) Eval(fieldPath string, ctx Context) (bool, error) {
	return fn(fieldPath, ctx)
}
