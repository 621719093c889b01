package validation

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Func is a validator. See schema.ValidatorFunc for the accepted results.
type Func = schema.ValidatorFunc

// Built-in validator names.
const (
	ValidatorRequired     = "required"
	ValidatorNumber       = "number"
	ValidatorInteger      = "integer"
	ValidatorDouble       = "double"
	ValidatorString       = "string"
	ValidatorArray        = "array"
	ValidatorRegexp       = "regexp"
	ValidatorEmail        = "email"
	ValidatorURL          = "url"
	ValidatorAlpha        = "alpha"
	ValidatorAlphaNumeric = "alphaNumeric"
)

// Registry maps validator names to functions. The latest registration for a
// name wins.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry constructs a registry with the built-in validators registered,
// rendering their messages through messages (English when nil).
func NewRegistry(messages *Messages) *Registry {
	reg := &Registry{funcs: make(map[string]Func)}
	if messages == nil {
		messages = DefaultMessages()
	}
	reg.registerBuiltins(messages)
	return reg
}

// Register adds or replaces a validator. Empty names and nil functions are
// ignored.
func (r *Registry) Register(name string, fn Func) {
	if r == nil || fn == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = make(map[string]Func)
	}
	r.funcs[trimmed] = fn
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[strings.TrimSpace(name)]
	return fn, ok
}

// Names lists registered validators in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) registerBuiltins(m *Messages) {
	r.Register(ValidatorRequired, required(m))
	r.Register(ValidatorNumber, number(m))
	r.Register(ValidatorInteger, integer(m))
	r.Register(ValidatorDouble, double(m))
	r.Register(ValidatorString, text(m))
	r.Register(ValidatorArray, array(m))
	r.Register(ValidatorRegexp, pattern(m))
	r.Register(ValidatorEmail, email(m))
	r.Register(ValidatorURL, link(m))
	r.Register(ValidatorAlpha, alpha(m))
	r.Register(ValidatorAlphaNumeric, alphaNumeric(m))
}
