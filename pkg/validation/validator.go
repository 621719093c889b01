// Package validation runs field validators, debounces repeated runs per field
// and publishes the outcome on an event bus.
//
// The field tree and the model are single-writer by convention: the Validator
// guards its own per-field state, but callers must serialise writes to the
// model and the tree.
package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formengine/internal/clock"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// DefaultDebounce applies when neither the field nor the options set a
// debounce time.
const DefaultDebounce = 500 * time.Millisecond

// Options are the form level validation settings.
type Options struct {
	// ValidateAsync runs every validator of a field concurrently and waits
	// for deferred results before returning.
	ValidateAsync bool
	// ValidateAfterChanged validates a field after UpdateModelValue writes it.
	ValidateAfterChanged bool
	// ValidateDebounceTime is the form wide debounce; nil means unset.
	ValidateDebounceTime *time.Duration
	// Extras is handed to computed attributes as their context.
	Extras map[string]any
}

// Option customises a Validator.
type Option func(*Validator)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock replaces the clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(v *Validator) {
		if c != nil {
			v.clock = c
		}
	}
}

// WithRegistry replaces the validator registry.
func WithRegistry(registry *Registry) Option {
	return func(v *Validator) {
		if registry != nil {
			v.registry = registry
		}
	}
}

// WithBus publishes events on an existing bus instead of a private one.
func WithBus(bus *events.TypedEventBus[Event]) Option {
	return func(v *Validator) {
		if bus != nil {
			v.bus = bus
		}
	}
}

type fieldState struct {
	errors     []string
	generation uint64
	timer      *clock.Timer
	debounce   uint64
}

// Validator validates fields of one form instance. State is keyed by
// FieldID, falling back to the model path for fields without one.
type Validator struct {
	opts     Options
	registry *Registry
	logger   *zap.Logger
	clock    clock.Clock
	bus      *events.TypedEventBus[Event]

	mu     sync.Mutex
	state  map[string]*fieldState
	closed bool
}

// New builds a Validator.
func New(opts Options, options ...Option) (*Validator, error) {
	v := &Validator{
		opts:   opts,
		logger: zap.NewNop(),
		clock:  clock.Real(),
		state:  make(map[string]*fieldState),
	}
	for _, option := range options {
		if option != nil {
			option(v)
		}
	}
	if v.registry == nil {
		v.registry = NewRegistry(nil)
	}
	if v.bus == nil {
		bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("validation: create event bus: %w", err)
		}
		v.bus = bus
	}
	return v, nil
}

// Options returns the form level settings.
func (v *Validator) Options() Options {
	return v.opts
}

// Registry returns the validator registry.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// FieldValue reads the current value of field, through its Get hook when set.
func FieldValue(field *schema.Field, model map[string]any) any {
	if field == nil {
		return nil
	}
	if field.Get != nil {
		return field.Get(model)
	}
	value, _ := modelpath.Get(model, field.Model)
	return value
}

func stateKey(field *schema.Field) string {
	if field.FieldID != "" {
		return field.FieldID
	}
	return field.Model
}

// Validate runs the validators of field against value and returns the
// resulting messages; an empty slice means valid. Disabled validation, and
// readonly or disabled fields, are valid without running anything.
//
// In sync mode a validator returning a *Deferred does not hold up the call:
// its messages are appended to the stored errors once it resolves and a
// second EventValidated is published. In async mode every validator runs
// concurrently and the call waits for all of them; it only fails when ctx
// ends first. Results from a pass superseded by a newer call are dropped.
func (v *Validator) Validate(ctx context.Context, field *schema.Field, value any, model map[string]any, calledFromParent bool) ([]string, error) {
	if field == nil {
		return []string{}, nil
	}
	key := stateKey(field)
	generation := v.begin(key)

	if field.DisableValidator {
		return []string{}, nil
	}

	var results []any
	var deferred []*Deferred
	flags := field.Flags(model, v.opts.Extras)
	if field.HasValidator() && !flags.Readonly && !flags.Disabled {
		funcs := v.resolve(field)
		if v.opts.ValidateAsync {
			var err error
			if results, err = v.runAsync(ctx, funcs, value, field, model); err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", key, err)
			}
		} else {
			results, deferred = v.runSync(ctx, funcs, value, field, model)
		}
	}

	errs := merge(results)
	if field.OnValidated != nil {
		field.OnValidated(model, errs, field)
	}

	if v.store(key, generation, errs) && !calledFromParent {
		v.emit(Event{Type: EventValidated, Valid: len(errs) == 0, Errors: cloneStrings(errs), Field: field})
	}

	for _, d := range deferred {
		go v.await(ctx, key, generation, field, d)
	}
	return errs, nil
}

// ValidateField validates the current model value of field.
func (v *Validator) ValidateField(ctx context.Context, field *schema.Field, model map[string]any, calledFromParent bool) ([]string, error) {
	return v.Validate(ctx, field, FieldValue(field, model), model, calledFromParent)
}

func (v *Validator) resolve(field *schema.Field) []Func {
	funcs := make([]Func, 0, len(field.Validator))
	for _, ref := range field.Validator {
		if ref.Func != nil {
			funcs = append(funcs, ref.Func)
			continue
		}
		fn, ok := v.registry.Lookup(ref.Name)
		if !ok {
			v.logger.Warn("unknown validator",
				zap.String("validator", ref.Name),
				zap.String("field", field.FieldID),
			)
			continue
		}
		funcs = append(funcs, fn)
	}
	return funcs
}

func (v *Validator) invoke(ctx context.Context, fn Func, value any, field *schema.Field, model map[string]any) (result any) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validator panicked",
				zap.String("field", field.FieldID),
				zap.Any("panic", r),
			)
			result = nil
		}
	}()
	return fn(ctx, value, field, model)
}

func (v *Validator) runSync(ctx context.Context, funcs []Func, value any, field *schema.Field, model map[string]any) ([]any, []*Deferred) {
	var results []any
	var deferred []*Deferred
	for _, fn := range funcs {
		result := v.invoke(ctx, fn, value, field, model)
		if d, ok := result.(*Deferred); ok {
			deferred = append(deferred, d)
			continue
		}
		for _, msg := range messages(result) {
			results = append(results, msg)
		}
	}
	return results, deferred
}

func (v *Validator) runAsync(ctx context.Context, funcs []Func, value any, field *schema.Field, model map[string]any) ([]any, error) {
	results := make([]any, len(funcs))
	g, gctx := errgroup.WithContext(ctx)
	for idx, fn := range funcs {
		g.Go(func() error {
			result := v.invoke(gctx, fn, value, field, model)
			if d, ok := result.(*Deferred); ok {
				var err error
				if result, err = d.Wait(gctx); err != nil {
					return err
				}
			}
			results[idx] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (v *Validator) await(ctx context.Context, key string, generation uint64, field *schema.Field, d *Deferred) {
	result, err := d.Wait(ctx)
	if err != nil {
		return
	}
	msgs := messages(result)

	v.mu.Lock()
	st := v.stateLocked(key)
	if st.generation != generation {
		v.mu.Unlock()
		v.logger.Debug("dropping stale validator result", zap.String("field", key))
		return
	}
	st.errors = append(st.errors, msgs...)
	current := cloneStrings(st.errors)
	v.mu.Unlock()

	v.emit(Event{Type: EventValidated, Valid: len(current) == 0, Errors: current, Field: field})
}

// begin clears the stored errors and starts a new generation.
func (v *Validator) begin(key string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.stateLocked(key)
	st.generation++
	st.errors = []string{}
	return st.generation
}

// store records errs when generation is still current.
func (v *Validator) store(key string, generation uint64, errs []string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.stateLocked(key)
	if st.generation != generation {
		return false
	}
	st.errors = cloneStrings(errs)
	return true
}

func (v *Validator) stateLocked(key string) *fieldState {
	st, ok := v.state[key]
	if !ok {
		st = &fieldState{errors: []string{}}
		v.state[key] = st
	}
	return st
}

// Errors returns the latest errors stored for fieldID.
func (v *Validator) Errors(fieldID string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	st, ok := v.state[fieldID]
	if !ok {
		return []string{}
	}
	return cloneStrings(st.errors)
}

// Status returns a snapshot of the latest errors of every validated field.
func (v *Validator) Status() map[string][]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string][]string, len(v.state))
	for key, st := range v.state {
		out[key] = cloneStrings(st.errors)
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
