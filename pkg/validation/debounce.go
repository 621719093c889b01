package validation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// debounceFor resolves the field debounce, then the form debounce, then
// fallback.
func (v *Validator) debounceFor(field *schema.Field, fallback time.Duration) time.Duration {
	if field != nil && field.ValidateDebounceTime != nil {
		return *field.ValidateDebounceTime
	}
	if v.opts.ValidateDebounceTime != nil {
		return *v.opts.ValidateDebounceTime
	}
	return fallback
}

// DebouncedValidate schedules a validation of field. Calls within the
// debounce window replace the pending run, so only the last one executes,
// with the value the field had at that call. The run is skipped if ctx is
// done by then.
func (v *Validator) DebouncedValidate(ctx context.Context, field *schema.Field, model map[string]any) {
	if field == nil {
		return
	}
	key := stateKey(field)
	delay := v.debounceFor(field, DefaultDebounce)
	value := FieldValue(field, model)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	st := v.stateLocked(key)
	st.timer.Stop()
	st.debounce++
	seq := st.debounce
	v.mu.Unlock()

	timer := v.clock.AfterFunc(delay, func() {
		v.mu.Lock()
		if st.debounce != seq || v.closed {
			v.mu.Unlock()
			return
		}
		st.timer = nil
		v.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := v.Validate(ctx, field, value, model, false); err != nil {
			v.logger.Warn("debounced validation failed", zap.String("field", key), zap.Error(err))
		}
	})

	v.mu.Lock()
	if st.debounce == seq {
		st.timer = timer
	}
	v.mu.Unlock()
}

// Cancel drops the pending debounced run of fieldID.
func (v *Validator) Cancel(fieldID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	st, ok := v.state[fieldID]
	if !ok {
		return
	}
	st.timer.Stop()
	st.timer = nil
	st.debounce++
}

// Close cancels every pending debounced run. Later DebouncedValidate calls
// are ignored.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	for _, st := range v.state {
		st.timer.Stop()
		st.timer = nil
		st.debounce++
	}
}

// UpdateModelValue writes newValue for field, through its Set hook when
// present, otherwise at its model path. After a write it publishes
// EventModelUpdated, runs OnChanged and, when ValidateAfterChanged is set,
// validates the field: debounced when a positive debounce is configured,
// immediately otherwise. It reports whether a write happened.
func (v *Validator) UpdateModelValue(ctx context.Context, field *schema.Field, model map[string]any, newValue, oldValue any) (bool, error) {
	if field == nil {
		return false, nil
	}

	switch {
	case field.Set != nil:
		field.Set(model, newValue)
	case field.Model != "":
		if _, err := modelpath.Set(model, field.Model, newValue); err != nil {
			return false, fmt.Errorf("validation: update field %q: %w", stateKey(field), err)
		}
	default:
		return false, nil
	}

	v.emit(Event{Type: EventModelUpdated, NewValue: newValue, ModelPath: field.Model, Field: field})

	if field.OnChanged != nil {
		field.OnChanged(model, newValue, oldValue, field)
	}

	if v.opts.ValidateAfterChanged {
		if v.debounceFor(field, 0) > 0 {
			v.DebouncedValidate(ctx, field, model)
		} else if _, err := v.ValidateField(ctx, field, model, false); err != nil {
			return true, err
		}
	}
	return true, nil
}
