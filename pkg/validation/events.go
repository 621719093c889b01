package validation

import (
	"context"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// EventType names a notification published by the Validator.
type EventType string

const (
	// EventValidated follows every validation pass that was not run on
	// behalf of a parent, and every late deferred result.
	EventValidated EventType = "validated"
	// EventModelUpdated follows every successful model write.
	EventModelUpdated EventType = "model-updated"
)

// Event is the payload of both notifications. Valid, Errors and Field are set
// for EventValidated; NewValue and ModelPath for EventModelUpdated.
type Event struct {
	Type EventType

	Valid  bool
	Errors []string
	Field  *schema.Field

	NewValue  any
	ModelPath string
}

// Listener receives events. Returned errors are handled by the bus.
type Listener func(ctx context.Context, event Event) error

// Subscribe registers fn for events of type kind and returns the function
// that removes it.
func (v *Validator) Subscribe(kind EventType, fn Listener) func() {
	if v == nil || v.bus == nil || fn == nil {
		return func() {}
	}
	return v.bus.Subscribe(string(kind), fn)
}

func (v *Validator) emit(event Event) {
	if v.bus != nil {
		v.bus.Emit(string(event.Type), event)
	}
}
