// Package kind classifies runtime values into the canonical type names the
// resolver branches on (String, Number, Object, Array, ...). Classification is
// derived from the value's reflect kind rather than from interface checks so
// nil, slices and maps are always told apart from one another.
package kind

import (
	"math/big"
	"reflect"
	"time"
)

// Kind is the canonical type name of a value.
type Kind string

const (
	String    Kind = "String"
	Number    Kind = "Number"
	BigInt    Kind = "BigInt"
	Boolean   Kind = "Boolean"
	Object    Kind = "Object"
	Array     Kind = "Array"
	Function  Kind = "Function"
	Null      Kind = "Null"
	Date      Kind = "Date"
	Undefined Kind = "Undefined"
	Unknown   Kind = "Unknown"
)

type missing struct{}

// Missing is the sentinel for an absent value. Of reports it as Undefined.
var Missing any = missing{}

var (
	bigIntType = reflect.TypeOf(big.Int{})
	timeType   = reflect.TypeOf(time.Time{})
)

// Of returns the canonical type name of v.
func Of(v any) Kind {
	if v == nil {
		return Null
	}
	if _, ok := v.(missing); ok {
		return Undefined
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null
		}
		if rv.Type().Elem() == bigIntType {
			return BigInt
		}
		rv = rv.Elem()
	}

	switch rv.Type() {
	case bigIntType:
		return BigInt
	case timeType:
		return Date
	}

	switch rv.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null
		}
		return Array
	case reflect.Map:
		if rv.IsNil() {
			return Null
		}
		return Object
	case reflect.Struct:
		return Object
	case reflect.Func:
		if rv.IsNil() {
			return Null
		}
		return Function
	case reflect.Interface:
		if rv.IsNil() {
			return Null
		}
		return Of(rv.Elem().Interface())
	default:
		return Unknown
	}
}

// IsPrimitive reports whether k is one of String, Number or Boolean.
func IsPrimitive(k Kind) bool {
	return k == String || k == Number || k == Boolean
}

// Truthy mirrors loose truthiness: nil, false, zero numbers and empty strings
// are falsy; everything else, including empty collections, is truthy.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case missing:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0 && v == v
	case float32:
		return v != 0 && v == v
	case uint:
		return v != 0
	case uint64:
		return v != 0
	}
	switch Of(value) {
	case Null, Undefined:
		return false
	case Number:
		rv := reflect.Indirect(reflect.ValueOf(value))
		return !rv.IsZero()
	case String:
		return reflect.Indirect(reflect.ValueOf(value)).Len() > 0
	default:
		return true
	}
}
