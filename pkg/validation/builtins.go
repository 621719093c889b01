package validation

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/goliatone/go-formengine/pkg/kind"
	"github.com/goliatone/go-formengine/pkg/schema"
)

var (
	emailPattern        = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	urlPattern          = regexp.MustCompile(`(?i)^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
	alphaPattern        = regexp.MustCompile(`^[a-zA-Z]*$`)
	alphaNumericPattern = regexp.MustCompile(`^[a-zA-Z0-9]*$`)
)

func isEmpty(value any) bool {
	if value == nil || value == kind.Missing {
		return true
	}
	text, ok := value.(string)
	return ok && text == ""
}

// checkEmpty reports whether value is empty. An empty value fails only when
// the field is required.
func checkEmpty(m *Messages, value any, field *schema.Field, model map[string]any) (any, bool) {
	if !isEmpty(value) {
		return nil, false
	}
	if field != nil && field.Required.Eval(model, field, nil) {
		return []string{m.Text(MsgFieldIsRequired, nil)}, true
	}
	return nil, true
}

func required(m *Messages) Func {
	return func(_ context.Context, value any, _ *schema.Field, _ map[string]any) any {
		if isEmpty(value) {
			return []string{m.Text(MsgFieldIsRequired, nil)}
		}
		return nil
	}
}

func number(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		n, ok := toNumber(value)
		if !ok {
			return []string{m.Text(MsgInvalidNumber, nil)}
		}
		return bounds(m, n, field)
	}
}

func integer(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		n, ok := toNumber(value)
		if !ok {
			return []string{m.Text(MsgInvalidNumber, nil)}
		}
		var errs []string
		if n != math.Trunc(n) {
			errs = append(errs, m.Text(MsgInvalidInteger, nil))
		}
		return append(errs, bounds(m, n, field)...)
	}
}

func double(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		n, ok := toNumber(value)
		if !ok || math.IsNaN(n) {
			return []string{m.Text(MsgInvalidDouble, nil)}
		}
		return nil
	}
}

func text(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.String {
			return []string{m.Text(MsgThisNotString, nil)}
		}
		length := utf8.RuneCountInString(rv.String())
		var errs []string
		if field != nil && field.Min != nil && float64(length) < *field.Min {
			errs = append(errs, m.Text(MsgTextTooSmall, map[string]any{"Length": length, "Min": formatNumber(*field.Min)}))
		}
		if field != nil && field.Max != nil && float64(length) > *field.Max {
			errs = append(errs, m.Text(MsgTextTooBig, map[string]any{"Length": length, "Max": formatNumber(*field.Max)}))
		}
		return errs
	}
}

func array(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if isEmpty(value) {
			if field != nil && field.Required.Eval(model, field, nil) {
				return []string{m.Text(MsgThisNotArray, nil)}
			}
			return nil
		}
		if kind.Of(value) != kind.Array {
			return []string{m.Text(MsgThisNotArray, nil)}
		}
		length := reflect.ValueOf(value).Len()
		var errs []string
		if field != nil && field.Min != nil && float64(length) < *field.Min {
			limit := int(*field.Min)
			errs = append(errs, m.Text(MsgSelectMinItems, map[string]any{"Min": limit, "Count": limit}))
		}
		if field != nil && field.Max != nil && float64(length) > *field.Max {
			limit := int(*field.Max)
			errs = append(errs, m.Text(MsgSelectMaxItems, map[string]any{"Max": limit, "Count": limit}))
		}
		return errs
	}
}

func pattern(m *Messages) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		if field == nil || field.Pattern == "" {
			return nil
		}
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", field.Pattern, err)
		}
		if !re.MatchString(fmt.Sprint(value)) {
			return []string{m.Text(MsgInvalidFormat, nil)}
		}
		return nil
	}
}

func matcher(m *Messages, re *regexp.Regexp, msg string) Func {
	return func(_ context.Context, value any, field *schema.Field, model map[string]any) any {
		if res, empty := checkEmpty(m, value, field, model); empty {
			return res
		}
		if !re.MatchString(fmt.Sprint(value)) {
			return []string{m.Text(msg, nil)}
		}
		return nil
	}
}

func email(m *Messages) Func        { return matcher(m, emailPattern, MsgInvalidEmail) }
func link(m *Messages) Func         { return matcher(m, urlPattern, MsgInvalidURL) }
func alpha(m *Messages) Func        { return matcher(m, alphaPattern, MsgInvalidAlpha) }
func alphaNumeric(m *Messages) Func { return matcher(m, alphaNumericPattern, MsgInvalidAlphaNumer) }

func bounds(m *Messages, n float64, field *schema.Field) []string {
	if field == nil {
		return nil
	}
	var errs []string
	if field.Min != nil && n < *field.Min {
		errs = append(errs, m.Text(MsgNumberTooSmall, map[string]any{"Min": formatNumber(*field.Min)}))
	}
	if field.Max != nil && n > *field.Max {
		errs = append(errs, m.Text(MsgNumberTooBig, map[string]any{"Max": formatNumber(*field.Max)}))
	}
	return errs
}

func toNumber(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
