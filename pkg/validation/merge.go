package validation

import (
	"github.com/samber/lo"
)

// messages turns one validator result into messages. nil and booleans are
// valid; strings, errors and lists of them are messages; anything else is
// ignored.
func messages(result any) []string {
	switch typed := result.(type) {
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	case error:
		return []string{typed.Error()}
	case []string:
		return lo.Compact(typed)
	case []error:
		return lo.FilterMap(typed, func(err error, _ int) (string, bool) {
			if err == nil {
				return "", false
			}
			return err.Error(), true
		})
	case []any:
		return lo.FlatMap(typed, func(item any, _ int) []string {
			switch item.(type) {
			case string, error:
				return messages(item)
			default:
				return nil
			}
		})
	default:
		return nil
	}
}

// merge flattens validator results. Scalar results are de-duplicated before
// lists are expanded, so repeated single messages collapse while the
// contents of list results are kept as returned.
func merge(results []any) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, result := range results {
		switch result.(type) {
		case string, error:
			for _, msg := range messages(result) {
				if _, dup := seen[msg]; dup {
					continue
				}
				seen[msg] = struct{}{}
				out = append(out, msg)
			}
		default:
			out = append(out, messages(result)...)
		}
	}
	return out
}
