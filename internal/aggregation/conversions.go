package aggregation

import (
	"sort"
	"strings"
)

// DefaultConversionActions are the action types counted as results and revenue
// when no override is configured.
var DefaultConversionActions = []string{
	"purchase",
	"subscribe",
	"complete_registration",
	"lead",
	"add_payment_info",
}

// ConversionSet is an immutable allow-list of conversion action types.
type ConversionSet struct {
	types map[string]struct{}
}

// NewConversionSet builds a set from the given action types. Blank entries are
// skipped; an empty input yields the default set.
func NewConversionSet(actionTypes ...string) ConversionSet {
	types := make(map[string]struct{}, len(actionTypes))
	for _, t := range actionTypes {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = struct{}{}
		}
	}

	if len(types) == 0 {
		for _, t := range DefaultConversionActions {
			types[t] = struct{}{}
		}
	}

	return ConversionSet{types: types}
}

func (s ConversionSet) Contains(actionType string) bool {
	_, ok := s.types[actionType]
	return ok
}

// Types returns the action types in sorted order.
func (s ConversionSet) Types() []string {
	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
