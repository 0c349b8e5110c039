package flow

import (
	"fmt"
	"reflect"
	"strings"
)

// ResolveNextLocation returns the target declared by the chosen option.
//
// An option the step never declared means the caller offered something the
// graph does not support; that is reported as ErrUnknownOption rather than
// falling back to a default.
func ResolveNextLocation(path Path, current Step, optionID string) (Location, error) {
	if current.Path != path {
		return Location{}, fmt.Errorf("%w: step %s belongs to path %s, not %s",
			ErrUnknownStep, current.ID, current.Path, path)
	}
	opt, ok := current.Option(optionID)
	if !ok {
		return Location{}, fmt.Errorf("%w: %q on step %s (declared: %s)",
			ErrUnknownOption, optionID, current.ID, strings.Join(current.OptionIDs(), ", "))
	}
	return opt.Target, nil
}

// MustResolveNextLocation panics on transition misuse. Intended for tooling
// and tests where an undeclared option is a bug.
func MustResolveNextLocation(path Path, current Step, optionID string) Location {
	loc, err := ResolveNextLocation(path, current, optionID)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsStepResponseValid reports whether every required field of the step has a
// non-empty value in responses. It never fails.
func IsStepResponseValid(step Step, responses map[string]any) bool {
	return len(MissingFields(step, responses)) == 0
}

// MissingFields lists the required fields of step that are absent or empty.
func MissingFields(step Step, responses map[string]any) []string {
	var missing []string
	for _, field := range step.RequiredFields {
		if !hasValue(responses[field]) {
			missing = append(missing, field)
		}
	}
	return missing
}

func hasValue(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return hasValue(rv.Elem().Interface())
	}
	return true
}
