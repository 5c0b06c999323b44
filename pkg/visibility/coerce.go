package visibility

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Number reports the numeric value of v when v is numeric-like: a Go number,
// a json.Number or a string holding a decimal number (surrounding spaces ignored).
// Booleans, nil and everything else are not numeric.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		return finite(cast.ToFloat64E(s))
	case json.Number:
		return finite(n.Float64())
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return finite(cast.ToFloat64E(n))
	default:
		return 0, false
	}
}

func finite(f float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy applies the loose truthiness used by the truthy/falsy operators:
// nil, false, "", "0", numeric zero and empty collections are falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}
	if f, ok := Number(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// LooseEqual compares two values the way form data is compared: numeric-like
// values by number, booleans by truthiness and nil against "empty" values.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return true
		}
		other := a
		if a == nil {
			other = b
		}
		return isEmptyScalar(other)
	}

	if ab, ok := a.(bool); ok {
		return ab == Truthy(b)
	}
	if bb, ok := b.(bool); ok {
		return bb == Truthy(a)
	}

	af, aNum := Number(a)
	bf, bNum := Number(b)
	if aNum && bNum {
		return af == bf
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}
	if aNum || bNum {
		// Number against a non-numeric value never matches.
		return false
	}

	if al, ok := asList(a); ok {
		bl, ok := asList(b)
		if !ok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !LooseEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func isEmptyScalar(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	}
	if f, ok := Number(v); ok {
		if _, isString := v.(string); !isString {
			return f == 0
		}
		return false
	}
	if l, ok := asList(v); ok {
		return len(l) == 0
	}
	return false
}

type kind int

const (
	kindOther kind = iota
	kindNull
	kindBool
	kindNumber
	kindString
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case string:
		return kindString
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return kindNumber
	}
	return kindOther
}

// StrictEqual reports whether a and b have the same JSON kind and the same value.
// Numbers compare by value regardless of their Go width, so int(1) equals float64(1)
// but never the string "1".
func StrictEqual(a, b any) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case kindNull:
		return true
	case kindNumber:
		af, aok := Number(a)
		bf, bok := Number(b)
		return aok && bok && af == bf
	case kindBool, kindString:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders a against b. Both numeric-like values compare as numbers and
// two non-numeric strings compare lexically. Any other pairing is not comparable
// and ok is false.
func Compare(a, b any) (cmp int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	af, aNum := Number(a)
	bf, bNum := Number(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr && !aNum && !bNum {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// asSet turns the configured value of an in/not_in condition into its members.
// A scalar becomes a one-element set.
func asSet(v any) []any {
	if l, ok := asList(v); ok {
		return l
	}
	return []any{v}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte is a scalar, not a list.
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
