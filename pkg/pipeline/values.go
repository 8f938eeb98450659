package pipeline

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// compare orders two field values. ok is false when the values have no
// meaningful order (different kinds, NaN, composite values).
func compare(a, b any) (order int, ok bool) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			s, isString := b.(string)
			if !isString {
				return 0, false
			}
			bf = parseNumber(s)
		}
		return compareFloats(af, bf)
	}
	if _, bok := toFloat(b); bok {
		order, ok := compare(b, a)
		return -order, ok
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return compareFloats(boolFloat(av), boolFloat(bv))
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), true
		}
	}
	if a != nil && b != nil && reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func compareFloats(a, b float64) (int, bool) {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, false
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

func less(a, b any) bool {
	order, ok := compare(a, b)
	return ok && order < 0
}

func greater(a, b any) bool {
	order, ok := compare(a, b)
	return ok && order > 0
}

// looseEqual holds for values that compare equal, including numbers written as strings.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	order, ok := compare(a, b)
	return ok && order == 0
}

// sameValue is strict identity: no conversion between kinds, NaN is NaN.
func sameValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok || bok {
		return aok && bok && (af == bf || math.IsNaN(af) && math.IsNaN(bf))
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b) && reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// stringify renders a field value as text. Absent values render empty.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
