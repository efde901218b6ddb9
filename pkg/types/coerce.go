// pkg/types/coerce.go
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxInteger is the largest magnitude an INTEGER may hold (53 bits).
const MaxInteger = 1<<53 - 1

// dateLayouts are tried in order when coercing a string to DATE.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts a value to the declared column type following the
// write-validation rules. NULL passes through unchanged for every type;
// NOT NULL enforcement happens at the storage layer.
func Coerce(v Value, t ValueType) (Value, error) {
	if v.IsNull() {
		return v, nil
	}

	switch t {
	case TypeInteger:
		return coerceInteger(v)
	case TypeText:
		return coerceText(v)
	case TypeBoolean:
		return coerceBoolean(v)
	case TypeReal:
		return coerceReal(v)
	case TypeDate:
		return coerceDate(v)
	default:
		return Value{}, fmt.Errorf("unknown column type %v", t)
	}
}

func coerceInteger(v Value) (Value, error) {
	switch v.Type() {
	case TypeInteger:
		if v.Int() > MaxInteger || v.Int() < -MaxInteger {
			return Value{}, fmt.Errorf("integer %d out of range", v.Int())
		}
		return v, nil
	case TypeReal:
		f := v.Real()
		if math.Trunc(f) == f && math.Abs(f) <= MaxInteger {
			return NewInteger(int64(f)), nil
		}
	case TypeText:
		// Only accept strings whose round-trip equals the input.
		s := strings.TrimSpace(v.Text())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
			if i <= MaxInteger && i >= -MaxInteger {
				return NewInteger(i), nil
			}
		}
	}
	return Value{}, fmt.Errorf("cannot coerce %s to INTEGER", v.String())
}

func coerceText(v Value) (Value, error) {
	switch v.Type() {
	case TypeText:
		return v, nil
	case TypeInteger, TypeReal, TypeBoolean:
		return NewText(v.String()), nil
	}
	return Value{}, fmt.Errorf("cannot coerce %s to TEXT", v.String())
}

func coerceBoolean(v Value) (Value, error) {
	switch v.Type() {
	case TypeBoolean:
		return v, nil
	case TypeInteger:
		return NewBoolean(v.Int() != 0), nil
	case TypeReal:
		return NewBoolean(v.Real() != 0), nil
	case TypeText:
		switch strings.ToLower(strings.TrimSpace(v.Text())) {
		case "true", "1", "yes":
			return NewBoolean(true), nil
		case "false", "0", "no":
			return NewBoolean(false), nil
		}
	}
	return Value{}, fmt.Errorf("cannot coerce %s to BOOLEAN", v.String())
}

func coerceReal(v Value) (Value, error) {
	switch v.Type() {
	case TypeReal:
		if math.IsInf(v.Real(), 0) || math.IsNaN(v.Real()) {
			return Value{}, fmt.Errorf("REAL must be finite")
		}
		return v, nil
	case TypeInteger:
		return NewReal(float64(v.Int())), nil
	case TypeText:
		s := strings.TrimSpace(v.Text())
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return NewReal(f), nil
		}
	}
	return Value{}, fmt.Errorf("cannot coerce %s to REAL", v.String())
}

func coerceDate(v Value) (Value, error) {
	switch v.Type() {
	case TypeDate:
		return v, nil
	case TypeInteger:
		return NewDate(time.UnixMilli(v.Int()).UTC()), nil
	case TypeReal:
		return NewDate(time.UnixMilli(int64(v.Real())).UTC()), nil
	case TypeText:
		s := strings.TrimSpace(v.Text())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return NewDate(t), nil
			}
		}
	}
	return Value{}, fmt.Errorf("cannot coerce %s to DATE", v.String())
}
