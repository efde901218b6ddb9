// pkg/types/value.go
package types

import (
	"strconv"
	"time"
)

// ValueType represents the declared type of a database value
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInteger
	TypeText
	TypeBoolean
	TypeReal
	TypeDate
)

// String returns the SQL name of the type
func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return "INTEGER"
	case TypeText:
		return "TEXT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeReal:
		return "REAL"
	case TypeDate:
		return "DATE"
	default:
		return "UNKNOWN"
	}
}

// Value represents a tagged database value
type Value struct {
	typ     ValueType
	intVal  int64
	realVal float64
	textVal string
	boolVal bool
	dateVal time.Time
}

func NewNull() Value {
	return Value{typ: TypeNull}
}

func NewInteger(i int64) Value {
	return Value{typ: TypeInteger, intVal: i}
}

func NewText(s string) Value {
	return Value{typ: TypeText, textVal: s}
}

func NewBoolean(b bool) Value {
	return Value{typ: TypeBoolean, boolVal: b}
}

func NewReal(f float64) Value {
	return Value{typ: TypeReal, realVal: f}
}

// NewDate truncates the instant to millisecond resolution.
func NewDate(t time.Time) Value {
	return Value{typ: TypeDate, dateVal: t.Truncate(time.Millisecond)}
}

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Int() int64      { return v.intVal }
func (v Value) Real() float64   { return v.realVal }
func (v Value) Text() string    { return v.textVal }
func (v Value) Bool() bool      { return v.boolVal }
func (v Value) Date() time.Time { return v.dateVal }

// String returns the display form of the value
func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return strconv.FormatInt(v.intVal, 10)
	case TypeText:
		return v.textVal
	case TypeBoolean:
		return strconv.FormatBool(v.boolVal)
	case TypeReal:
		return strconv.FormatFloat(v.realVal, 'g', -1, 64)
	case TypeDate:
		return v.dateVal.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Go converts a value to its native Go representation (nil for NULL)
func (v Value) Go() interface{} {
	switch v.typ {
	case TypeInteger:
		return v.intVal
	case TypeText:
		return v.textVal
	case TypeBoolean:
		return v.boolVal
	case TypeReal:
		return v.realVal
	case TypeDate:
		return v.dateVal
	default:
		return nil
	}
}
