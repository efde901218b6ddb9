// pkg/types/compare.go
package types

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Normalize returns the value used for equality and index keys:
// TEXT is lowercased, every other type is unchanged.
func Normalize(v Value) Value {
	if v.Type() == TypeText {
		return NewText(strings.ToLower(v.Text()))
	}
	return v
}

// Equal reports value equality. TEXT compares case-insensitively.
// NULL equals only NULL.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.Type() == TypeText && b.Type() == TypeText {
		return strings.EqualFold(a.Text(), b.Text())
	}
	if a.Type() != b.Type() {
		// Mixed numeric pairs still compare by value.
		af, aok := Numeric(a)
		bf, bok := Numeric(b)
		return aok && bok && af == bf
	}
	switch a.Type() {
	case TypeInteger:
		return a.Int() == b.Int()
	case TypeReal:
		return a.Real() == b.Real()
	case TypeBoolean:
		return a.Bool() == b.Bool()
	case TypeDate:
		return a.Date().Equal(b.Date())
	default:
		return false
	}
}

// Numeric coerces a value to a float64 for ordering: INTEGER and REAL
// unchanged, DATE becomes epoch milliseconds, TEXT is parsed as a
// number. The second return is false when no coercion exists.
func Numeric(v Value) (float64, bool) {
	switch v.Type() {
	case TypeInteger:
		return float64(v.Int()), true
	case TypeReal:
		return v.Real(), true
	case TypeDate:
		return float64(v.Date().UnixMilli()), true
	case TypeText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Less reports a < b under numeric coercion. Comparisons involving NULL
// or a non-coercible operand are false.
func Less(a, b Value) bool {
	af, aok := Numeric(a)
	bf, bok := Numeric(b)
	return aok && bok && af < bf
}

// likeCache holds compiled LIKE patterns keyed by the raw pattern text.
var likeCache sync.Map

// Like matches a TEXT value against a LIKE pattern: % matches any
// sequence, _ matches one character, everything else is literal.
// Matching is case-insensitive and anchored at both ends. Non-string
// operands never match.
func Like(v, pattern Value) bool {
	if v.Type() != TypeText || pattern.Type() != TypeText {
		return false
	}
	re, ok := likeCache.Load(pattern.Text())
	if !ok {
		compiled, err := compileLike(pattern.Text())
		if err != nil {
			return false
		}
		re, _ = likeCache.LoadOrStore(pattern.Text(), compiled)
	}
	return re.(*regexp.Regexp).MatchString(v.Text())
}

func compileLike(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, "%", ".*")
	quoted = strings.ReplaceAll(quoted, "_", ".")
	return regexp.Compile("(?is)^" + quoted + "$")
}
