// pkg/index/index.go
package index

import (
	"errors"
	"sort"
	"strconv"

	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// ErrDuplicateKey is returned when a unique index rejects a second
// entry for an existing normalized key.
var ErrDuplicateKey = errors.New("duplicate key")

// entry holds one normalized key's value and the row positions that
// carry it. positions are kept sorted ascending.
type entry struct {
	value     types.Value
	positions []int
}

// Index maps one column's normalized values to row positions. TEXT keys
// are lowercased on both insert and lookup; NULL keys are never stored.
type Index struct {
	column  string
	unique  bool
	entries map[string]*entry
}

// New creates an index over the named column
func New(column string, unique bool) *Index {
	return &Index{
		column:  column,
		unique:  unique,
		entries: make(map[string]*entry),
	}
}

func (idx *Index) Column() string { return idx.column }
func (idx *Index) Unique() bool   { return idx.unique }

// keyFor encodes a normalized value as a map key. The type prefix keeps
// values of different types from colliding.
func keyFor(v types.Value) string {
	switch v.Type() {
	case types.TypeInteger:
		return "i:" + strconv.FormatInt(v.Int(), 10)
	case types.TypeText:
		return "t:" + v.Text()
	case types.TypeBoolean:
		return "b:" + strconv.FormatBool(v.Bool())
	case types.TypeReal:
		return "r:" + strconv.FormatFloat(v.Real(), 'g', -1, 64)
	case types.TypeDate:
		return "d:" + strconv.FormatInt(v.Date().UnixMilli(), 10)
	default:
		return ""
	}
}

// Add records value -> position. NULL values are not indexed. A unique
// index rejects a second position for an existing key.
func (idx *Index) Add(v types.Value, pos int) error {
	if v.IsNull() {
		return nil
	}
	norm := types.Normalize(v)
	key := keyFor(norm)

	e, ok := idx.entries[key]
	if !ok {
		idx.entries[key] = &entry{value: norm, positions: []int{pos}}
		return nil
	}
	if idx.unique && len(e.positions) > 0 {
		return ErrDuplicateKey
	}
	i := sort.SearchInts(e.positions, pos)
	if i < len(e.positions) && e.positions[i] == pos {
		return nil
	}
	e.positions = append(e.positions, 0)
	copy(e.positions[i+1:], e.positions[i:])
	e.positions[i] = pos
	return nil
}

// Remove drops value -> position if present
func (idx *Index) Remove(v types.Value, pos int) {
	if v.IsNull() {
		return
	}
	key := keyFor(types.Normalize(v))
	e, ok := idx.entries[key]
	if !ok {
		return
	}
	i := sort.SearchInts(e.positions, pos)
	if i >= len(e.positions) || e.positions[i] != pos {
		return
	}
	e.positions = append(e.positions[:i], e.positions[i+1:]...)
	if len(e.positions) == 0 {
		delete(idx.entries, key)
	}
}

// Lookup returns the positions stored for the value, in ascending
// order. NULL looks up nothing.
func (idx *Index) Lookup(v types.Value) []int {
	if v.IsNull() {
		return nil
	}
	e, ok := idx.entries[keyFor(types.Normalize(v))]
	if !ok {
		return nil
	}
	out := make([]int, len(e.positions))
	copy(out, e.positions)
	return out
}

// RangeOp selects the comparison used by RangeScan
type RangeOp int

const (
	RangeLT RangeOp = iota
	RangeLTE
	RangeGT
	RangeGTE
)

// RangeScan returns positions whose keys compare against the operand
// under numeric coercion. Keys that do not coerce are skipped.
func (idx *Index) RangeScan(op RangeOp, operand types.Value) []int {
	bound, ok := types.Numeric(operand)
	if !ok {
		return nil
	}
	var out []int
	for _, e := range idx.entries {
		kf, ok := types.Numeric(e.value)
		if !ok {
			continue
		}
		match := false
		switch op {
		case RangeLT:
			match = kf < bound
		case RangeLTE:
			match = kf <= bound
		case RangeGT:
			match = kf > bound
		case RangeGTE:
			match = kf >= bound
		}
		if match {
			out = append(out, e.positions...)
		}
	}
	sort.Ints(out)
	return out
}

// LikeScan returns positions whose TEXT keys match the LIKE pattern.
// Non-string keys are skipped.
func (idx *Index) LikeScan(pattern string) []int {
	pat := types.NewText(pattern)
	var out []int
	for _, e := range idx.entries {
		if e.value.Type() != types.TypeText {
			continue
		}
		if types.Like(e.value, pat) {
			out = append(out, e.positions...)
		}
	}
	sort.Ints(out)
	return out
}

// Clear removes every entry
func (idx *Index) Clear() {
	idx.entries = make(map[string]*entry)
}

// Len returns the number of distinct keys
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns a copy of the value -> positions mapping, for
// consistency checks.
func (idx *Index) Entries() map[string][]int {
	out := make(map[string][]int, len(idx.entries))
	for key, e := range idx.entries {
		positions := make([]int, len(e.positions))
		copy(positions, e.positions)
		out[key] = positions
	}
	return out
}

// Clone returns an independent copy of the index
func (idx *Index) Clone() *Index {
	clone := New(idx.column, idx.unique)
	for key, e := range idx.entries {
		positions := make([]int, len(e.positions))
		copy(positions, e.positions)
		clone.entries[key] = &entry{value: e.value, positions: positions}
	}
	return clone
}
