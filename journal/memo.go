package journal

import "github.com/shopspring/decimal"

// MemoValue is a memo annotation value: a number with an optional unit,
// or a plain string.
type MemoValue struct {
	IsNumber bool
	Number   decimal.Decimal
	Unit     string
	Str      string
}

// NumberMemo returns a numeric memo value.
func NumberMemo(n decimal.Decimal, unit string) MemoValue {
	return MemoValue{IsNumber: true, Number: n, Unit: unit}
}

// StringMemo returns a string memo value.
func StringMemo(s string) MemoValue {
	return MemoValue{Str: s}
}

// Memos is an insertion-ordered map of memo key to value. Setting an
// existing key overwrites the value but keeps the original position,
// which keeps serialization deterministic.
type Memos struct {
	keys []string
	m    map[string]MemoValue
}

// Set stores a memo value under key.
func (ms *Memos) Set(key string, v MemoValue) {
	if ms.m == nil {
		ms.m = make(map[string]MemoValue)
	}
	if _, ok := ms.m[key]; !ok {
		ms.keys = append(ms.keys, key)
	}
	ms.m[key] = v
}

// Get returns the memo value for key.
func (ms *Memos) Get(key string) (MemoValue, bool) {
	v, ok := ms.m[key]
	return v, ok
}

// Keys returns the memo keys in insertion order.
func (ms *Memos) Keys() []string {
	return ms.keys
}

// Len returns the number of memos.
func (ms *Memos) Len() int {
	return len(ms.keys)
}

// Clone returns an independent copy.
func (ms *Memos) Clone() Memos {
	var out Memos
	for _, k := range ms.keys {
		out.Set(k, ms.m[k])
	}
	return out
}

// MergeMemos merges layers key-by-key, later layers overriding earlier
// ones.
func MergeMemos(layers ...Memos) Memos {
	var out Memos
	for i := range layers {
		for _, k := range layers[i].keys {
			out.Set(k, layers[i].m[k])
		}
	}
	return out
}
