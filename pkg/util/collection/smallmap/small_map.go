// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package smallmap implements an order-preserving map optimised for the
// small sizes typical of function call frames, struct fields and dict
// literals. Below a threshold of entries it stores keys and values in a
// flat, insertion-ordered slice and answers lookups with a linear scan,
// which is faster than hashing for the handful of entries most maps ever
// hold. Past that threshold it promotes itself to also maintain a bucketed
// hash index over the same slice, without ever reordering it.
package smallmap

import "iter"

// promotionThreshold is the entry count above which a SmallMap builds a
// bucketed hash index alongside its entry vector. Below it, Get is a linear
// scan; linear scan over a dozen entries beats hashing in practice and
// avoids the index's bookkeeping entirely for the common small case.
const promotionThreshold = 12

type entry[K Key[K], V any] struct {
	key Hashed[K]
	val V
}

// SmallMap is an order-preserving key/value map keyed by a custom Key
// implementation instead of Go's built-in comparable constraint. Iteration
// order always matches insertion order (with removed keys spliced out), and
// re-inserting an existing key updates its value in place without moving it.
//
// A zero-value SmallMap is ready to use.
type SmallMap[K Key[K], V any] struct {
	entries []entry[K, V]
	// index maps a folded hash bucket to the positions in entries sharing
	// it. Nil until the map is promoted past promotionThreshold.
	index map[uint32][]int32
}

// New returns an empty SmallMap.
func New[K Key[K], V any]() *SmallMap[K, V] {
	return &SmallMap[K, V]{}
}

// NewWithCapacity returns an empty SmallMap pre-sized to hold capacity
// entries without reallocating its backing slice.
func NewWithCapacity[K Key[K], V any](capacity int) *SmallMap[K, V] {
	return &SmallMap[K, V]{entries: make([]entry[K, V], 0, capacity)}
}

// Len returns the number of entries currently stored.
func (m *SmallMap[K, V]) Len() int {
	return len(m.entries)
}

// IsEmpty reports whether the map holds no entries.
func (m *SmallMap[K, V]) IsEmpty() bool {
	return len(m.entries) == 0
}

// Reserve ensures the map's backing slice can hold at least additional more
// entries without reallocating.
func (m *SmallMap[K, V]) Reserve(additional int) {
	if cap(m.entries)-len(m.entries) >= additional {
		return
	}

	grown := make([]entry[K, V], len(m.entries), len(m.entries)+additional)
	copy(grown, m.entries)
	m.entries = grown
}

// Clear removes every entry, retaining the backing slice's capacity.
func (m *SmallMap[K, V]) Clear() {
	m.entries = m.entries[:0]
	m.index = nil
}

// Insert adds key/val, or overwrites val in place if key is already present.
// It returns the previous value and true if key was already present.
func (m *SmallMap[K, V]) Insert(key K, val V) (V, bool) {
	return m.InsertHashed(NewHashed(key), val)
}

// InsertHashed behaves like Insert but accepts a pre-hashed key, avoiding a
// redundant Hash() call when the caller already computed one.
func (m *SmallMap[K, V]) InsertHashed(key Hashed[K], val V) (V, bool) {
	if idx, ok := m.findIndex(key); ok {
		old := m.entries[idx].val
		m.entries[idx].val = val

		return old, true
	}

	var zero V

	pos := int32(len(m.entries))
	m.entries = append(m.entries, entry[K, V]{key: key, val: val})
	m.indexInsert(key, pos)
	m.maybePromote()

	return zero, false
}

// Get returns the value associated with key, if present.
func (m *SmallMap[K, V]) Get(key K) (V, bool) {
	return m.GetHashed(NewHashed(key))
}

// GetHashed behaves like Get but accepts a pre-hashed key.
func (m *SmallMap[K, V]) GetHashed(key Hashed[K]) (V, bool) {
	var zero V

	idx, ok := m.findIndex(key)
	if !ok {
		return zero, false
	}

	return m.entries[idx].val, true
}

// GetFull returns the positional index, value and presence of key.
func (m *SmallMap[K, V]) GetFull(key K) (int, V, bool) {
	var zero V

	idx, ok := m.findIndex(NewHashed(key))
	if !ok {
		return 0, zero, false
	}

	return int(idx), m.entries[idx].val, true
}

// GetIndex returns the key/value pair stored at positional index i, counting
// from zero in insertion order.
func (m *SmallMap[K, V]) GetIndex(i int) (K, V, bool) {
	var (
		zeroK K
		zeroV V
	)

	if i < 0 || i >= len(m.entries) {
		return zeroK, zeroV, false
	}

	e := m.entries[i]

	return e.key.Key(), e.val, true
}

// GetIndexOf returns the positional index of key, if present.
func (m *SmallMap[K, V]) GetIndexOf(key K) (int, bool) {
	idx, ok := m.findIndex(NewHashed(key))

	return int(idx), ok
}

// ContainsKey reports whether key is present.
func (m *SmallMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.findIndex(NewHashed(key))

	return ok
}

// Remove deletes key, shifting every entry after it back by one position to
// preserve insertion order, and rebuilds the hash index. It returns the
// removed value and true if key was present.
func (m *SmallMap[K, V]) Remove(key K) (V, bool) {
	var zero V

	idx, ok := m.findIndex(NewHashed(key))
	if !ok {
		return zero, false
	}

	removed := m.entries[idx].val
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)

	if m.index != nil {
		m.rebuildIndex()
	}

	return removed, true
}

// findIndex returns the position of key in entries, using the hash index
// when promoted and a linear scan otherwise.
func (m *SmallMap[K, V]) findIndex(key Hashed[K]) (int32, bool) {
	if m.index == nil {
		for i := range m.entries {
			if m.entries[i].key.Hash() == key.Hash() && m.entries[i].key.Key().Equals(key.Key()) {
				return int32(i), true
			}
		}

		return 0, false
	}

	bucket := m.index[foldHash(key.Hash())]
	for _, pos := range bucket {
		e := m.entries[pos]
		if e.key.Hash() == key.Hash() && e.key.Key().Equals(key.Key()) {
			return pos, true
		}
	}

	return 0, false
}

func (m *SmallMap[K, V]) indexInsert(key Hashed[K], pos int32) {
	if m.index == nil {
		return
	}

	bucket := foldHash(key.Hash())
	m.index[bucket] = append(m.index[bucket], pos)
}

func (m *SmallMap[K, V]) maybePromote() {
	if m.index != nil || len(m.entries) <= promotionThreshold {
		return
	}

	m.rebuildIndex()
}

func (m *SmallMap[K, V]) rebuildIndex() {
	idx := make(map[uint32][]int32, len(m.entries))

	for i := range m.entries {
		bucket := foldHash(m.entries[i].key.Hash())
		idx[bucket] = append(idx[bucket], int32(i))
	}

	m.index = idx
}

// Iter returns an iterator over key/value pairs in insertion order, suitable
// for use in a range-over-func loop.
func (m *SmallMap[K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].key.Key(), m.entries[i].val) {
				return
			}
		}
	}
}

// Keys returns an iterator over keys in insertion order.
func (m *SmallMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].key.Key()) {
				return
			}
		}
	}
}

// Values returns an iterator over values in insertion order.
func (m *SmallMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].val) {
				return
			}
		}
	}
}

// Equals reports whether m and other contain the same key/value pairs,
// irrespective of insertion order. Values are compared with valEq, since V
// may not itself implement an equality method.
func (m *SmallMap[K, V]) Equals(other *SmallMap[K, V], valEq func(a, b V) bool) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}

	for i := range m.entries {
		e := m.entries[i]

		idx, ok := other.findIndex(e.key)
		if !ok || !valEq(e.val, other.entries[idx].val) {
			return false
		}
	}

	return true
}

// Hash returns an order-independent hash of the map's contents, computed as
// the commutative sum of each entry's key hash folded against valHash. Two
// maps holding the same pairs in different insertion orders hash equally.
func (m *SmallMap[K, V]) Hash(valHash func(v V) uint32) uint32 {
	var sum uint32

	for i := range m.entries {
		sum += m.entries[i].key.Hash() ^ valHash(m.entries[i].val)
	}

	return sum
}

// Compare performs a lexicographic comparison of m against other in
// iteration (insertion) order, unlike Equals and Hash which are
// order-independent. It returns -1, 0 or 1. keyCmp and valCmp compare
// individual keys and values the same way.
func (m *SmallMap[K, V]) Compare(other *SmallMap[K, V], keyCmp func(a, b K) int, valCmp func(a, b V) int) int {
	n := len(m.entries)
	if len(other.entries) < n {
		n = len(other.entries)
	}

	for i := 0; i < n; i++ {
		a, b := m.entries[i], other.entries[i]
		if c := keyCmp(a.key.Key(), b.key.Key()); c != 0 {
			return c
		}

		if c := valCmp(a.val, b.val); c != 0 {
			return c
		}
	}

	switch {
	case len(m.entries) < len(other.entries):
		return -1
	case len(m.entries) > len(other.entries):
		return 1
	default:
		return 0
	}
}
