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
package smallmap

// Key constrains a type usable as a SmallMap key. Unlike Go's built-in
// comparable constraint (which compares by representation), Equals lets keys
// define their own notion of sameness -- e.g. two interned strings living on
// different heaps that nonetheless represent the same text.
type Key[K any] interface {
	// Equals checks whether this key denotes the same logical key as other.
	Equals(other K) bool
	// Hash returns a 32-bit hashcode consistent with Equals (equal keys must
	// hash equally).
	Hash() uint32
}

// Hashed pairs an owned key with its pre-computed hash, so that repeated
// lookups and insertions never recompute it. It corresponds to the
// language's Hashed<K> wrapper.
type Hashed[K Key[K]] struct {
	hash uint32
	key  K
}

// NewHashed computes the key's hash and wraps it alongside the key.
func NewHashed[K Key[K]](key K) Hashed[K] {
	return Hashed[K]{hash: key.Hash(), key: key}
}

// NewHashedUnchecked wraps a key with a caller-supplied hash, asserting
// (without checking) that it matches key.Hash(). Use only when the hash is
// already known, e.g. it was computed once by the caller and is being
// threaded through several lookups.
func NewHashedUnchecked[K Key[K]](hash uint32, key K) Hashed[K] {
	return Hashed[K]{hash: hash, key: key}
}

// Key returns the wrapped key.
func (h Hashed[K]) Key() K {
	return h.key
}

// Hash returns the pre-computed hash.
func (h Hashed[K]) Hash() uint32 {
	return h.hash
}

// BorrowHashed is the borrowing counterpart of Hashed: it carries a hash
// alongside a key without taking ownership of it. In Go, where values are
// generally copied rather than borrowed, this is a thin conversion helper
// retained for API symmetry with the language's BorrowHashed::new /
// BorrowHashed::new_unchecked constructors.
type BorrowHashed[K Key[K]] struct {
	hash uint32
	key  K
}

// NewBorrowHashed computes the hash of a key and wraps it for lookups that
// do not need to retain ownership.
func NewBorrowHashed[K Key[K]](key K) BorrowHashed[K] {
	return BorrowHashed[K]{hash: key.Hash(), key: key}
}

// NewBorrowHashedUnchecked wraps a key with a caller-supplied hash, asserting
// the caller already knows it matches key.Hash().
func NewBorrowHashedUnchecked[K Key[K]](hash uint32, key K) BorrowHashed[K] {
	return BorrowHashed[K]{hash: hash, key: key}
}

// Key returns the borrowed key.
func (h BorrowHashed[K]) Key() K {
	return h.key
}

// Hash returns the pre-computed hash.
func (h BorrowHashed[K]) Hash() uint32 {
	return h.hash
}

// ToHashed converts a borrow into an owned Hashed value.
func (h BorrowHashed[K]) ToHashed() Hashed[K] {
	return Hashed[K]{hash: h.hash, key: h.key}
}

// foldHash collapses a 32-bit hash into bucket-selector space using an
// xor-fold: cheap, and safe precisely because the incoming hash is already
// well distributed (it was produced by the key's own Hash implementation,
// not recomputed here). Mirrors the "identity-style" hasher the language's
// IndexMap layer uses for its 32-bit key hashes.
func foldHash(h uint32) uint32 {
	return h ^ (h >> 16)
}
