// Package rangemap provides ordered associative containers that map
// disjoint, half-open ranges [left, right) to values.
package rangemap

import (
	"golang.org/x/exp/constraints"
)

// Point is the domain of range endpoints.
type Point interface {
	constraints.Integer | constraints.Float
}

// RangeMap maps pairwise-disjoint, half-open ranges [left, right) to values.
// Stored ranges are never empty (left < right). Implementations are not safe
// for concurrent use.
type RangeMap[P Point, V any] interface {
	Begin() (begin P, ok bool)
	End() (end P)

	// Insert associates value with [left, right). It fails, leaving the map
	// unchanged, if the range is empty or overlaps any stored range.
	Insert(left, right P, value V) bool
	// MergeInsert is Insert, except the new range is coalesced with an
	// adjacent stored range on either side when the values are equal.
	MergeInsert(left, right P, value V) bool
	// Set associates value with [left, right) unconditionally, trimming,
	// splitting or discarding any stored ranges that overlap it.
	Set(left, right P, value V)
	// Remove deletes the stored range containing p.
	Remove(p P) bool
	// RemoveRange trims, splits or discards stored ranges so that no stored
	// point lies within [left, right).
	RemoveRange(left, right P)
	Get(p P) (value V, ok bool)
	GetWithRange(p P) (rv RangeValue[P, V], ok bool)

	// NextCovered returns p if p is covered, otherwise the smallest covered
	// point greater than p.
	NextCovered(p P) (next P, ok bool)
	// NextGap returns p if p is uncovered, otherwise the end of the
	// contiguous covered run containing p.
	NextGap(p P) (next P)

	Len() int
	Empty() bool
	Clear()

	RangeMapIterator[P, V]
}

type RangeMapIterator[P Point, V any] interface {
	Ascend(iter func(RangeValue[P, V]) bool)
	Descend(iter func(RangeValue[P, V]) bool)
	Iter() *Iterator[P, V]
}

// Range is the half-open interval [Left, Right).
type Range[P Point] struct {
	Left, Right P
}

func (r Range[P]) Empty() bool {
	return r.Left >= r.Right
}

func (r Range[P]) Length() P {
	return r.Right - r.Left
}

func (r Range[P]) Contains(p P) bool {
	return p >= r.Left && p < r.Right
}

func (r Range[P]) Overlaps(other Range[P]) bool {
	return r.Contains(other.Left) || other.Contains(r.Left)
}

type RangeValue[P Point, V any] struct {
	Range[P]
	Value V
}
