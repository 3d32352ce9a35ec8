package rangemap

import (
	"log"

	"github.com/akmistry/go-util/radix-tree"
)

var _ = (RangeMap[uint64, int])((*ExtentRangeMap[int])(nil))

type extentEntry[V comparable] struct {
	RangeValue[uint64, V]
}

func (e *extentEntry[V]) Key() uint64 {
	return e.Left
}

// ExtentRangeMap is a RangeMap specialised to uint64 points, backed by a
// radix tree. The zero value is an empty map ready for use.
type ExtentRangeMap[V comparable] struct {
	tree  radix.Tree
	count int
}

func (m *ExtentRangeMap[V]) firstEntry() (e *extentEntry[V]) {
	m.tree.Ascend(func(i radix.Item) bool {
		e = i.(*extentEntry[V])
		return false
	})
	return
}

func (m *ExtentRangeMap[V]) lastEntry() (e *extentEntry[V]) {
	m.tree.Descend(func(i radix.Item) bool {
		e = i.(*extentEntry[V])
		return false
	})
	return
}

// locate returns the stored range containing p.
func (m *ExtentRangeMap[V]) locate(p uint64) (e *extentEntry[V]) {
	m.tree.DescendLessOrEqualI(p, func(i radix.Item) bool {
		ie := i.(*extentEntry[V])
		if ie.Contains(p) {
			e = ie
		}
		return false
	})
	return
}

// lowerBound returns the first stored range with Left >= p.
func (m *ExtentRangeMap[V]) lowerBound(p uint64) (e *extentEntry[V]) {
	m.tree.AscendGreaterOrEqualI(p, func(i radix.Item) bool {
		e = i.(*extentEntry[V])
		return false
	})
	return
}

// seekGT returns the first stored range with Left > p.
func (m *ExtentRangeMap[V]) seekGT(p uint64) (e *extentEntry[V]) {
	m.tree.AscendGreaterOrEqualI(p, func(i radix.Item) bool {
		ie := i.(*extentEntry[V])
		if ie.Left == p {
			return true
		}
		e = ie
		return false
	})
	return
}

// seekLT returns the last stored range with Left < p.
func (m *ExtentRangeMap[V]) seekLT(p uint64) (e *extentEntry[V]) {
	m.tree.DescendLessOrEqualI(p, func(i radix.Item) bool {
		ie := i.(*extentEntry[V])
		if ie.Left == p {
			return true
		}
		e = ie
		return false
	})
	return
}

func (m *ExtentRangeMap[V]) emplace(left, right uint64, value V) {
	e := &extentEntry[V]{RangeValue[uint64, V]{
		Range: Range[uint64]{Left: left, Right: right},
		Value: value,
	}}
	old := m.tree.ReplaceOrInsert(e)
	if old != nil {
		log.Panicf("unexpected old entry: %+v", old)
	}
	m.count++
}

func (m *ExtentRangeMap[V]) removeEntry(e *extentEntry[V]) {
	if m.tree.Delete(e) != e {
		log.Panicf("item not deleted: %+v", e)
	}
	m.count--
}

func (m *ExtentRangeMap[V]) Begin() (begin uint64, ok bool) {
	e := m.firstEntry()
	if e == nil {
		return
	}
	return e.Left, true
}

func (m *ExtentRangeMap[V]) End() (end uint64) {
	e := m.lastEntry()
	if e == nil {
		return
	}
	return e.Right
}

func (m *ExtentRangeMap[V]) Insert(left, right uint64, value V) bool {
	if right <= left {
		return false
	}
	if m.locate(left) != nil {
		return false
	}
	if next := m.lowerBound(left); next != nil && next.Left < right {
		return false
	}
	m.emplace(left, right, value)
	return true
}

func (m *ExtentRangeMap[V]) MergeInsert(left, right uint64, value V) bool {
	if right <= left {
		return false
	}
	if m.count == 0 {
		m.emplace(left, right, value)
		return true
	}

	// The merge candidate is the stored range beginning exactly at left if
	// one exists, otherwise the last range beginning before left, otherwise
	// the first range of the map.
	cand := m.lowerBound(left)
	if cand == nil || cand.Left != left {
		if p := m.seekLT(left); p != nil {
			cand = p
		}
	}
	prev := m.seekLT(cand.Left)
	next := m.seekGT(cand.Left)

	fitsLeft := right <= cand.Left && (prev == nil || left >= prev.Right)
	fitsRight := left >= cand.Right && (next == nil || right <= next.Left)
	if fitsLeft {
		rightMerge := right == cand.Left && value == cand.Value
		leftMerge := prev != nil && left == prev.Right && value == prev.Value
		switch {
		case leftMerge && rightMerge:
			// Extend the previous entry instead of deleting it and inserting
			// a new one.
			prev.Right = cand.Right
			m.removeEntry(cand)
		case leftMerge:
			prev.Right = right
		case rightMerge:
			m.emplace(left, cand.Right, value)
			m.removeEntry(cand)
		default:
			m.emplace(left, right, value)
		}
		return true
	} else if fitsRight {
		rightMerge := next != nil && right == next.Left && value == next.Value
		leftMerge := left == cand.Right && value == cand.Value
		switch {
		case leftMerge && rightMerge:
			cand.Right = next.Right
			m.removeEntry(next)
		case leftMerge:
			cand.Right = right
		case rightMerge:
			m.emplace(left, next.Right, value)
			m.removeEntry(next)
		default:
			m.emplace(left, right, value)
		}
		return true
	}
	return false
}

func (m *ExtentRangeMap[V]) Set(left, right uint64, value V) {
	if right <= left {
		return
	}
	// Punch a hole, and put the new range at that hole.
	m.RemoveRange(left, right)
	if !m.Insert(left, right, value) {
		log.Panicf("insert [%d, %d) failed after removing the range", left, right)
	}
}

func (m *ExtentRangeMap[V]) Remove(p uint64) bool {
	e := m.locate(p)
	if e == nil {
		return false
	}
	m.removeEntry(e)
	return true
}

func (m *ExtentRangeMap[V]) RemoveRange(left, right uint64) {
	if right <= left {
		return
	}
	nextLeft := left
	for {
		it := m.locate(nextLeft)
		if it == nil {
			it = m.lowerBound(nextLeft)
		}
		if it == nil || it.Left >= right {
			break
		}
		nextLeft = it.Right

		switch {
		case left <= it.Left && right >= it.Right:
			// [left, right) covers the stored range entirely.
			m.removeEntry(it)
		case it.Left < left && it.Right >= right:
			// The stored range extends past [left, right) on both sides.
			// Truncate in place, and re-inject the tail so it can coalesce
			// with a following range of equal value.
			origRight := it.Right
			it.Right = left
			m.MergeInsert(right, origRight, it.Value)
			return
		case left <= it.Left && right > it.Left:
			// Overlaps the head of the stored range.
			m.emplace(right, it.Right, it.Value)
			m.removeEntry(it)
			return
		case left < it.Right && right >= it.Right:
			// Overlaps the tail of the stored range. Truncate in place.
			it.Right = left
		}
	}
}

func (m *ExtentRangeMap[V]) Get(p uint64) (value V, ok bool) {
	e := m.locate(p)
	if e == nil {
		return
	}
	return e.Value, true
}

func (m *ExtentRangeMap[V]) GetWithRange(p uint64) (rv RangeValue[uint64, V], ok bool) {
	e := m.locate(p)
	if e == nil {
		return
	}
	return e.RangeValue, true
}

func (m *ExtentRangeMap[V]) NextCovered(p uint64) (next uint64, ok bool) {
	if _, ok = m.Get(p); ok {
		return p, ok
	}
	e := m.lowerBound(p)
	if e == nil {
		return
	}
	return e.Left, true
}

func (m *ExtentRangeMap[V]) NextGap(p uint64) (next uint64) {
	next = p
	e := m.locate(p)
	if e == nil {
		return
	}
	next = e.Right
	m.tree.AscendGreaterOrEqualI(next, func(i radix.Item) bool {
		ie := i.(*extentEntry[V])
		if !ie.Contains(next) {
			return false
		}
		next = ie.Right
		return true
	})
	return
}

func (m *ExtentRangeMap[V]) Len() int {
	return m.count
}

func (m *ExtentRangeMap[V]) Empty() bool {
	return m.count == 0
}

func (m *ExtentRangeMap[V]) Clear() {
	m.tree = radix.Tree{}
	m.count = 0
}

func (m *ExtentRangeMap[V]) Ascend(iter func(RangeValue[uint64, V]) bool) {
	m.tree.Ascend(func(i radix.Item) bool {
		return iter(i.(*extentEntry[V]).RangeValue)
	})
}

func (m *ExtentRangeMap[V]) Descend(iter func(RangeValue[uint64, V]) bool) {
	m.tree.Descend(func(i radix.Item) bool {
		return iter(i.(*extentEntry[V]).RangeValue)
	})
}

func (m *ExtentRangeMap[V]) entryValue(e *extentEntry[V]) (rv RangeValue[uint64, V], ok bool) {
	if e == nil {
		return
	}
	return e.RangeValue, true
}

func (m *ExtentRangeMap[V]) Iter() *Iterator[uint64, V] {
	return &Iterator[uint64, V]{
		first: func() (RangeValue[uint64, V], bool) { return m.entryValue(m.firstEntry()) },
		last:  func() (RangeValue[uint64, V], bool) { return m.entryValue(m.lastEntry()) },
		seek: func(p uint64) (RangeValue[uint64, V], bool) {
			if e := m.locate(p); e != nil {
				return e.RangeValue, true
			}
			return m.entryValue(m.lowerBound(p))
		},
		next: func(p uint64) (RangeValue[uint64, V], bool) { return m.entryValue(m.seekGT(p)) },
		prev: func(p uint64) (RangeValue[uint64, V], bool) { return m.entryValue(m.seekLT(p)) },
	}
}
