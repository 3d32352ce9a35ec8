package rangemap

import (
	"log"

	"github.com/google/btree"
)

var _ = (RangeMap[uint64, int])((*TreeRangeMap[uint64, int])(nil))

const btreeDegree = 16

// TreeRangeMap is a RangeMap over any Point type, backed by a B-tree ordered
// by left endpoint. The zero value is an empty map ready for use.
//
// MergeInsert compares values, hence V comparable.
type TreeRangeMap[P Point, V comparable] struct {
	tree *btree.BTreeG[RangeValue[P, V]]
}

func (m *TreeRangeMap[P, V]) init() {
	if m.tree == nil {
		m.tree = btree.NewG(btreeDegree, func(a, b RangeValue[P, V]) bool {
			return a.Left < b.Left
		})
	}
}

func (m *TreeRangeMap[P, V]) pivot(p P) RangeValue[P, V] {
	return RangeValue[P, V]{Range: Range[P]{Left: p}}
}

// locate returns the stored range containing p.
func (m *TreeRangeMap[P, V]) locate(p P) (rv RangeValue[P, V], ok bool) {
	m.tree.DescendLessOrEqual(m.pivot(p), func(item RangeValue[P, V]) bool {
		if item.Contains(p) {
			rv = item
			ok = true
		}
		return false
	})
	return
}

// lowerBound returns the first stored range with Left >= p.
func (m *TreeRangeMap[P, V]) lowerBound(p P) (rv RangeValue[P, V], ok bool) {
	m.tree.AscendGreaterOrEqual(m.pivot(p), func(item RangeValue[P, V]) bool {
		rv = item
		ok = true
		return false
	})
	return
}

// seekGT returns the first stored range with Left > p.
func (m *TreeRangeMap[P, V]) seekGT(p P) (rv RangeValue[P, V], ok bool) {
	m.tree.AscendGreaterOrEqual(m.pivot(p), func(item RangeValue[P, V]) bool {
		if item.Left == p {
			return true
		}
		rv = item
		ok = true
		return false
	})
	return
}

// seekLT returns the last stored range with Left < p.
func (m *TreeRangeMap[P, V]) seekLT(p P) (rv RangeValue[P, V], ok bool) {
	m.tree.DescendLessOrEqual(m.pivot(p), func(item RangeValue[P, V]) bool {
		if item.Left == p {
			return true
		}
		rv = item
		ok = true
		return false
	})
	return
}

func (m *TreeRangeMap[P, V]) emplace(left, right P, value V) {
	rv := RangeValue[P, V]{Range: Range[P]{Left: left, Right: right}, Value: value}
	old, replaced := m.tree.ReplaceOrInsert(rv)
	if replaced {
		log.Panicf("unexpected old entry: %+v", old)
	}
}

func (m *TreeRangeMap[P, V]) removeEntry(rv RangeValue[P, V]) {
	if _, ok := m.tree.Delete(rv); !ok {
		log.Panicf("item not deleted: %+v", rv)
	}
}

func (m *TreeRangeMap[P, V]) Begin() (begin P, ok bool) {
	m.init()
	rv, ok := m.tree.Min()
	if !ok {
		return
	}
	return rv.Left, true
}

func (m *TreeRangeMap[P, V]) End() (end P) {
	m.init()
	rv, ok := m.tree.Max()
	if !ok {
		return
	}
	return rv.Right
}

func (m *TreeRangeMap[P, V]) Insert(left, right P, value V) bool {
	if right <= left {
		return false
	}
	m.init()
	if _, ok := m.locate(left); ok {
		return false
	}
	if next, ok := m.lowerBound(left); ok && next.Left < right {
		return false
	}
	m.emplace(left, right, value)
	return true
}

func (m *TreeRangeMap[P, V]) MergeInsert(left, right P, value V) bool {
	if right <= left {
		return false
	}
	m.init()
	if m.tree.Len() == 0 {
		m.emplace(left, right, value)
		return true
	}

	// The merge candidate is the stored range beginning exactly at left if
	// one exists, otherwise the last range beginning before left, otherwise
	// the first range of the map.
	cand, ok := m.lowerBound(left)
	if !ok || cand.Left != left {
		if p, pok := m.seekLT(left); pok {
			cand = p
		}
	}
	prev, prevOK := m.seekLT(cand.Left)
	next, nextOK := m.seekGT(cand.Left)

	fitsLeft := right <= cand.Left && (!prevOK || left >= prev.Right)
	fitsRight := left >= cand.Right && (!nextOK || right <= next.Left)
	if fitsLeft {
		rightMerge := right == cand.Left && value == cand.Value
		leftMerge := prevOK && left == prev.Right && value == prev.Value
		switch {
		case leftMerge && rightMerge:
			prev.Right = cand.Right
			m.tree.ReplaceOrInsert(prev)
			m.removeEntry(cand)
		case leftMerge:
			prev.Right = right
			m.tree.ReplaceOrInsert(prev)
		case rightMerge:
			m.emplace(left, cand.Right, value)
			m.removeEntry(cand)
		default:
			m.emplace(left, right, value)
		}
		return true
	} else if fitsRight {
		rightMerge := nextOK && right == next.Left && value == next.Value
		leftMerge := left == cand.Right && value == cand.Value
		switch {
		case leftMerge && rightMerge:
			cand.Right = next.Right
			m.tree.ReplaceOrInsert(cand)
			m.removeEntry(next)
		case leftMerge:
			cand.Right = right
			m.tree.ReplaceOrInsert(cand)
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

func (m *TreeRangeMap[P, V]) Set(left, right P, value V) {
	if right <= left {
		return
	}
	// Punch a hole, and put the new range at that hole.
	m.RemoveRange(left, right)
	if !m.Insert(left, right, value) {
		log.Panicf("insert [%v, %v) failed after removing the range", left, right)
	}
}

func (m *TreeRangeMap[P, V]) Remove(p P) bool {
	m.init()
	rv, ok := m.locate(p)
	if !ok {
		return false
	}
	m.removeEntry(rv)
	return true
}

func (m *TreeRangeMap[P, V]) RemoveRange(left, right P) {
	if right <= left {
		return
	}
	m.init()
	nextLeft := left
	for {
		it, ok := m.locate(nextLeft)
		if !ok {
			it, ok = m.lowerBound(nextLeft)
		}
		if !ok || it.Left >= right {
			break
		}
		nextLeft = it.Right

		switch {
		case left <= it.Left && right >= it.Right:
			// [left, right) covers the stored range entirely.
			m.removeEntry(it)
		case it.Left < left && it.Right >= right:
			// The stored range extends past [left, right) on both sides.
			// Keep the head, and re-inject the tail so it can coalesce with
			// a following range of equal value.
			origRight := it.Right
			it.Right = left
			m.tree.ReplaceOrInsert(it)
			m.MergeInsert(right, origRight, it.Value)
			return
		case left <= it.Left && right > it.Left:
			// Overlaps the head of the stored range.
			m.emplace(right, it.Right, it.Value)
			m.removeEntry(it)
			return
		case left < it.Right && right >= it.Right:
			// Overlaps the tail of the stored range.
			it.Right = left
			m.tree.ReplaceOrInsert(it)
		}
	}
}

func (m *TreeRangeMap[P, V]) Get(p P) (value V, ok bool) {
	m.init()
	rv, ok := m.locate(p)
	if !ok {
		return
	}
	return rv.Value, true
}

func (m *TreeRangeMap[P, V]) GetWithRange(p P) (rv RangeValue[P, V], ok bool) {
	m.init()
	return m.locate(p)
}

func (m *TreeRangeMap[P, V]) NextCovered(p P) (next P, ok bool) {
	m.init()
	if _, ok = m.locate(p); ok {
		return p, ok
	}
	rv, ok := m.lowerBound(p)
	if !ok {
		return
	}
	return rv.Left, true
}

func (m *TreeRangeMap[P, V]) NextGap(p P) (next P) {
	next = p
	m.init()
	rv, ok := m.locate(p)
	if !ok {
		return
	}
	next = rv.Right
	m.tree.AscendGreaterOrEqual(m.pivot(next), func(item RangeValue[P, V]) bool {
		if !item.Contains(next) {
			return false
		}
		next = item.Right
		return true
	})
	return
}

func (m *TreeRangeMap[P, V]) Len() int {
	if m.tree == nil {
		return 0
	}
	return m.tree.Len()
}

func (m *TreeRangeMap[P, V]) Empty() bool {
	return m.Len() == 0
}

func (m *TreeRangeMap[P, V]) Clear() {
	if m.tree != nil {
		m.tree.Clear(false)
	}
}

func (m *TreeRangeMap[P, V]) Ascend(iter func(RangeValue[P, V]) bool) {
	m.init()
	m.tree.Ascend(iter)
}

func (m *TreeRangeMap[P, V]) Descend(iter func(RangeValue[P, V]) bool) {
	m.init()
	m.tree.Descend(iter)
}

func (m *TreeRangeMap[P, V]) Iter() *Iterator[P, V] {
	m.init()
	return &Iterator[P, V]{
		first: m.tree.Min,
		last:  m.tree.Max,
		seek: func(p P) (RangeValue[P, V], bool) {
			if rv, ok := m.locate(p); ok {
				return rv, true
			}
			return m.lowerBound(p)
		},
		next: m.seekGT,
		prev: m.seekLT,
	}
}
