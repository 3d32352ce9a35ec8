package rangemap

type iterPos int8

const (
	iterPosBefore iterPos = iota
	iterPosCur
	iterPosAfter
)

// Iterator is a bidirectional cursor over the stored ranges of a RangeMap,
// obtained from RangeMap.Iter. It holds no reference into the map's storage:
// every positioning call seeks afresh by the current range's left endpoint,
// so the cursor stays usable across mutations and observes the map's current
// contents.
type Iterator[P Point, V any] struct {
	first func() (RangeValue[P, V], bool)
	last  func() (RangeValue[P, V], bool)
	seek  func(p P) (RangeValue[P, V], bool)
	next  func(p P) (RangeValue[P, V], bool)
	prev  func(p P) (RangeValue[P, V], bool)

	cur RangeValue[P, V]
	pos iterPos
}

// First positions the iterator at the stored range with the smallest left
// endpoint.
func (it *Iterator[P, V]) First() bool {
	rv, ok := it.first()
	if !ok {
		it.pos = iterPosAfter
		return false
	}
	it.cur = rv
	it.pos = iterPosCur
	return true
}

// Last positions the iterator at the stored range with the largest left
// endpoint.
func (it *Iterator[P, V]) Last() bool {
	rv, ok := it.last()
	if !ok {
		it.pos = iterPosBefore
		return false
	}
	it.cur = rv
	it.pos = iterPosCur
	return true
}

// SeekGE positions the iterator at the first stored range containing p, or
// failing that, the first stored range beginning after p.
func (it *Iterator[P, V]) SeekGE(p P) bool {
	rv, ok := it.seek(p)
	if !ok {
		it.pos = iterPosAfter
		return false
	}
	it.cur = rv
	it.pos = iterPosCur
	return true
}

// Next advances to the following stored range. On a fresh or
// backward-exhausted iterator it is equivalent to First.
func (it *Iterator[P, V]) Next() bool {
	switch it.pos {
	case iterPosBefore:
		return it.First()
	case iterPosAfter:
		return false
	}
	rv, ok := it.next(it.cur.Left)
	if !ok {
		it.pos = iterPosAfter
		return false
	}
	it.cur = rv
	return true
}

// Prev steps back to the preceding stored range. On a forward-exhausted
// iterator it is equivalent to Last.
func (it *Iterator[P, V]) Prev() bool {
	switch it.pos {
	case iterPosAfter:
		return it.Last()
	case iterPosBefore:
		return false
	}
	rv, ok := it.prev(it.cur.Left)
	if !ok {
		it.pos = iterPosBefore
		return false
	}
	it.cur = rv
	return true
}

func (it *Iterator[P, V]) Valid() bool {
	return it.pos == iterPosCur
}

// Entry returns the range the iterator was last positioned at.
func (it *Iterator[P, V]) Entry() RangeValue[P, V] {
	return it.cur
}
