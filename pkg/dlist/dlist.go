// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dlist provides intrusive, circular, doubly-linked lists.
//
// Every Node is a member of exactly one ring. A freshly initialized node is a
// ring of one. A list is a ring anchored at a sentinel node that has no
// owner; the list's elements are the other members of the ring, visited by
// following next from the sentinel until it is reached again:
//
//	type request struct {
//		id   int
//		node dlist.Node[request]
//	}
//
//	var pending dlist.Node[request]
//	pending.HeadInit()
//	r := &request{id: 1}
//	pending.PushBack(r.node.Init(r))
//	for n := range pending.All() {
//		use(n.Owner())
//	}
//
// Entries can be added to or removed from a ring in O(1) time and with no
// additional memory allocations. Operations given a nil node, or a zero-value
// node that was never initialized, fail by returning nil.
package dlist

import (
	"iter"
)

// Node is the link embedded in an owning value of type T. The zero value is
// unlinked; Init or HeadInit must be called before the node is used.
type Node[T any] struct {
	next  *Node[T]
	prev  *Node[T]
	owner *T
}

// Init makes n a ring of one owned by owner and returns n.
func (n *Node[T]) Init(owner *T) *Node[T] {
	n.owner = owner
	n.next = n
	n.prev = n
	return n
}

// HeadInit makes n an empty list sentinel and returns n.
func (n *Node[T]) HeadInit() *Node[T] {
	return n.Init(nil)
}

// Owner returns the value n is embedded in, or nil for a sentinel.
func (n *Node[T]) Owner() *T {
	if n == nil {
		return nil
	}
	return n.owner
}

// Next returns the node that follows n in its ring.
func (n *Node[T]) Next() *Node[T] {
	if n == nil {
		return nil
	}
	return n.next
}

// Prev returns the node that precedes n in its ring.
func (n *Node[T]) Prev() *Node[T] {
	if n == nil {
		return nil
	}
	return n.prev
}

// Linked returns true iff n has both of its links set.
func (n *Node[T]) Linked() bool {
	return n != nil && n.next != nil && n.prev != nil
}

// Empty returns true iff the ring anchored at n has no other members.
func (n *Node[T]) Empty() bool {
	return !n.Linked() || n.next == n
}

// Front returns the first element of the list anchored at n, or nil.
func (n *Node[T]) Front() *Node[T] {
	if n.Empty() {
		return nil
	}
	return n.next
}

// Back returns the last element of the list anchored at n, or nil.
func (n *Node[T]) Back() *Node[T] {
	if n.Empty() {
		return nil
	}
	return n.prev
}

// Pop unlinks n from its ring and returns n, or returns nil if n is nil or
// unlinked.
//
// The links of the popped node still refer to its former neighbors. Popping
// a ring of one leaves it unchanged.
func (n *Node[T]) Pop() *Node[T] {
	if !n.Linked() {
		return nil
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	return n
}

// PushAfter inserts src immediately after n and returns src. It returns nil
// if either node is nil, if n is unlinked, or if src is n.
func (n *Node[T]) PushAfter(src *Node[T]) *Node[T] {
	if n == nil || src == nil || n.next == nil || src == n {
		return nil
	}
	n.next.prev = src
	src.next = n.next
	n.next = src
	src.prev = n
	return src
}

// PushBefore inserts src immediately before n and returns src. It returns
// nil if either node is nil, if n is unlinked, or if src is n.
func (n *Node[T]) PushBefore(src *Node[T]) *Node[T] {
	if n == nil || src == nil || n.prev == nil || src == n {
		return nil
	}
	n.prev.next = src
	src.prev = n.prev
	n.prev = src
	src.next = n
	return src
}

// PushBack inserts src at the back of the list anchored at n and returns
// src, or nil on failure.
func (n *Node[T]) PushBack(src *Node[T]) *Node[T] {
	return n.Prev().PushAfter(src)
}

// PushFront inserts src at the front of the list anchored at n and returns
// src, or nil on failure.
func (n *Node[T]) PushFront(src *Node[T]) *Node[T] {
	return n.Next().PushBefore(src)
}

// splicable returns true iff the members of head's ring can be moved next to
// n.
func (n *Node[T]) splicable(head *Node[T]) bool {
	return n.Linked() && head.Linked() && n != head && head.next != head
}

// SpliceAfter moves every element of the list anchored at head to
// immediately after n, preserving their order, and leaves head empty. It
// returns the node following n afterwards, which is the first moved element
// unless there was nothing to move.
//
// Nothing is moved if head is empty, if head is n, or if either node is nil
// or unlinked. Otherwise n must not be a member of head's list: the other
// members would be detached and lost.
func (n *Node[T]) SpliceAfter(head *Node[T]) *Node[T] {
	if n.splicable(head) {
		n.next.prev = head.prev
		head.prev.next = n.next
		head.next.prev = n
		n.next = head.next
		head.next = head
		head.prev = head
	}
	return n.Next()
}

// SpliceBefore moves every element of the list anchored at head to
// immediately before n, preserving their order, and leaves head empty. It
// returns the node following n, as SpliceAfter does; the last moved element
// is n.Prev().
//
// Nothing is moved if head is empty, if head is n, or if either node is nil
// or unlinked. Otherwise n must not be a member of head's list: the other
// members would be detached and lost.
func (n *Node[T]) SpliceBefore(head *Node[T]) *Node[T] {
	if n.splicable(head) {
		n.prev.next = head.next
		head.next.prev = n.prev
		head.prev.next = n
		n.prev = head.prev
		head.next = head
		head.prev = head
	}
	return n.Next()
}

// Len returns the number of elements in the list anchored at n.
//
// NOTE: This is an O(n) operation.
func (n *Node[T]) Len() (count int) {
	if !n.Linked() {
		return 0
	}
	for e := n.next; e != n; e = e.next {
		count++
	}
	return count
}

// Reverse reverses the order of the ring containing n in place by swapping
// the links of every member, n included.
//
// NOTE: This is an O(n) operation.
func (n *Node[T]) Reverse() {
	if !n.Linked() {
		return
	}
	e := n
	for {
		e.next, e.prev = e.prev, e.next
		// The old next link is now prev.
		e = e.prev
		if e == n {
			return
		}
	}
}

// All returns an iterator over the elements of the list anchored at n, front
// to back. The element being visited may be popped during iteration.
func (n *Node[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		if !n.Linked() {
			return
		}
		for e := n.next; e != n; {
			next := e.next
			if !yield(e) {
				return
			}
			e = next
		}
	}
}

// Backward returns an iterator over the elements of the list anchored at n,
// back to front. The element being visited may be popped during iteration.
func (n *Node[T]) Backward() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		if !n.Linked() {
			return
		}
		for e := n.prev; e != n; {
			prev := e.prev
			if !yield(e) {
				return
			}
			e = prev
		}
	}
}

// PopEach returns an iterator that pops and yields the front element of the
// list anchored at n until the list is empty or iteration stops.
func (n *Node[T]) PopEach() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for !n.Empty() {
			if !yield(n.next.Pop()) {
				return
			}
		}
	}
}

// PopEachBackward is like PopEach but pops from the back.
func (n *Node[T]) PopEachBackward() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for !n.Empty() {
			if !yield(n.prev.Pop()) {
				return
			}
		}
	}
}
