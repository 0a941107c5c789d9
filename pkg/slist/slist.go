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

// Package slist provides intrusive singly-linked lists.
//
// A list is an open chain hanging off a head node that has no owner. Nodes
// can only be removed relative to their predecessor, so removal is O(1) only
// when the predecessor is known. This makes the list a good fit for free
// lists and LIFO queues:
//
//	type buf struct {
//		data [512]byte
//		free slist.Node[buf]
//	}
//
//	var freeList slist.Node[buf]
//	freeList.Init(nil)
//	b := &buf{}
//	freeList.PushFront(b.free.Init(b))
//	if n := freeList.PopAfter(); n != nil {
//		use(n.Owner())
//	}
package slist

import (
	"iter"
)

// Node is the link embedded in an owning value of type T. The zero value is
// a valid terminal node without an owner.
type Node[T any] struct {
	next  *Node[T]
	owner *T
}

// Init unlinks n, sets its owner and returns n. A list head is initialized
// with a nil owner.
func (n *Node[T]) Init(owner *T) *Node[T] {
	n.next = nil
	n.owner = owner
	return n
}

// Owner returns the value n is embedded in, or nil for a list head.
func (n *Node[T]) Owner() *T {
	if n == nil {
		return nil
	}
	return n.owner
}

// Next returns the node following n, or nil at the end of the chain.
func (n *Node[T]) Next() *Node[T] {
	if n == nil {
		return nil
	}
	return n.next
}

// Empty returns true iff no node follows n.
func (n *Node[T]) Empty() bool {
	return n.Next() == nil
}

// PopAfter detaches and returns the node following n, or returns nil if
// there is none. The detached node's next link is left unchanged.
func (n *Node[T]) PopAfter() *Node[T] {
	if n == nil || n.next == nil {
		return nil
	}
	e := n.next
	n.next = e.next
	return e
}

// PushAfter inserts src immediately after n and returns src. It returns nil
// if either node is nil or if src is n.
func (n *Node[T]) PushAfter(src *Node[T]) *Node[T] {
	if n == nil || src == nil || src == n {
		return nil
	}
	src.next = n.next
	n.next = src
	return src
}

// PushFront inserts src at the front of the list headed by n. It is the same
// as n.PushAfter(src).
func (n *Node[T]) PushFront(src *Node[T]) *Node[T] {
	return n.PushAfter(src)
}

// Len returns the number of nodes following n.
//
// NOTE: This is an O(n) operation.
func (n *Node[T]) Len() (count int) {
	for e := n.Next(); e != nil; e = e.next {
		count++
	}
	return count
}

// All returns an iterator over the nodes following n. The node being visited
// may be popped during iteration.
func (n *Node[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for e := n.Next(); e != nil; {
			next := e.next
			if !yield(e) {
				return
			}
			e = next
		}
	}
}

// PopEach returns an iterator that pops and yields the node following n
// until the list is empty or iteration stops.
func (n *Node[T]) PopEach() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for e := n.PopAfter(); e != nil; e = n.PopAfter() {
			if !yield(e) {
				return
			}
		}
	}
}
