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

// Package fifo implements a first-in-first-out byte ring over a
// caller-supplied region.
//
// One byte of the region is always left unused so that a full ring can be
// told apart from an empty one by comparing head and tail alone: a ring over
// n bytes holds at most n-1 bytes.
package fifo

import (
	"cdst.dev/cdst/pkg/errors"
	"cdst.dev/cdst/pkg/view"
)

// Ring is a byte FIFO stored in a fixed view. Data is written at head and
// read from tail; both offsets are always in [0, v.Len()).
//
// Ring is not safe for concurrent use.
type Ring struct {
	v    view.View
	tail int
	head int
}

// New returns an empty ring over v. It panics if v is empty.
func New(v view.View) Ring {
	var r Ring
	r.Init(v)
	return r
}

// Init resets r to an empty ring over v. It panics if v is empty.
func (r *Ring) Init(v view.View) {
	if v.Empty() {
		panic("cannot create a ring over an empty view")
	}
	r.v = v
	r.tail = 0
	r.head = 0
}

// Size returns the number of bytes stored in the ring.
func (r *Ring) Size() int {
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return r.head + (r.v.Len() - r.tail)
}

// Cap returns the length of the underlying view. The ring holds at most
// Cap()-1 bytes.
func (r *Ring) Cap() int {
	return r.v.Len()
}

// Free returns the number of bytes that can still be pushed.
func (r *Ring) Free() int {
	if r.v.Empty() {
		return 0
	}
	return r.v.Len() - 1 - r.Size()
}

// Empty returns true iff the ring stores no bytes.
func (r *Ring) Empty() bool {
	return r.head == r.tail
}

// Reset empties the ring.
func (r *Ring) Reset() {
	r.tail = 0
	r.head = 0
}

// Push appends src to the ring. It returns len(src) on success. If the ring
// would become full, nothing is written and ErrNoSpace is returned.
func (r *Ring) Push(src []byte) (int, error) {
	if r.Size()+len(src) >= r.v.Len() {
		return 0, errors.ErrNoSpace
	}
	b := r.v.Bytes()
	if first := len(b) - r.head; len(src) >= first {
		copy(b[r.head:], src[:first])
		copy(b, src[first:])
	} else {
		copy(b[r.head:], src)
	}
	r.head = r.advance(r.head, len(src))
	return len(src), nil
}

// Peek copies the len(dst) oldest bytes into dst without removing them. If
// fewer bytes are stored, nothing is copied and ErrNoData is returned.
func (r *Ring) Peek(dst []byte) (int, error) {
	if r.Size() < len(dst) {
		return 0, errors.ErrNoData
	}
	b := r.v.Bytes()
	if first := len(b) - r.tail; len(dst) >= first {
		copy(dst, b[r.tail:])
		copy(dst[first:], b[:len(dst)-first])
	} else {
		copy(dst, b[r.tail:r.tail+len(dst)])
	}
	return len(dst), nil
}

// Pop removes the len(dst) oldest bytes and copies them into dst. If fewer
// bytes are stored, nothing is copied, the ring is unchanged and ErrNoData
// is returned.
func (r *Ring) Pop(dst []byte) (int, error) {
	n, err := r.Peek(dst)
	if err != nil {
		return 0, err
	}
	r.tail = r.advance(r.tail, n)
	return n, nil
}

// Discard removes the n oldest bytes without copying them. It fails like
// Pop.
func (r *Ring) Discard(n int) error {
	if n < 0 || r.Size() < n {
		return errors.ErrNoData
	}
	r.tail = r.advance(r.tail, n)
	return nil
}

// advance returns off moved forward by n bytes modulo the capacity.
func (r *Ring) advance(off, n int) int {
	if n == 0 {
		return off
	}
	return (off + n) % r.v.Len()
}
