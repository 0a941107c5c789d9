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

// Package stack implements a last-in-first-out byte stack over a
// caller-supplied region.
package stack

import (
	"cdst.dev/cdst/pkg/errors"
	"cdst.dev/cdst/pkg/view"
)

// Stack is a LIFO of bytes stored in a fixed view. Data occupies
// v.Bytes()[:used].
//
// Stack is not safe for concurrent use.
type Stack struct {
	v    view.View
	used int
}

// New returns an empty stack over v.
func New(v view.View) Stack {
	return Stack{v: v}
}

// Init resets s to an empty stack over v.
func (s *Stack) Init(v view.View) {
	s.v = v
	s.used = 0
}

// Push copies src onto the top of the stack. It returns len(src) on success.
// If src does not fit, nothing is written and ErrNoSpace is returned.
func (s *Stack) Push(src []byte) (int, error) {
	if len(src) > s.v.Len()-s.used {
		return 0, errors.ErrNoSpace
	}
	copy(s.v.Bytes()[s.used:], src)
	s.used += len(src)
	return len(src), nil
}

// Pop removes the len(dst) most recently pushed bytes and copies them into
// dst. If fewer bytes are stored, nothing is copied and ErrNoData is
// returned.
func (s *Stack) Pop(dst []byte) (int, error) {
	if s.used < len(dst) {
		return 0, errors.ErrNoData
	}
	copy(dst, s.v.Bytes()[s.used-len(dst):s.used])
	s.used -= len(dst)
	return len(dst), nil
}

// Size returns the number of bytes on the stack.
func (s *Stack) Size() int {
	return s.used
}

// Cap returns the capacity of the underlying view.
func (s *Stack) Cap() int {
	return s.v.Len()
}

// Available returns the number of bytes that can still be pushed.
func (s *Stack) Available() int {
	return s.v.Len() - s.used
}

// Reset empties the stack without touching the stored bytes.
func (s *Stack) Reset() {
	s.used = 0
}

// Bytes returns the occupied region, bottom of the stack first. The slice
// aliases the backing memory and is invalidated by the next Push.
func (s *Stack) Bytes() []byte {
	return s.v.Bytes()[:s.used]
}
