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

// Package view describes caller-owned regions of memory.
//
// A View is the base and length of a contiguous byte region. It never
// allocates and never copies; the memory it describes must stay valid for as
// long as the View, or any container built on it, is in use.
package view

import (
	"fmt"
	"unsafe"
)

// View is a non-owning window onto a contiguous region of bytes. The zero
// value is an empty view.
type View struct {
	b []byte
}

// New returns a View of b. The view covers len(b) bytes starting at the
// first element of b.
func New(b []byte) View {
	return View{b: b[:len(b):len(b)]}
}

// FromPointer returns a View of n bytes starting at base.
//
// The memory at base must be valid for n bytes for the lifetime of the view.
// FromPointer panics if n is negative or if base is nil and n is non-zero.
func FromPointer(base unsafe.Pointer, n int) View {
	if n < 0 {
		panic(fmt.Sprintf("cannot create a view with negative length %d", n))
	}
	if n == 0 {
		return View{}
	}
	if base == nil {
		panic(fmt.Sprintf("cannot create a view of %d bytes from a nil pointer", n))
	}
	return View{b: unsafe.Slice((*byte)(base), n)}
}

// Of returns a View of the memory occupied by *p.
//
// T should not contain pointers: writing through the view bypasses the
// garbage collector's write barriers.
func Of[T any](p *T) View {
	if p == nil {
		panic("cannot create a view of a nil value")
	}
	return FromPointer(unsafe.Pointer(p), int(unsafe.Sizeof(*p)))
}

// OfSlice returns a View of the memory backing the len(s) elements of s.
//
// The same restriction as Of applies to T.
func OfSlice[T any](s []T) View {
	if len(s) == 0 {
		return View{}
	}
	var zero T
	return FromPointer(unsafe.Pointer(unsafe.SliceData(s)), len(s)*int(unsafe.Sizeof(zero)))
}

// Bytes returns the region described by v.
func (v View) Bytes() []byte {
	return v.b
}

// Len returns the capacity of the region in bytes.
func (v View) Len() int {
	return len(v.b)
}

// Empty returns true iff the view has no capacity.
func (v View) Empty() bool {
	return len(v.b) == 0
}

// String implements fmt.Stringer.
func (v View) String() string {
	return fmt.Sprintf("View{base: %p, len: %d}", unsafe.SliceData(v.b), len(v.b))
}
