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

// Package memutil provides backing memory for the buffer containers.
//
// Containers never allocate; a Region is how callers that do not already
// have memory at hand obtain some, either from the Go heap or from an
// anonymous private mapping outside of it.
package memutil

import (
	"fmt"

	"cdst.dev/cdst/pkg/view"
	"golang.org/x/sys/unix"
)

// Kind selects where a Region's memory comes from.
type Kind string

const (
	// Heap regions are ordinary Go byte slices.
	Heap Kind = "heap"

	// Mmap regions are anonymous private mappings. They are not scanned by
	// the garbage collector and must be released explicitly.
	Mmap Kind = "mmap"
)

// ParseKind parses a Kind from its name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Heap, Mmap:
		return k, nil
	default:
		return "", fmt.Errorf("invalid memory kind %q, must be %q or %q", s, Heap, Mmap)
	}
}

// Region is a fixed-size block of memory owned by the caller.
type Region struct {
	kind Kind
	b    []byte
}

// NewRegion returns a region of size bytes of the given kind.
func NewRegion(kind Kind, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}
	switch kind {
	case Heap:
		return &Region{kind: kind, b: make([]byte, size)}, nil
	case Mmap:
		b, err := MapSlice(size)
		if err != nil {
			return nil, err
		}
		return &Region{kind: kind, b: b}, nil
	default:
		return nil, fmt.Errorf("invalid memory kind %q", kind)
	}
}

// Kind returns where r's memory comes from.
func (r *Region) Kind() Kind {
	return r.kind
}

// View returns a view of the whole region. It must not be used after
// Release.
func (r *Region) View() view.View {
	return view.New(r.b)
}

// Release returns the region's memory. It is safe to call more than once.
func (r *Region) Release() error {
	b := r.b
	r.b = nil
	if r.kind != Mmap || b == nil {
		return nil
	}
	return UnmapSlice(b)
}

// MapSlice returns an anonymous private read-write mapping of size bytes.
func MapSlice(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap of %d bytes failed: %w", size, err)
	}
	return b, nil
}

// UnmapSlice unmaps a mapping returned by MapSlice.
func UnmapSlice(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}
