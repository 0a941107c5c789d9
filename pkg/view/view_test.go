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

package view

import (
	"testing"
	"unsafe"
)

type header struct {
	Kind   uint16
	Flags  uint16
	Length uint32
}

func TestNew(t *testing.T) {
	backing := make([]byte, 8, 32)
	v := New(backing)
	if got, want := v.Len(), 8; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := cap(v.Bytes()), 8; got != want {
		t.Errorf("cap(Bytes()) = %d, want %d", got, want)
	}
	v.Bytes()[3] = 0xff
	if backing[3] != 0xff {
		t.Errorf("write through view not visible in backing memory")
	}
}

func TestEmpty(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    View
		want bool
	}{
		{name: "zero value", v: View{}, want: true},
		{name: "nil slice", v: New(nil), want: true},
		{name: "nil pointer zero length", v: FromPointer(nil, 0), want: true},
		{name: "one byte", v: New([]byte{0}), want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Empty(); got != tc.want {
				t.Errorf("Empty() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestOf(t *testing.T) {
	h := header{Kind: 1, Flags: 2, Length: 3}
	v := Of(&h)
	if got, want := v.Len(), int(unsafe.Sizeof(h)); got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	for i := range v.Bytes() {
		v.Bytes()[i] = 0
	}
	if h != (header{}) {
		t.Errorf("header = %+v after zeroing its view, want zero value", h)
	}
}

func TestOfSlice(t *testing.T) {
	arr := [4]uint32{1, 2, 3, 4}
	v := OfSlice(arr[:])
	if got, want := v.Len(), 16; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if !OfSlice[uint64](nil).Empty() {
		t.Errorf("OfSlice(nil) is not empty")
	}
}

func TestFromPointerPanics(t *testing.T) {
	var b byte
	for _, tc := range []struct {
		name string
		base unsafe.Pointer
		n    int
	}{
		{name: "nil base", base: nil, n: 4},
		{name: "negative length", base: unsafe.Pointer(&b), n: -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("FromPointer(%v, %d) did not panic", tc.base, tc.n)
				}
			}()
			FromPointer(tc.base, tc.n)
		})
	}
}

func TestOfNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Of(nil) did not panic")
		}
	}()
	Of[header](nil)
}
