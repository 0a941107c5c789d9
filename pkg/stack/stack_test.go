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

package stack

import (
	"bytes"
	"testing"

	"cdst.dev/cdst/pkg/errors"
	"cdst.dev/cdst/pkg/view"
	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		size   int
		pushes [][]byte
	}{
		{
			desc: "empty",
			size: 4,
		},
		{
			desc:   "single push",
			size:   4,
			pushes: [][]byte{{1, 2, 3}},
		},
		{
			desc:   "exact fill",
			size:   6,
			pushes: [][]byte{{1}, {2, 3}, {4, 5, 6}},
		},
		{
			desc:   "zero length pushes",
			size:   2,
			pushes: [][]byte{{}, {7}, {}, {8}},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			s := New(view.New(make([]byte, tc.size)))
			total := 0
			for _, p := range tc.pushes {
				n, err := s.Push(p)
				if err != nil || n != len(p) {
					t.Fatalf("Push(%v) = %d, %v; want %d, nil", p, n, err, len(p))
				}
				total += len(p)
			}
			if got := s.Size(); got != total {
				t.Fatalf("Size() = %d, want %d", got, total)
			}
			for i := len(tc.pushes) - 1; i >= 0; i-- {
				want := tc.pushes[i]
				got := make([]byte, len(want))
				if n, err := s.Pop(got); err != nil || n != len(want) {
					t.Fatalf("Pop(%d bytes) = %d, %v; want %d, nil", len(want), n, err, len(want))
				}
				if !bytes.Equal(got, want) {
					t.Errorf("Pop() = %v, want %v", got, want)
				}
			}
			if got := s.Size(); got != 0 {
				t.Errorf("Size() = %d after popping everything, want 0", got)
			}
		})
	}
}

func TestPushOverflow(t *testing.T) {
	backing := make([]byte, 4)
	s := New(view.New(backing))
	if _, err := s.Push([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	n, err := s.Push([]byte{4, 5})
	if err != errors.ErrNoSpace || n != 0 {
		t.Errorf("Push(2 bytes) into 1 free byte = %d, %v; want 0, %v", n, err, errors.ErrNoSpace)
	}
	if got, want := s.Size(), 3; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 0}, backing); diff != "" {
		t.Errorf("backing memory changed by failed push (-want +got):\n%s", diff)
	}
	if got := s.Available(); got != 1 {
		t.Errorf("Available() = %d, want 1", got)
	}
}

func TestPopUnderflow(t *testing.T) {
	s := New(view.New(make([]byte, 4)))
	s.Push([]byte{9, 8})
	dst := []byte{0xaa, 0xaa, 0xaa}
	n, err := s.Pop(dst)
	if err != errors.ErrNoData || n != 0 {
		t.Errorf("Pop(3 bytes) from 2 = %d, %v; want 0, %v", n, err, errors.ErrNoData)
	}
	if diff := cmp.Diff([]byte{0xaa, 0xaa, 0xaa}, dst); diff != "" {
		t.Errorf("dst modified by failed pop (-want +got):\n%s", diff)
	}
	if got := s.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestPopTakesTop(t *testing.T) {
	s := New(view.New(make([]byte, 8)))
	s.Push([]byte("abcdef"))
	got := make([]byte, 2)
	if _, err := s.Pop(got); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if string(got) != "ef" {
		t.Errorf("Pop() = %q, want %q", got, "ef")
	}
	if string(s.Bytes()) != "abcd" {
		t.Errorf("Bytes() = %q, want %q", s.Bytes(), "abcd")
	}
}

func TestInitAndReset(t *testing.T) {
	var s Stack
	if _, err := s.Push([]byte{1}); err != errors.ErrNoSpace {
		t.Errorf("Push on zero Stack = %v, want %v", err, errors.ErrNoSpace)
	}
	s.Init(view.New(make([]byte, 2)))
	s.Push([]byte{1, 2})
	s.Reset()
	if s.Size() != 0 || s.Cap() != 2 {
		t.Errorf("after Reset: Size() = %d, Cap() = %d; want 0, 2", s.Size(), s.Cap())
	}
}

func BenchmarkPushPop(b *testing.B) {
	s := New(view.New(make([]byte, 4096)))
	rec := make([]byte, 64)
	for i := 0; i < b.N; i++ {
		for s.Available() >= len(rec) {
			s.Push(rec)
		}
		for s.Size() >= len(rec) {
			s.Pop(rec)
		}
	}
}
