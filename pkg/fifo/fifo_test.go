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

package fifo

import (
	"bytes"
	"math/rand"
	"testing"

	"cdst.dev/cdst/pkg/errors"
	"cdst.dev/cdst/pkg/view"
	"github.com/google/go-cmp/cmp"
)

func newRing(size int) *Ring {
	r := New(view.New(make([]byte, size)))
	return &r
}

func mustPush(t *testing.T, r *Ring, data []byte) {
	t.Helper()
	if n, err := r.Push(data); err != nil || n != len(data) {
		t.Fatalf("Push(%v) = %d, %v; want %d, nil", data, n, err, len(data))
	}
}

func mustPop(t *testing.T, r *Ring, n int) []byte {
	t.Helper()
	got := make([]byte, n)
	if m, err := r.Pop(got); err != nil || m != n {
		t.Fatalf("Pop(%d bytes) = %d, %v; want %d, nil", n, m, err, n)
	}
	return got
}

func TestWrapScenario(t *testing.T) {
	r := newRing(8)
	mustPush(t, r, []byte{1, 2, 3, 4, 5})

	if n, err := r.Push([]byte{0, 0, 0, 0}); err != errors.ErrNoSpace || n != 0 {
		t.Fatalf("Push(4 bytes) with 5 stored = %d, %v; want 0, %v", n, err, errors.ErrNoSpace)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, mustPop(t, r, 3)); diff != "" {
		t.Errorf("Pop(3) mismatch (-want +got):\n%s", diff)
	}
	if got := r.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}
	mustPush(t, r, []byte{6, 7, 8, 9})
	if got := r.Size(); got != 6 {
		t.Fatalf("Size() = %d, want 6", got)
	}
	if diff := cmp.Diff([]byte{4, 5, 6, 7, 8, 9}, mustPop(t, r, 6)); diff != "" {
		t.Errorf("Pop(6) mismatch (-want +got):\n%s", diff)
	}
	if !r.Empty() {
		t.Errorf("Empty() = false after draining the ring")
	}
}

func TestStraddle(t *testing.T) {
	r := newRing(8)
	mustPush(t, r, []byte{1, 2, 3, 4, 5, 6})
	mustPop(t, r, 4)
	mustPush(t, r, []byte{7, 8, 9, 10, 11})
	if got := r.Size(); got != 7 {
		t.Fatalf("Size() = %d, want 7", got)
	}
	if diff := cmp.Diff([]byte{5, 6, 7, 8, 9, 10, 11}, mustPop(t, r, 7)); diff != "" {
		t.Errorf("Pop(7) mismatch (-want +got):\n%s", diff)
	}
}

func TestPushToPhysicalEnd(t *testing.T) {
	r := newRing(8)
	mustPush(t, r, []byte{1, 2, 3})
	mustPop(t, r, 3)
	// head is 3; this push ends exactly at the end of the region.
	mustPush(t, r, []byte{4, 5, 6, 7, 8})
	if r.head != 0 {
		t.Errorf("head = %d, want 0", r.head)
	}
	if diff := cmp.Diff([]byte{4, 5, 6, 7, 8}, mustPop(t, r, 5)); diff != "" {
		t.Errorf("Pop(5) mismatch (-want +got):\n%s", diff)
	}
	if r.tail != 0 {
		t.Errorf("tail = %d, want 0", r.tail)
	}
}

func TestNeverFull(t *testing.T) {
	r := newRing(4)
	if n, err := r.Push([]byte{1, 2, 3, 4}); err != errors.ErrNoSpace || n != 0 {
		t.Errorf("Push(cap bytes) = %d, %v; want 0, %v", n, err, errors.ErrNoSpace)
	}
	mustPush(t, r, []byte{1, 2, 3})
	if got := r.Free(); got != 0 {
		t.Errorf("Free() = %d, want 0", got)
	}
	if n, err := r.Push([]byte{4}); err != errors.ErrNoSpace || n != 0 {
		t.Errorf("Push into ring with Size() == Cap()-1 = %d, %v; want 0, %v", n, err, errors.ErrNoSpace)
	}
	if got := r.Size(); got >= r.Cap() {
		t.Errorf("Size() = %d, want < %d", got, r.Cap())
	}
}

func TestPeekIdempotent(t *testing.T) {
	r := newRing(8)
	mustPush(t, r, []byte{1, 2, 3, 4, 5, 6})
	mustPop(t, r, 5)
	mustPush(t, r, []byte{7, 8, 9})
	first := make([]byte, 3)
	second := make([]byte, 3)
	if _, err := r.Peek(first); err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if _, err := r.Peek(second); err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(first, second) || !bytes.Equal(first, []byte{6, 7, 8}) {
		t.Errorf("Peek() = %v then %v, want [6 7 8] twice", first, second)
	}
	if got := r.Size(); got != 4 {
		t.Errorf("Size() = %d after Peek, want 4", got)
	}
}

func TestUnderflow(t *testing.T) {
	r := newRing(8)
	mustPush(t, r, []byte{1, 2})
	dst := []byte{0xee, 0xee, 0xee}
	for _, op := range []struct {
		name string
		fn   func([]byte) (int, error)
	}{
		{name: "Peek", fn: r.Peek},
		{name: "Pop", fn: r.Pop},
	} {
		if n, err := op.fn(dst); err != errors.ErrNoData || n != 0 {
			t.Errorf("%s(3 bytes) with 2 stored = %d, %v; want 0, %v", op.name, n, err, errors.ErrNoData)
		}
	}
	if diff := cmp.Diff([]byte{0xee, 0xee, 0xee}, dst); diff != "" {
		t.Errorf("dst modified by failed read (-want +got):\n%s", diff)
	}
	if r.tail != 0 || r.Size() != 2 {
		t.Errorf("tail = %d, Size() = %d; want 0, 2", r.tail, r.Size())
	}
	if err := r.Discard(3); err != errors.ErrNoData {
		t.Errorf("Discard(3) = %v, want %v", err, errors.ErrNoData)
	}
}

func TestDiscard(t *testing.T) {
	r := newRing(5)
	mustPush(t, r, []byte{1, 2, 3})
	if err := r.Discard(2); err != nil {
		t.Fatalf("Discard(2) = %v", err)
	}
	mustPush(t, r, []byte{4, 5, 6})
	if diff := cmp.Diff([]byte{3, 4, 5, 6}, mustPop(t, r, 4)); diff != "" {
		t.Errorf("Pop(4) mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroLength(t *testing.T) {
	r := newRing(1)
	if n, err := r.Push(nil); err != nil || n != 0 {
		t.Errorf("Push(nil) into 1-byte ring = %d, %v; want 0, nil", n, err)
	}
	if n, err := r.Push([]byte{1}); err != errors.ErrNoSpace || n != 0 {
		t.Errorf("Push(1 byte) into 1-byte ring = %d, %v; want 0, %v", n, err, errors.ErrNoSpace)
	}
	if n, err := r.Pop(nil); err != nil || n != 0 {
		t.Errorf("Pop(nil) = %d, %v; want 0, nil", n, err)
	}

	var zero Ring
	if _, err := zero.Pop(nil); err != nil {
		t.Errorf("Pop(nil) on zero Ring = %v, want nil", err)
	}
}

func TestNewEmptyViewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("New(empty view) did not panic")
		}
	}()
	New(view.View{})
}

// TestFIFOOrder compares the ring against a plain slice for random push and
// pop sizes, including ones that straddle the end of the region.
func TestFIFOOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{2, 3, 8, 17, 64} {
		r := newRing(size)
		var model []byte
		next := byte(0)
		for i := 0; i < 2000; i++ {
			if rng.Intn(2) == 0 {
				chunk := make([]byte, rng.Intn(size))
				for j := range chunk {
					chunk[j] = next
					next++
				}
				_, err := r.Push(chunk)
				if fits := len(model)+len(chunk) < size; fits != (err == nil) {
					t.Fatalf("size %d: Push(%d bytes) with %d stored = %v", size, len(chunk), len(model), err)
				}
				if err == nil {
					model = append(model, chunk...)
				}
			} else {
				got := make([]byte, rng.Intn(size))
				_, err := r.Pop(got)
				if ok := len(got) <= len(model); ok != (err == nil) {
					t.Fatalf("size %d: Pop(%d bytes) with %d stored = %v", size, len(got), len(model), err)
				}
				if err == nil {
					if !bytes.Equal(model[:len(got)], got) {
						t.Fatalf("size %d: Pop() = %v, want %v", size, got, model[:len(got)])
					}
					model = model[len(got):]
				}
			}
			if r.Size() != len(model) {
				t.Fatalf("size %d: Size() = %d, want %d", size, r.Size(), len(model))
			}
		}
	}
}

func BenchmarkPushPop(b *testing.B) {
	r := New(view.New(make([]byte, 4099)))
	rec := make([]byte, 64)
	for i := 0; i < b.N; i++ {
		for r.Free() >= len(rec) {
			r.Push(rec)
		}
		for r.Size() >= len(rec) {
			r.Pop(rec)
		}
	}
}
