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

package cmd

import (
	"bytes"
	"fmt"

	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/dlist"
	"cdst.dev/cdst/pkg/fifo"
	"cdst.dev/cdst/pkg/slist"
	"cdst.dev/cdst/pkg/stack"
	"cdst.dev/cdst/pkg/view"
)

// benchChunk is the most bytes moved by a single push or pop.
const benchChunk = 64

// workload is a benchmark exercising one container.
type workload struct {
	name string

	// regionSize returns the size of the region a worker needs, or zero if
	// the workload does not use one.
	regionSize func(conf *config.Config) int

	// newRound returns a function that runs one round over v and returns
	// the number of operations it performed. The returned function is only
	// used by a single goroutine.
	newRound func(v view.View, conf *config.Config) func() (int64, error)
}

var workloads = []workload{
	{
		name:       "stack",
		regionSize: func(conf *config.Config) int { return conf.StackSize },
		newRound:   stackRound,
	},
	{
		name:       "fifo",
		regionSize: func(conf *config.Config) int { return conf.RingSize },
		newRound:   fifoRound,
	},
	{
		name:       "dlist",
		regionSize: func(*config.Config) int { return 0 },
		newRound:   dlistRound,
	},
	{
		name:       "slist",
		regionSize: func(*config.Config) int { return 0 },
		newRound:   slistRound,
	},
}

// stackRound fills the stack in chunks and then empties it.
func stackRound(v view.View, _ *config.Config) func() (int64, error) {
	s := stack.New(v)
	in := pattern(min(benchChunk, v.Len()))
	out := make([]byte, len(in))
	return func() (ops int64, err error) {
		for s.Available() >= len(in) {
			if _, err := s.Push(in); err != nil {
				return ops, err
			}
			ops++
		}
		for s.Size() >= len(out) {
			if _, err := s.Pop(out); err != nil {
				return ops, err
			}
			ops++
		}
		if !bytes.Equal(in, out) {
			return ops, fmt.Errorf("stack returned %v, want %v", out, in)
		}
		return ops, nil
	}
}

// fifoRound pushes and pops chunks that are not aligned to the ring size,
// so that successive rounds straddle the end of the region.
func fifoRound(v view.View, _ *config.Config) func() (int64, error) {
	r := fifo.New(v)
	in := pattern(max(1, min(benchChunk, r.Free()/2)))
	out := make([]byte, len(in))
	return func() (ops int64, err error) {
		for r.Free() >= len(in) {
			if _, err := r.Push(in); err != nil {
				return ops, err
			}
			ops++
		}
		for r.Size() >= len(out) {
			if _, err := r.Pop(out); err != nil {
				return ops, err
			}
			ops++
			if !bytes.Equal(in, out) {
				return ops, fmt.Errorf("ring returned %v, want %v", out, in)
			}
		}
		return ops, nil
	}
}

type benchEntry struct {
	seq  int
	link dlist.Node[benchEntry]
	free slist.Node[benchEntry]
}

func benchEntries(n int) []benchEntry {
	es := make([]benchEntry, n)
	for i := range es {
		es[i].seq = i
		es[i].link.Init(&es[i])
		es[i].free.Init(&es[i])
	}
	return es
}

// dlistRound builds a list of every entry, splices it onto a second list,
// reverses that list and drains it.
func dlistRound(_ view.View, conf *config.Config) func() (int64, error) {
	es := benchEntries(conf.Records)
	var a, b dlist.Node[benchEntry]
	a.HeadInit()
	b.HeadInit()
	return func() (ops int64, err error) {
		for i := range es {
			if a.PushBack(&es[i].link) == nil {
				return ops, fmt.Errorf("push of entry %d failed", i)
			}
			ops++
		}
		b.SpliceAfter(&a)
		b.Reverse()
		ops += 2
		want := len(es) - 1
		for n := range b.PopEach() {
			if got := n.Owner().seq; got != want {
				return ops, fmt.Errorf("popped entry %d, want %d", got, want)
			}
			want--
			ops++
		}
		return ops, nil
	}
}

// slistRound pushes every entry onto a free list and pops them again.
func slistRound(_ view.View, conf *config.Config) func() (int64, error) {
	es := benchEntries(conf.Records)
	var head slist.Node[benchEntry]
	head.Init(nil)
	return func() (ops int64, err error) {
		for i := range es {
			if head.PushFront(&es[i].free) == nil {
				return ops, fmt.Errorf("push of entry %d failed", i)
			}
			ops++
		}
		want := len(es) - 1
		for n := range head.PopEach() {
			if got := n.Owner().seq; got != want {
				return ops, fmt.Errorf("popped entry %d, want %d", got, want)
			}
			want--
			ops++
		}
		return ops, nil
	}
}

// pattern returns n bytes that differ from their neighbors.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 1)
	}
	return b
}
