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
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"cdst.dev/cdst/cdstctl/cmd/util"
	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/dlist"
	"cdst.dev/cdst/pkg/errors"
	"cdst.dev/cdst/pkg/log"
	"cdst.dev/cdst/pkg/memutil"
	"cdst.dev/cdst/pkg/slist"
	"cdst.dev/cdst/pkg/stack"
	"cdst.dev/cdst/pkg/view"
	"github.com/google/btree"
	"github.com/google/subcommands"
)

// Lines implements subcommands.Command for the "lines" command.
type Lines struct {
	records int
	reverse bool
	sort    bool
	uniq    bool
}

// Name implements subcommands.Command.
func (*Lines) Name() string {
	return "lines"
}

// Synopsis implements subcommands.Command.
func (*Lines) Synopsis() string {
	return "concatenates files through intrusive record lists"
}

// Usage implements subcommands.Command.
func (*Lines) Usage() string {
	return `lines [flags] [files...] - reads the lines of every file, or of stdin if no
file is given, and prints them. Lines are held in records taken from a pool of
-records entries; their text is kept in an arena of -stack-size bytes.
`
}

// SetFlags implements subcommands.Command.
func (l *Lines) SetFlags(f *flag.FlagSet) {
	f.IntVar(&l.records, "records", 0, "size of the record pool, overrides the global -records.")
	f.BoolVar(&l.reverse, "reverse", false, "print lines in reverse order.")
	f.BoolVar(&l.sort, "sort", false, "sort lines bytewise; equal lines keep their input order.")
	f.BoolVar(&l.uniq, "uniq", false, "drop lines equal to the line before them.")
}

// Execute implements subcommands.Command.Execute.
func (l *Lines) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)
	records := conf.Records
	if l.records != 0 {
		records = l.records
	}
	if records < 1 {
		return util.Errorf("lines: invalid record count %d", records)
	}

	region, err := memutil.NewRegion(conf.Memory, conf.StackSize)
	if err != nil {
		return util.Errorf("allocating arena: %v", err)
	}
	defer region.Release()

	ls := newLineSet(region.View(), records)
	if f.NArg() == 0 {
		if err := ls.read(os.Stdin); err != nil {
			return util.Errorf("lines: stdin: %v", err)
		}
	}
	for _, name := range f.Args() {
		if err := ctx.Err(); err != nil {
			return util.Errorf("lines: %v", err)
		}
		if err := ls.readFile(name); err != nil {
			return util.Errorf("lines: %v", err)
		}
	}

	if l.sort {
		ls.sort()
	}
	if l.uniq {
		ls.uniq()
	}
	if l.reverse {
		ls.reverse()
	}

	out := bufio.NewWriter(os.Stdout)
	if err := ls.write(out); err != nil {
		return util.Errorf("lines: %v", err)
	}
	if err := out.Flush(); err != nil {
		return util.Errorf("lines: %v", err)
	}
	log.Infof("lines: %d records in use, %d free, %d arena bytes", ls.all.Len(), ls.free.Len(), ls.arena.Size())
	return subcommands.ExitSuccess
}

// record is a single line. It is linked into a lineSet's list while in use
// and into its free list otherwise.
type record struct {
	// seq is the input position of the line.
	seq int

	// off and n locate the line's text in the arena.
	off int
	n   int

	link dlist.Node[record]
	free slist.Node[record]
}

// lineSet is an ordered collection of lines backed by preallocated records
// and a text arena.
type lineSet struct {
	arena   stack.Stack
	records []record
	free    slist.Node[record]
	all     dlist.Node[record]
	seq     int
}

func newLineSet(arena view.View, records int) *lineSet {
	ls := &lineSet{
		arena:   stack.New(arena),
		records: make([]record, records),
	}
	ls.free.Init(nil)
	ls.all.HeadInit()
	for i := len(ls.records) - 1; i >= 0; i-- {
		r := &ls.records[i]
		r.link.Init(r)
		ls.put(r)
	}
	return ls
}

// get takes a record from the free list.
func (ls *lineSet) get() (*record, error) {
	n := ls.free.PopAfter()
	if n == nil {
		return nil, fmt.Errorf("all %d records in use: %w", len(ls.records), errors.ErrNoSpace)
	}
	return n.Owner(), nil
}

// put returns r to the free list. r must not be in the list.
func (ls *lineSet) put(r *record) {
	ls.free.PushFront(r.free.Init(r))
}

func (ls *lineSet) text(r *record) []byte {
	return ls.arena.Bytes()[r.off : r.off+r.n]
}

func (ls *lineSet) readFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := ls.read(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// read appends the lines of in to the set. Lines are collected on their own
// list and spliced onto the set once in has been read completely, so a
// failed read leaves the set unchanged apart from the consumed arena.
func (ls *lineSet) read(in io.Reader) error {
	var head dlist.Node[record]
	head.HeadInit()

	sc := bufio.NewScanner(in)
	for lines := 1; sc.Scan(); lines++ {
		line := sc.Bytes()
		r, err := ls.get()
		if err == nil {
			r.off = ls.arena.Size()
			_, err = ls.arena.Push(line)
			if err != nil {
				ls.put(r)
			}
		}
		if err != nil {
			for n := range head.PopEach() {
				ls.put(n.Owner())
			}
			return fmt.Errorf("line %d: %w", lines, err)
		}
		r.n = len(line)
		r.seq = ls.seq
		ls.seq++
		head.PushBack(&r.link)
	}
	if err := sc.Err(); err != nil {
		for n := range head.PopEach() {
			ls.put(n.Owner())
		}
		return err
	}
	ls.all.SpliceBefore(&head)
	return nil
}

// sort orders the set bytewise. Equal lines stay in input order.
func (ls *lineSet) sort() {
	tr := btree.NewG(8, func(a, b *record) bool {
		if c := bytes.Compare(ls.text(a), ls.text(b)); c != 0 {
			return c < 0
		}
		return a.seq < b.seq
	})
	for n := range ls.all.PopEach() {
		tr.ReplaceOrInsert(n.Owner())
	}
	tr.Ascend(func(r *record) bool {
		ls.all.PushBack(&r.link)
		return true
	})
}

// uniq drops every line equal to the one before it.
func (ls *lineSet) uniq() {
	var prev *record
	for n := range ls.all.All() {
		r := n.Owner()
		if prev != nil && bytes.Equal(ls.text(prev), ls.text(r)) {
			n.Pop()
			ls.put(r)
			continue
		}
		prev = r
	}
}

func (ls *lineSet) reverse() {
	ls.all.Reverse()
}

func (ls *lineSet) write(out io.Writer) error {
	for n := range ls.all.All() {
		if _, err := out.Write(ls.text(n.Owner())); err != nil {
			return err
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
	return nil
}
