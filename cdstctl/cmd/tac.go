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
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"cdst.dev/cdst/cdstctl/cmd/util"
	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/log"
	"cdst.dev/cdst/pkg/memutil"
	"cdst.dev/cdst/pkg/stack"
	"cdst.dev/cdst/pkg/view"
	"github.com/google/subcommands"
)

// Tac implements subcommands.Command for the "tac" command.
type Tac struct {
	size int
}

// Name implements subcommands.Command.
func (*Tac) Name() string {
	return "tac"
}

// Synopsis implements subcommands.Command.
func (*Tac) Synopsis() string {
	return "prints the lines of stdin in reverse order using a fixed-size stack"
}

// Usage implements subcommands.Command.
func (*Tac) Usage() string {
	return `tac [flags] - reads lines from stdin and prints them last line first.
Every line, plus a 4 byte length, must fit in a stack of -size bytes.
`
}

// SetFlags implements subcommands.Command.
func (t *Tac) SetFlags(f *flag.FlagSet) {
	f.IntVar(&t.size, "size", 0, "stack region size in bytes, overrides -stack-size.")
}

// Execute implements subcommands.Command.Execute.
func (t *Tac) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	size := conf.StackSize
	if t.size != 0 {
		size = t.size
	}
	if size < 1 {
		return util.Errorf("tac: invalid size %d", size)
	}

	region, err := memutil.NewRegion(conf.Memory, size)
	if err != nil {
		return util.Errorf("allocating stack: %v", err)
	}
	defer region.Release()

	s := stack.New(region.View())
	out := bufio.NewWriter(os.Stdout)
	n, err := tac(ctx, os.Stdin, out, &s)
	if err != nil {
		return util.Errorf("tac: %v", err)
	}
	if err := out.Flush(); err != nil {
		return util.Errorf("tac: %v", err)
	}
	log.Infof("tac: reversed %d lines in a %d byte %s stack", n, size, region.Kind())
	return subcommands.ExitSuccess
}

// tac pushes every line of in onto s, each followed by its length, and then
// pops them back onto out. It returns the number of lines.
func tac(ctx context.Context, in io.Reader, out io.Writer, s *stack.Stack) (int, error) {
	var (
		hdr   uint32
		lines int
	)
	hv := view.Of(&hdr)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, min(s.Cap(), bufio.MaxScanTokenSize)), max(s.Cap(), bufio.MaxScanTokenSize))
	for sc.Scan() {
		line := sc.Bytes()
		if _, err := s.Push(line); err != nil {
			return lines, fmt.Errorf("line %d (%d bytes) does not fit in %d free bytes: %w", lines+1, len(line), s.Available(), err)
		}
		hdr = uint32(len(line))
		if _, err := s.Push(hv.Bytes()); err != nil {
			return lines, fmt.Errorf("length of line %d does not fit in %d free bytes: %w", lines+1, s.Available(), err)
		}
		lines++
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("reading input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return lines, err
	}

	var buf []byte
	for s.Size() > 0 {
		if _, err := s.Pop(hv.Bytes()); err != nil {
			return lines, fmt.Errorf("popping line length: %w", err)
		}
		n := int(hdr)
		if cap(buf) < n+1 {
			buf = make([]byte, n+1)
		}
		buf = buf[:n]
		if _, err := s.Pop(buf); err != nil {
			return lines, fmt.Errorf("popping %d byte line: %w", n, err)
		}
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return lines, fmt.Errorf("write: %w", err)
		}
	}
	return lines, nil
}
