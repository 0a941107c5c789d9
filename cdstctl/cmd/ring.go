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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cdst.dev/cdst/cdstctl/cmd/util"
	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/fifo"
	"cdst.dev/cdst/pkg/log"
	"cdst.dev/cdst/pkg/memutil"
	"github.com/google/subcommands"
)

// Ring implements subcommands.Command for the "ring" command.
type Ring struct {
	size     int
	chunk    int
	progress time.Duration
}

// Name implements subcommands.Command.
func (*Ring) Name() string {
	return "ring"
}

// Synopsis implements subcommands.Command.
func (*Ring) Synopsis() string {
	return "copies stdin to stdout through a fixed-size ring buffer"
}

// Usage implements subcommands.Command.
func (*Ring) Usage() string {
	return `ring [flags] - copies stdin to stdout through a ring buffer of -size
bytes, moving at most -chunk bytes per push or pop. Both default to the
global -ring-size and -chunk-size settings.
`
}

// SetFlags implements subcommands.Command.
func (r *Ring) SetFlags(f *flag.FlagSet) {
	f.IntVar(&r.size, "size", 0, "ring region size in bytes, overrides -ring-size.")
	f.IntVar(&r.chunk, "chunk", 0, "maximum bytes moved per push or pop, overrides -chunk-size.")
	f.DurationVar(&r.progress, "progress", time.Second, "minimum interval between debug progress messages.")
}

// Execute implements subcommands.Command.Execute.
func (r *Ring) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	size, chunk := conf.RingSize, conf.ChunkSize
	if r.size != 0 {
		size = r.size
	}
	if r.chunk != 0 {
		chunk = r.chunk
	}
	if size < 2 || chunk < 1 {
		return util.Errorf("ring: invalid size %d or chunk %d", size, chunk)
	}

	region, err := memutil.NewRegion(conf.Memory, size)
	if err != nil {
		return util.Errorf("allocating ring: %v", err)
	}
	defer region.Release()

	p := pump{
		ring:     fifo.New(region.View()),
		chunk:    make([]byte, chunk),
		progress: log.BasicRateLimitedLogger(r.progress),
	}
	n, err := p.run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		return util.Errorf("ring: %v", err)
	}
	log.Infof("ring: copied %d bytes through a %d byte %s ring", n, size, region.Kind())
	return subcommands.ExitSuccess
}

// pump moves bytes from a reader to a writer through ring.
type pump struct {
	ring     fifo.Ring
	chunk    []byte
	progress log.Logger
}

// run copies in to out until in returns io.EOF and the ring has been
// drained. It returns the number of bytes written to out.
func (p *pump) run(ctx context.Context, in io.Reader, out io.Writer) (int64, error) {
	var (
		written int64
		eof     bool
	)
	for !eof || !p.ring.Empty() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		// Fill.
		if free := p.ring.Free(); !eof && free > 0 {
			buf := p.chunk[:min(len(p.chunk), free)]
			n, err := in.Read(buf)
			if n > 0 {
				if _, perr := p.ring.Push(buf[:n]); perr != nil {
					return written, fmt.Errorf("push of %d bytes with %d free: %w", n, free, perr)
				}
			}
			switch {
			case err == io.EOF:
				eof = true
			case err != nil:
				return written, fmt.Errorf("read: %w", err)
			}
		}

		// Drain once a whole chunk is buffered, the ring is full, or
		// there is no more input.
		size := p.ring.Size()
		if size == 0 || (size < len(p.chunk) && p.ring.Free() > 0 && !eof) {
			continue
		}
		buf := p.chunk[:min(len(p.chunk), size)]
		if _, err := p.ring.Pop(buf); err != nil {
			return written, fmt.Errorf("pop of %d bytes with %d stored: %w", len(buf), size, err)
		}
		n, err := out.Write(buf)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write: %w", err)
		}
		p.progress.Debugf("ring: %d bytes copied, %d buffered", written, p.ring.Size())
	}
	return written, nil
}
