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
	"text/tabwriter"
	"time"

	"cdst.dev/cdst/cdstctl/cmd/util"
	"cdst.dev/cdst/cdstctl/config"
	"cdst.dev/cdst/pkg/log"
	"cdst.dev/cdst/pkg/memutil"
	"cdst.dev/cdst/pkg/view"
	"github.com/google/subcommands"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
)

// Output formats for the bench command.
const (
	benchFormatText       = "text"
	benchFormatPrometheus = "prometheus"
)

// Bench implements subcommands.Command for the "bench" command.
type Bench struct {
	iterations int
	parallel   int
	format     string
}

// Name implements subcommands.Command.
func (*Bench) Name() string {
	return "bench"
}

// Synopsis implements subcommands.Command.
func (*Bench) Synopsis() string {
	return "runs container workloads and reports their throughput"
}

// Usage implements subcommands.Command.
func (*Bench) Usage() string {
	return `bench [flags] - runs the stack, fifo, dlist and slist workloads for
-iterations rounds on each of -parallel workers and prints operation counts
and the average cost of an operation.
`
}

// SetFlags implements subcommands.Command.
func (b *Bench) SetFlags(f *flag.FlagSet) {
	f.IntVar(&b.iterations, "iterations", 1000, "rounds per workload and worker.")
	f.IntVar(&b.parallel, "parallel", 1, "number of concurrent workers.")
	f.StringVar(&b.format, "format", benchFormatText, "output format: text or prometheus.")
}

// Execute implements subcommands.Command.Execute.
func (b *Bench) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	if b.iterations < 1 || b.parallel < 1 {
		return util.Errorf("bench: -iterations and -parallel must be positive")
	}
	var write func(io.Writer, []benchResult) error
	switch b.format {
	case benchFormatText:
		write = writeBenchText
	case benchFormatPrometheus:
		write = writeBenchPrometheus
	default:
		return util.Errorf("bench: invalid format %q, must be %q or %q", b.format, benchFormatText, benchFormatPrometheus)
	}

	results, err := runBench(ctx, conf, workloads, b.iterations, b.parallel)
	if err != nil {
		return util.Errorf("bench: %v", err)
	}
	if err := write(os.Stdout, results); err != nil {
		return util.Errorf("bench: %v", err)
	}
	return subcommands.ExitSuccess
}

// benchResult is the combined outcome of one workload over all workers.
type benchResult struct {
	workload string
	ops      int64

	// elapsed is the sum of the time each worker spent in the workload.
	elapsed time.Duration
}

// nsPerOp returns the average cost of an operation in nanoseconds.
func (r benchResult) nsPerOp() float64 {
	if r.ops == 0 {
		return 0
	}
	return float64(r.elapsed.Nanoseconds()) / float64(r.ops)
}

// runBench runs every workload on parallel workers. Each worker owns its
// regions and containers. It returns one result per workload, in order.
func runBench(ctx context.Context, conf *config.Config, ws []workload, iterations, parallel int) ([]benchResult, error) {
	perWorker := make([][]benchResult, parallel)
	g, ctx := errgroup.WithContext(ctx)
	for i := range parallel {
		g.Go(func() error {
			rs, err := runWorker(ctx, conf, ws, iterations)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			perWorker[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]benchResult, len(ws))
	for i, w := range ws {
		results[i].workload = w.name
		for _, rs := range perWorker {
			results[i].ops += rs[i].ops
			results[i].elapsed += rs[i].elapsed
		}
	}
	return results, nil
}

func runWorker(ctx context.Context, conf *config.Config, ws []workload, iterations int) ([]benchResult, error) {
	results := make([]benchResult, 0, len(ws))
	for _, w := range ws {
		r, err := runWorkload(ctx, conf, w, iterations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.name, err)
		}
		log.Debugf("bench: %s: %d ops in %v", w.name, r.ops, r.elapsed)
		results = append(results, r)
	}
	return results, nil
}

func runWorkload(ctx context.Context, conf *config.Config, w workload, iterations int) (benchResult, error) {
	res := benchResult{workload: w.name}
	var v view.View
	if size := w.regionSize(conf); size > 0 {
		region, err := memutil.NewRegion(conf.Memory, size)
		if err != nil {
			return res, err
		}
		defer region.Release()
		v = region.View()
	}

	round := w.newRound(v, conf)
	start := time.Now()
	for range iterations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ops, err := round()
		res.ops += ops
		if err != nil {
			return res, err
		}
	}
	res.elapsed = time.Since(start)
	return res, nil
}

func writeBenchText(out io.Writer, results []benchResult) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "WORKLOAD\tOPS\tNS/OP\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", r.workload, r.ops, r.nsPerOp())
	}
	return w.Flush()
}

// Metric names written by writeBenchPrometheus.
const (
	benchOpsMetric     = "cdst_bench_operations_total"
	benchSecondsMetric = "cdst_bench_seconds_total"
	benchNsPerOpMetric = "cdst_bench_ns_per_op"
)

func writeBenchPrometheus(out io.Writer, results []benchResult) error {
	ops := benchFamily(benchOpsMetric, "Operations performed by a workload over all workers.", dto.MetricType_COUNTER)
	secs := benchFamily(benchSecondsMetric, "Time spent in a workload summed over all workers.", dto.MetricType_COUNTER)
	cost := benchFamily(benchNsPerOpMetric, "Average cost of a single operation in nanoseconds.", dto.MetricType_GAUGE)
	for _, r := range results {
		label := []*dto.LabelPair{{
			Name:  proto.String("workload"),
			Value: proto.String(r.workload),
		}}
		ops.Metric = append(ops.Metric, &dto.Metric{
			Label:   label,
			Counter: &dto.Counter{Value: proto.Float64(float64(r.ops))},
		})
		secs.Metric = append(secs.Metric, &dto.Metric{
			Label:   label,
			Counter: &dto.Counter{Value: proto.Float64(r.elapsed.Seconds())},
		})
		cost.Metric = append(cost.Metric, &dto.Metric{
			Label: label,
			Gauge: &dto.Gauge{Value: proto.Float64(r.nsPerOp())},
		})
	}
	for _, mf := range []*dto.MetricFamily{ops, secs, cost} {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func benchFamily(name, help string, typ dto.MetricType) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: typ.Enum(),
	}
}
