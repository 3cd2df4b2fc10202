// Copyright 2025 simdperf Authors
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

// Command simdperf times a parallel elementwise transform over the rows of
// a dense matrix, with either a scalar or a vectorized kernel.
//
// Usage:
//
//	simdperf                        # scalar float64, one thread, 10000x10000
//	simdperf -s -f -t 8             # vectorized float32 on eight threads
//	simdperf -simd -format bench >> new.txt
//	simdperf compare old.txt new.txt
//
// By default it prints one line, "Access time: <ms>, yielding <checksum>".
// Set SIMDPERF_NO_SIMD=1 to force the scalar dispatch level.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/tatami-inc/test-simple-simd-perf/bench"
	"github.com/tatami-inc/test-simple-simd-perf/bench/report"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/kernel"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/matrix"
	"golang.org/x/tools/benchmark/parse"
)

// options holds the raw flag values.
type options struct {
	simd      bool
	float     bool
	threads   int
	rows      int
	cols      int
	transform string
	fetch     string
	alignment int
	seed      uint64
	executor  string
	format    string
	start     int
	length    int
}

func registerFlags(fs *flag.FlagSet) *options {
	def := bench.DefaultConfig()
	o := new(options)
	fs.BoolVar(&o.simd, "simd", false, "Use the vectorized kernel")
	fs.BoolVar(&o.simd, "s", false, "Shorthand for -simd")
	fs.BoolVar(&o.float, "float", false, "Use float32 instead of float64")
	fs.BoolVar(&o.float, "f", false, "Shorthand for -float")
	fs.IntVar(&o.threads, "threads", def.Threads, "Number of worker threads")
	fs.IntVar(&o.threads, "t", def.Threads, "Shorthand for -threads")
	fs.IntVar(&o.rows, "nrow", def.Rows, "Number of matrix rows")
	fs.IntVar(&o.rows, "r", def.Rows, "Shorthand for -nrow")
	fs.IntVar(&o.cols, "ncol", def.Cols, "Number of matrix columns")
	fs.IntVar(&o.cols, "c", def.Cols, "Shorthand for -ncol")
	fs.StringVar(&o.transform, "transform", def.Transform.String(), "Elementwise transform (divide, combined)")
	fs.StringVar(&o.fetch, "fetch", def.Fetch.String(), "Row fetch mode (copy, reference)")
	fs.IntVar(&o.alignment, "alignment", def.Alignment, "Buffer alignment in bytes; fixes the batch width")
	fs.Uint64Var(&o.seed, "seed", def.Seed, "Random seed for the matrix and operand")
	fs.StringVar(&o.executor, "executor", def.Executor.String(), "Worker executor (pool, spawn)")
	fs.StringVar(&o.format, "format", report.Text.String(), "Output format (text, bench, human)")
	fs.IntVar(&o.start, "block_start", 0, "First column of the transformed block")
	fs.IntVar(&o.length, "block_length", 0, "Number of columns in the transformed block (0 for all)")
	return o
}

func (o *options) config() (bench.Config, report.Format, error) {
	cfg := bench.DefaultConfig()
	cfg.SIMD = o.simd
	if o.float {
		cfg.Precision = bench.Float32
	}
	cfg.Threads = o.threads
	cfg.Rows, cfg.Cols = o.rows, o.cols
	cfg.Alignment = o.alignment
	cfg.Seed = o.seed
	cfg.ColumnStart, cfg.ColumnLength = o.start, o.length

	var err error
	if cfg.Transform, err = kernel.ParseTransform(o.transform); err != nil {
		return cfg, 0, err
	}
	if cfg.Fetch, err = matrix.ParseFetchMode(o.fetch); err != nil {
		return cfg, 0, err
	}
	if cfg.Executor, err = bench.ParseExecutorKind(o.executor); err != nil {
		return cfg, 0, err
	}
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return cfg, 0, err
	}
	return cfg, format, cfg.Validate()
}

func parseFile(path string) (parse.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, "simdperf: open", path)
	}
	defer f.Close() // nolint: errcheck
	return report.Parse(f)
}

func compare(w io.Writer, oldPath, newPath string) error {
	before, err := parseFile(oldPath)
	if err != nil {
		return err
	}
	after, err := parseFile(newPath)
	if err != nil {
		return err
	}
	return report.WriteDeltas(w, report.Compare(before, after))
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage:
  %[1]s [flags]
  %[1]s compare OLD NEW

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	opts := registerFlags(flag.CommandLine)
	log.AddFlags()
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 0 {
		if flag.Arg(0) != "compare" || flag.NArg() != 3 {
			usage()
			os.Exit(2)
		}
		if err := compare(os.Stdout, flag.Arg(1), flag.Arg(2)); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, format, err := opts.config()
	if err != nil {
		log.Fatal(err)
	}
	log.Debug.Printf("simdperf: cpu features %s", simd.CPUFeatures())
	res, err := bench.Run(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := report.Write(os.Stdout, res, format); err != nil {
		log.Fatal(err)
	}
}
