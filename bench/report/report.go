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

// Package report formats benchmark results and compares runs recorded in
// the standard Go benchmark format.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/bench"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/tools/benchmark/parse"
)

// Format selects how a Result is written.
type Format int

const (
	// Text is the terse "Access time: <ms>, yielding <checksum>" line.
	Text Format = iota
	// Bench is one line in the Go benchmark format, readable by Parse.
	Bench
	// Human is a multi-line summary with grouped digits.
	Human
)

var formatNames = [...]string{Text: "text", Bench: "bench", Human: "human"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses "text", "bench" or "human".
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return Format(f), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("report: unknown format %q", s))
}

// BenchmarkName returns the benchmark name identifying the configuration
// of res, e.g. "BenchmarkRowTransform/float64/simd/combined/copy/threads=4/10000x10000".
// Runs with equal names are comparable.
func BenchmarkName(res bench.Result) string {
	cfg := res.Config
	var b strings.Builder
	fmt.Fprintf(&b, "BenchmarkRowTransform/%s/%s/%s/%s/threads=%d/%dx%d",
		cfg.Precision, cfg.Strategy(), cfg.Transform, cfg.Fetch, cfg.Threads, cfg.Rows, cfg.Cols)
	if start, length := cfg.Block(); length != cfg.Cols {
		fmt.Fprintf(&b, "/block=%d+%d", start, length)
	}
	if cfg.Executor != bench.PoolExecutor {
		fmt.Fprintf(&b, "/%s", cfg.Executor)
	}
	return b.String()
}

// MBPerSecond returns the transform throughput of res, or zero when no
// time was measured.
func MBPerSecond(res bench.Result) float64 {
	secs := res.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(res.Bytes()) / 1e6 / secs
}

// Write writes res to w in format f.
func Write(w io.Writer, res bench.Result, f Format) error {
	var err error
	switch f {
	case Text:
		_, err = fmt.Fprintf(w, "Access time: %d, yielding %g\n", res.ElapsedMillis(), res.Checksum)
	case Bench:
		line := fmt.Sprintf("%s\t%d\t%d ns/op", BenchmarkName(res), 1, res.Elapsed.Nanoseconds())
		if mbps := MBPerSecond(res); mbps > 0 {
			line += fmt.Sprintf("\t%.2f MB/s", mbps)
		}
		_, err = fmt.Fprintln(w, line)
	case Human:
		err = writeHuman(w, res)
	default:
		return errors.E(errors.Invalid, "report: invalid format "+f.String())
	}
	if err != nil {
		return errors.E(err, "report: write")
	}
	return nil
}

func writeHuman(w io.Writer, res bench.Result) error {
	cfg := res.Config
	p := message.NewPrinter(language.English)
	start, length := cfg.Block()
	_, err := p.Fprintf(w, `%s %s transform, %d x %d matrix, columns [%d, %d), %s fetch
  threads:     %d (%s executor)
  dispatch:    %s, batch width %d
  access time: %d ms
  throughput:  %.1f MB/s (%d bytes)
  checksum:    %g
`,
		cfg.Precision, cfg.Transform, cfg.Rows, cfg.Cols, start, start+length, cfg.Fetch,
		cfg.Threads, cfg.Executor,
		res.Level, res.BatchWidth,
		res.ElapsedMillis(),
		MBPerSecond(res), res.Bytes(),
		res.Checksum)
	return err
}

// Parse reads benchmark lines from r. Lines that are not benchmark results
// are ignored.
func Parse(r io.Reader) (parse.Set, error) {
	set, err := parse.ParseSet(r)
	if err != nil {
		return nil, errors.E(errors.Invalid, err, "report: parse benchmarks")
	}
	return set, nil
}

// Delta compares the mean ns/op of one benchmark across two sets.
type Delta struct {
	Name     string
	Old, New float64
}

// Change returns the relative change from Old to New in percent. It is NaN
// when the benchmark is missing from either set.
func (d Delta) Change() float64 {
	if d.Old == 0 || math.IsNaN(d.Old) || math.IsNaN(d.New) {
		return math.NaN()
	}
	return (d.New - d.Old) / d.Old * 100
}

// Speedup returns Old/New, or NaN when either side is missing.
func (d Delta) Speedup() float64 {
	if d.New == 0 || math.IsNaN(d.Old) || math.IsNaN(d.New) {
		return math.NaN()
	}
	return d.Old / d.New
}

func meanNsPerOp(bs []*parse.Benchmark) float64 {
	var sum float64
	var n int
	for _, b := range bs {
		if b.Measured&parse.NsPerOp != 0 {
			sum += b.NsPerOp
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Compare returns one Delta per benchmark name present in either set,
// sorted by name. A side where the benchmark is absent is NaN.
func Compare(before, after parse.Set) []Delta {
	names := make(map[string]bool)
	for name := range before {
		names[name] = true
	}
	for name := range after {
		names[name] = true
	}
	deltas := make([]Delta, 0, len(names))
	for name := range names {
		deltas = append(deltas, Delta{
			Name: name,
			Old:  meanNsPerOp(before[name]),
			New:  meanNsPerOp(after[name]),
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Name < deltas[j].Name })
	return deltas
}

// WriteDeltas writes deltas as an aligned table.
func WriteDeltas(w io.Writer, deltas []Delta) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "name\told ns/op\tnew ns/op\tdelta\tspeedup\t")
	for _, d := range deltas {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", d.Name,
			formatNs(d.Old), formatNs(d.New), formatPercent(d.Change()), formatRatio(d.Speedup()))
	}
	if err := tw.Flush(); err != nil {
		return errors.E(err, "report: write deltas")
	}
	return nil
}

func formatNs(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.0f", v)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "~"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

func formatRatio(v float64) string {
	if math.IsNaN(v) {
		return "~"
	}
	return fmt.Sprintf("%.2fx", v)
}
