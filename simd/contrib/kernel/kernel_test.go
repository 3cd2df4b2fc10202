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

package kernel

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

var testSizes = []int{0, 1, 3, 4, 5, 7, 8, 9, 15, 16, 17, 100, 1003}

func randomRow[T simd.Floats](rng *rand.Rand, n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(rng.NormFloat64())
	}
	return s
}

// sameFloat64 treats two NaNs as equal and otherwise compares bits.
func sameFloat64(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

func checkStrategiesAgree[T simd.Floats](t *testing.T, transform Transform) {
	t.Helper()
	rng := rand.New(rand.NewPCG(42, 7))
	scalar, err := New[T](transform, Scalar, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	vector, err := New[T](transform, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range testSizes {
		src := randomRow[T](rng, n)
		op := randomRow[T](rng, n)
		want := make([]T, n)
		got := make([]T, n)
		scalar.Apply(want, src, op)
		vector.Apply(got, src, op)
		for j := range want {
			if !sameFloat64(float64(got[j]), float64(want[j])) {
				t.Errorf("%s n=%d: element %d: vectorized %v, scalar %v", transform, n, j, got[j], want[j])
			}
		}
	}
}

func TestStrategiesAgree(t *testing.T) {
	for _, transform := range []Transform{Divide, DivideMultiplyAdd} {
		t.Run("float32/"+transform.String(), func(t *testing.T) {
			checkStrategiesAgree[float32](t, transform)
		})
		t.Run("float64/"+transform.String(), func(t *testing.T) {
			checkStrategiesAgree[float64](t, transform)
		})
	}
}

func TestTailCoverage(t *testing.T) {
	for _, alignment := range []int{64, 128, 256, 512} {
		k, err := New[float64](DivideMultiplyAdd, Vectorized, alignment)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range testSizes {
			src := make([]float64, n)
			op := make([]float64, n)
			for j := range src {
				src[j], op[j] = 1, 1
			}
			dst := make([]float64, n)
			for j := range dst {
				dst[j] = math.NaN()
			}
			k.Apply(dst, src, op)
			for j, v := range dst {
				if v != 2 {
					t.Errorf("alignment=%d width=%d n=%d: dst[%d] = %v, want 2", alignment, k.BatchWidth(), n, j, v)
				}
			}
		}
	}
}

func TestDivideScenario(t *testing.T) {
	// R=4, C=8, operand all 2, source all 4: every output is 2 and each
	// row sums to 16, so four rows give 64.
	for _, strategy := range []Strategy{Scalar, Vectorized} {
		k, err := New[float64](Divide, strategy, simd.DefaultAlignment)
		if err != nil {
			t.Fatal(err)
		}
		op := make([]float64, 8)
		for j := range op {
			op[j] = 2
		}
		var total float64
		for range 4 {
			src := []float64{4, 4, 4, 4, 4, 4, 4, 4}
			dst := make([]float64, 8)
			k.Apply(dst, src, op)
			for j, v := range dst {
				if v != 2 {
					t.Errorf("%s: dst[%d] = %v, want 2", strategy, j, v)
				}
			}
			if s := RowSum(dst); s != 16 {
				t.Errorf("%s: RowSum = %v, want 16", strategy, s)
			}
			total += RowSum(dst)
		}
		if total != 64 {
			t.Errorf("%s: total = %v, want 64", strategy, total)
		}
	}
}

func TestCombinedTailScenario(t *testing.T) {
	// C=5 with a batch width of 4 leaves a tail of one element.
	k, err := New[float64](DivideMultiplyAdd, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	if k.BatchWidth() != 4 {
		t.Fatalf("BatchWidth() = %d, want 4", k.BatchWidth())
	}
	src := []float64{1, 1, 1, 1, 1}
	op := []float64{1, 1, 1, 1, 1}
	dst := make([]float64, 5)
	k.Apply(dst, src, op)
	for j, v := range dst {
		if v != 2 {
			t.Errorf("dst[%d] = %v, want 2", j, v)
		}
	}
	if s := RowSum(dst); s != 10 {
		t.Errorf("RowSum = %v, want 10", s)
	}
}

func TestApplyInPlace(t *testing.T) {
	k, err := New[float32](DivideMultiplyAdd, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := simd.AlignedSlice[float32](19, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	op := make([]float32, 19)
	want := make([]float32, 19)
	for j := range buf {
		buf[j] = float32(j + 1)
		op[j] = 2
		want[j] = float32(j+1)/2 + float32(j+1)*2
	}
	k.Apply(buf, buf, op)
	for j := range buf {
		if buf[j] != want[j] {
			t.Errorf("buf[%d] = %v, want %v", j, buf[j], want[j])
		}
	}
}

func TestApplyUnalignedSource(t *testing.T) {
	backing, err := simd.AlignedSlice[float64](33, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	for j := range backing {
		backing[j] = float64(j)
	}
	src := backing[1:] // one element past an aligned boundary
	op := make([]float64, 32)
	for j := range op {
		op[j] = 4
	}
	dst, err := simd.AlignedSlice[float64](32, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	k, err := New[float64](Divide, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	k.Apply(dst, src, op)
	for j, v := range dst {
		if want := float64(j+1) / 4; v != want {
			t.Errorf("dst[%d] = %v, want %v", j, v, want)
		}
	}
}

func TestDivideByZero(t *testing.T) {
	for _, strategy := range []Strategy{Scalar, Vectorized} {
		k, err := New[float64](Divide, strategy, simd.DefaultAlignment)
		if err != nil {
			t.Fatal(err)
		}
		src := []float64{1, -1, 0, 2, 1}
		op := []float64{0, 0, 0, 1, 0}
		dst := make([]float64, len(src))
		k.Apply(dst, src, op)
		if !math.IsInf(dst[0], 1) || !math.IsInf(dst[1], -1) || !math.IsNaN(dst[2]) || dst[3] != 2 || !math.IsInf(dst[4], 1) {
			t.Errorf("%s: got %v", strategy, dst)
		}
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		strategy  Strategy
		alignment int
	}{
		{"bad transform", Transform(7), Scalar, 256},
		{"negative transform", Transform(-1), Scalar, 256},
		{"bad strategy", Divide, Strategy(5), 256},
		{"empty batch", Divide, Vectorized, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float64](tt.transform, tt.strategy, tt.alignment)
			if !errors.Is(errors.Invalid, err) {
				t.Errorf("New: got %v, want an Invalid error", err)
			}
		})
	}
}

func TestParseTransform(t *testing.T) {
	for _, tr := range []Transform{Divide, DivideMultiplyAdd} {
		got, err := ParseTransform(tr.String())
		if err != nil {
			t.Fatalf("ParseTransform(%q): %v", tr.String(), err)
		}
		if got != tr {
			t.Errorf("ParseTransform(%q) = %v, want %v", tr.String(), got, tr)
		}
	}
	if _, err := ParseTransform("multiply"); err == nil {
		t.Error("ParseTransform(\"multiply\") succeeded")
	}
}

func TestLevel(t *testing.T) {
	switch VectorLevel() {
	case simd.DispatchScalar:
	case simd.DispatchAVX2:
		if simd.CurrentLevel() < simd.DispatchAVX2 {
			t.Errorf("AVX2 batches installed at dispatch level %s", simd.CurrentName())
		}
	default:
		t.Errorf("VectorLevel() = %s, want scalar or avx2", VectorLevel())
	}

	scalar, err := New[float32](Divide, Scalar, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	if scalar.Level() != simd.DispatchScalar {
		t.Errorf("scalar kernel Level() = %s, want scalar", scalar.Level())
	}
	vector, err := New[float32](Divide, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	if vector.Level() != VectorLevel() {
		t.Errorf("vectorized kernel Level() = %s, want %s", vector.Level(), VectorLevel())
	}
	named, err := New[myFloat](Divide, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	if named.Level() != simd.DispatchScalar {
		t.Errorf("named float kernel Level() = %s, want scalar", named.Level())
	}
}

type myFloat float64

func TestNamedFloatType(t *testing.T) {
	k, err := New[myFloat](DivideMultiplyAdd, Vectorized, simd.DefaultAlignment)
	if err != nil {
		t.Fatal(err)
	}
	src := []myFloat{2, 2, 2, 2, 2, 2}
	op := []myFloat{2, 2, 2, 2, 2, 2}
	dst := make([]myFloat, 6)
	k.Apply(dst, src, op)
	for j, v := range dst {
		if v != 5 {
			t.Errorf("dst[%d] = %v, want 5", j, v)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{100, 1000, 10000} {
		src := randomRow[float64](rng, n)
		op := randomRow[float64](rng, n)
		dst, err := simd.AlignedSlice[float64](n, simd.DefaultAlignment)
		if err != nil {
			b.Fatal(err)
		}
		for _, transform := range []Transform{Divide, DivideMultiplyAdd} {
			for _, strategy := range []Strategy{Scalar, Vectorized} {
				k, err := New[float64](transform, strategy, simd.DefaultAlignment)
				if err != nil {
					b.Fatal(err)
				}
				b.Run(fmt.Sprintf("%s/%s/n=%d", transform, strategy, n), func(b *testing.B) {
					b.SetBytes(int64(n * 8))
					for i := 0; i < b.N; i++ {
						k.Apply(dst, src, op)
					}
				})
			}
		}
	}
}
