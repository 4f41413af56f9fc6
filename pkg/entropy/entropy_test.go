package entropy

import (
	"math"
	"testing"
)

func TestLog2ScaledMatchesMathLog2(t *testing.T) {
	cases := []uint64{1, 2, 3, 4, 16, 255, 256, 1023, 1 << 20, 1 << 40}
	for _, x := range cases {
		got := float64(log2Scaled(x)) / scale
		want := math.Log2(float64(x))
		if diff := math.Abs(got - want); diff > 0.01 {
			t.Errorf("log2Scaled(%d) = %f, want ~%f (diff %f)", x, got, want, diff)
		}
	}
}

func TestCostUniformDistributionMatchesLog2N(t *testing.T) {
	// A uniform distribution over n symbols costs exactly log2(n) bits
	// per symbol, so the total cost should be close to total*log2(n).
	const n = 8
	count := make([]uint32, n)
	var total uint64
	for i := range count {
		count[i] = 100
		total += 100
	}

	got := Cost(count, n-1, total)
	want := float64(total) * math.Log2(float64(n))
	if diff := math.Abs(got - want); diff > want*0.01 {
		t.Errorf("Cost() = %f, want ~%f", got, want)
	}
}

func TestCostZeroElementsIsZero(t *testing.T) {
	if got := Cost(nil, 0, 0); got != 0 {
		t.Errorf("Cost with zero elements = %f, want 0", got)
	}
}

func TestCostSkewedDistributionCostsLessThanUniform(t *testing.T) {
	skewed := []uint32{1000, 1, 1, 1}
	uniform := []uint32{250, 250, 250, 250}

	skewedCost := Cost(skewed, 3, 1003)
	uniformCost := Cost(uniform, 3, 1000)

	if skewedCost >= uniformCost {
		t.Errorf("skewed distribution (%f bits) should cost less than uniform (%f bits)", skewedCost, uniformCost)
	}
}

func TestCrossEntropyCostFoldedSymbolUsesAccuracyFloor(t *testing.T) {
	count := []uint32{10}
	norm := []int16{-1}
	const accuracyLog = 6

	got := CrossEntropyCost(norm, accuracyLog, count, 0)
	want := float64(10 * accuracyLog)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("CrossEntropyCost folded symbol = %f, want %f", got, want)
	}
}

func TestCrossEntropyCostExactProbabilityMatchesCost(t *testing.T) {
	// A symbol quantized to exactly its true probability should cost the
	// same as the unconstrained Cost() estimate.
	count := []uint32{4, 4}
	const accuracyLog = 3 // 2^3 = 8
	norm := []int16{4, 4} // both symbols get probability 4/8 = 1/2

	got := CrossEntropyCost(norm, accuracyLog, count, 1)
	want := Cost(count, 1, 8)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("CrossEntropyCost() = %f, want %f (matching Cost())", got, want)
	}
}
