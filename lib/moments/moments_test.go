package moments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

func TestCompute(t *testing.T) {
	b := bunch.New()
	for _, x := range []float64{1, 2, 3, 4, 100} {
		b.AddParticle(x, -x, 2*x, 0, 7, x*x)
	}
	b.DeleteParticleFast(4)

	m, n := Compute(b)
	assert.Equal(t, 4, n)

	tests := []struct {
		k                   int
		mean, std, min, max float64
	}{
		{0, 2.5, math.Sqrt(5.0 / 3), 1, 4},
		{1, -2.5, math.Sqrt(5.0 / 3), -4, -1},
		{2, 5, 2 * math.Sqrt(5.0/3), 2, 8},
		{3, 0, 0, 0, 0},
		{4, 7, 0, 7, 7},
		{5, 7.5, math.Sqrt(43), 1, 16},
	}

	for _, test := range tests {
		got := m[test.k]
		assert.InDelta(t, test.mean, got.Mean, 1e-12, "%d) mean", test.k)
		assert.InDelta(t, test.std, got.Std, 1e-12, "%d) std", test.k)
		assert.Equal(t, test.min, got.Min, "%d) min", test.k)
		assert.Equal(t, test.max, got.Max, "%d) max", test.k)
	}
}

func TestComputeDegenerate(t *testing.T) {
	b := bunch.New()
	m, n := Compute(b)
	assert.Equal(t, 0, n)
	for k := range m {
		assert.True(t, math.IsNaN(m[k].Mean))
		assert.True(t, math.IsNaN(m[k].Max))
	}

	b.AddParticle(1, 2, 3, 4, 5, 6)
	m, n = Compute(b)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, m[0].Mean)
	assert.True(t, math.IsNaN(m[0].Std))
	assert.Equal(t, 6.0, m[5].Min)
}

func TestColumns(t *testing.T) {
	b := bunch.New()
	b.AddParticle(1, 2, 3, 4, 5, 6)
	b.AddParticle(7, 8, 9, 10, 11, 12)
	b.AddParticle(0, 0, 0, 0, 0, 0)
	b.DeleteParticleFast(1)

	cols := Columns(b)
	assert.Equal(t, []float64{1, 0}, cols[0])
	assert.Equal(t, []float64{6, 0}, cols[5])
}
