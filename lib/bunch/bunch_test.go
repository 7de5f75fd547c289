package bunch

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aliveCoords returns the coordinates of every alive particle below Size.
func aliveCoords(b *Bunch) [][Dim]float64 {
	out := [][Dim]float64{}
	for i := 0; i < b.Size(); i++ {
		if b.Flag(i) != 0 {
			out = append(out, *b.Coord(i))
		}
	}
	return out
}

// fill appends n particles whose x coordinate is their index and whose
// other coordinates are distinct multiples of it.
func fill(b *Bunch, n int) [][Dim]float64 {
	out := make([][Dim]float64, n)
	for i := range out {
		x := float64(i)
		out[i] = [Dim]float64{x, 2 * x, 3 * x, 4 * x, 5 * x, 6 * x}
		b.AddParticleCoord(out[i])
	}
	return out
}

func TestNewBunch(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, 0, b.Capacity())
	assert.False(t, b.NeedsCompress())
	assert.Equal(t, 0, b.ParticleAttributesSize())
	assert.Empty(t, b.ParticleAttributesNames())
	assert.Equal(t, 0, b.SizeGlobalFromMemory())
}

func TestAppendMonotonic(t *testing.T) {
	tests := []struct {
		n, chunk int
	}{
		{0, 1}, {1, 1}, {5, 2}, {100, 7}, {1000, 1000}, {2500, 1000},
	}

	for _, test := range tests {
		b := New()
		b.SetGrowthChunk(test.chunk)
		b.SetMinGrowthChunk(1)

		for i := 0; i < test.n; i++ {
			idx := b.AddParticle(float64(i), 0, 0, 0, 0, 0)
			require.Equal(t, i, idx, "n = %d, chunk = %d", test.n, test.chunk)
		}
		assert.Equal(t, test.n, b.Size())
		assert.Equal(t, test.n, b.AliveCount())
		assert.GreaterOrEqual(t, b.Capacity(), b.Size())
	}
}

func TestGrowthPolicy(t *testing.T) {
	tests := []struct {
		chunk, minChunk, n, capacity int
	}{
		{10, 1, 1, 10},
		{10, 1, 10, 10},
		{10, 1, 11, 20},
		{3, 5, 6, 10},
		{5, 3, 6, 10},
		{1, 1, 17, 17},
	}

	for i, test := range tests {
		b := New()
		b.SetGrowthChunk(test.chunk)
		b.SetMinGrowthChunk(test.minChunk)
		fill(b, test.n)
		assert.Equal(t, test.capacity, b.Capacity(), "%d) %+v", i, test)
	}

	b := New()
	assert.Panics(t, func() { b.SetGrowthChunk(0) })
	assert.Panics(t, func() { b.SetMinGrowthChunk(-1) })
}

func TestConcreteScenario(t *testing.T) {
	b := New()
	for i := 1; i <= 5; i++ {
		b.AddParticle(float64(i), 0, 0, 0, 0, 0)
	}

	b.DeleteParticleFast(1)
	b.DeleteParticleFast(3)
	assert.Equal(t, 5, b.Size())
	assert.True(t, b.NeedsCompress())
	assert.Equal(t, 3, b.AliveCount())

	b.Compress()
	assert.Equal(t, 3, b.Size())
	assert.False(t, b.NeedsCompress())
	assert.ElementsMatch(t, [][Dim]float64{
		{1, 0, 0, 0, 0, 0}, {2, 0, 0, 0, 0, 0}, {5, 0, 0, 0, 0, 0},
	}, aliveCoords(b))
	for i := 0; i < b.Size(); i++ {
		assert.NotZero(t, b.Flag(i))
	}
}

func TestFastDeleteCompress(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := New()
	b.SetGrowthChunk(16)
	b.SetMinGrowthChunk(1)
	require.NoError(t, b.AddParticleAttributesByName(InitialCoordinatesName, nil))

	for trial := 0; trial < 50; trial++ {
		b.DeleteAllParticles()
		n := 1 + rng.Intn(100)
		orig := fill(b, n)

		keep := [][Dim]float64{}
		deleted := 0
		for i := range orig {
			if rng.Intn(3) == 0 {
				b.DeleteParticleFast(i)
				deleted++
			} else {
				keep = append(keep, orig[i])
			}
		}

		b.Compress()
		require.Equal(t, n-deleted, b.Size(), "trial %d", trial)
		assert.False(t, b.NeedsCompress())
		assert.ElementsMatch(t, keep, aliveCoords(b), "trial %d", trial)

		// Attribute rows must travel with their particles.
		for i := 0; i < b.Size(); i++ {
			c := b.Coord(i)
			assert.Equal(t, c[:], b.AttrRow(InitialCoordinatesName, i))
		}
	}
}

func TestCompressEdgeCases(t *testing.T) {
	tests := []struct {
		n      int
		delete []int
	}{
		{1, []int{0}},
		{4, []int{0, 1, 2, 3}},
		{4, []int{3}},
		{4, []int{2, 3}},
		{4, []int{0}},
		{6, []int{0, 5}},
		{6, []int{1, 1, 1}},
	}

	for i, test := range tests {
		b := New()
		fill(b, test.n)
		dead := map[int]bool{}
		for _, j := range test.delete {
			b.DeleteParticleFast(j)
			dead[j] = true
		}
		b.Compress()

		assert.Equal(t, test.n-len(dead), b.Size(), "%d) %+v", i, test)
		for j := 0; j < b.Size(); j++ {
			assert.NotZero(t, b.Flag(j), "%d) %+v", i, test)
			assert.False(t, dead[int(b.X(j))], "%d) %+v", i, test)
		}
	}

	// Compressing a bunch with no holes is a no-op.
	b := New()
	orig := fill(b, 10)
	b.Compress()
	assert.Equal(t, orig, aliveCoords(b))
}

func TestDeleteParticle(t *testing.T) {
	b := New()
	require.NoError(t, b.AddParticleAttributesByName(InitialCoordinatesName, nil))
	require.NoError(t, b.AddParticleAttributes(NewGenericAttributes("tag", 1)))
	fill(b, 5)
	for i := 0; i < b.Size(); i++ {
		b.SetAttr("tag", i, 0, float64(10*i))
	}

	b.DeleteParticle(1)
	assert.Equal(t, 4, b.Size())
	assert.False(t, b.NeedsCompress())
	// The last particle takes the deleted slot.
	assert.Equal(t, 4.0, b.X(1))

	b.DeleteParticle(b.Size() - 1)
	assert.Equal(t, 3, b.Size())
	assert.Equal(t, []float64{0, 4, 2}, []float64{b.X(0), b.X(1), b.X(2)})

	// Attribute rows move with their particles.
	for i := 0; i < b.Size(); i++ {
		c := b.Coord(i)
		assert.Equal(t, c[:], b.AttrRow(InitialCoordinatesName, i), "%d", i)
		assert.Equal(t, 10*c[0], b.Attr("tag", i, 0), "%d", i)
	}
}

func TestEagerDeleteEquivalence(t *testing.T) {
	for n := 1; n < 12; n++ {
		for i := 0; i < n; i++ {
			eager, fast := New(), New()
			fill(eager, n)
			fill(fast, n)

			eager.DeleteParticle(i)
			fast.DeleteParticleFast(i)
			fast.Compress()

			assert.Equal(t, fast.Size(), eager.Size())
			assert.ElementsMatch(t, aliveCoords(fast), aliveCoords(eager),
				"n = %d, i = %d", n, i)
		}
	}
}

func TestGrowthPreservesData(t *testing.T) {
	b := New()
	b.SetGrowthChunk(3)
	b.SetMinGrowthChunk(1)
	require.NoError(t, b.AddParticleAttributes(NewGenericAttributes("w", 2)))

	orig := fill(b, 3)
	for i := range orig {
		b.SetAttr("w", i, 0, float64(10*i))
		b.SetAttr("w", i, 1, float64(10*i+1))
	}
	require.Equal(t, 3, b.Capacity())

	more := fill(b, 20)
	assert.Equal(t, 24, b.Capacity())
	assert.Equal(t, append(orig, more...), aliveCoords(b))
	for i := range orig {
		assert.Equal(t, []float64{float64(10 * i), float64(10*i + 1)},
			b.AttrRow("w", i))
	}
	for i := len(orig); i < b.Size(); i++ {
		assert.Equal(t, []float64{0, 0}, b.AttrRow("w", i))
	}
}

func TestDeleteAllParticles(t *testing.T) {
	b := New()
	b.SetGrowthChunk(4)
	b.SetMinGrowthChunk(1)
	require.NoError(t, b.AddParticleAttributesByName(SpinName, nil))
	fill(b, 10)
	b.DeleteParticleFast(3)

	capacity := b.Capacity()
	b.DeleteAllParticles()
	assert.Equal(t, 0, b.Size())
	assert.False(t, b.NeedsCompress())
	assert.Equal(t, capacity, b.Capacity())
	assert.Equal(t, []string{SpinName}, b.ParticleAttributesNames())

	assert.Equal(t, 0, b.AddParticle(1, 2, 3, 4, 5, 6))
	assert.Equal(t, capacity, b.Capacity())
}

func TestIndexOutOfRange(t *testing.T) {
	b := New()
	b.SetGrowthChunk(10)
	fill(b, 3)

	for _, i := range []int{-1, 3, 9, 100} {
		assert.Panics(t, func() { b.Coord(i) }, "Coord(%d)", i)
		assert.Panics(t, func() { b.X(i) }, "X(%d)", i)
		assert.Panics(t, func() { b.Flag(i) }, "Flag(%d)", i)
		assert.Panics(t, func() { b.DeleteParticle(i) }, "Delete(%d)", i)
		assert.Panics(t, func() { b.DeleteParticleFast(i) }, "Fast(%d)", i)
	}
}

func TestCoordinateAliases(t *testing.T) {
	b := New()
	i := b.AddParticle(1, 2, 3, 4, 5, 6)

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6},
		[]float64{b.X(i), b.PX(i), b.Y(i), b.PY(i), b.Z(i), b.PZ(i)})
	assert.Equal(t, []float64{2, 4, 5, 6},
		[]float64{b.XP(i), b.YP(i), b.Phi(i), b.DE(i)})

	b.Coord(i)[0] = -1
	b.SetCoord(i, [Dim]float64{-1, -2, -3, -4, -5, -6})
	assert.Equal(t, -6.0, b.DE(i))
}

func TestAllocationFailure(t *testing.T) {
	oldMax, oldFatal := maxCapacity, fatal
	defer func() { maxCapacity, fatal = oldMax, oldFatal }()

	maxCapacity = 25
	fatal = func(format string, a ...interface{}) {
		panic(fmt.Sprintf(format, a...))
	}

	b := New()
	b.SetGrowthChunk(10)
	b.SetMinGrowthChunk(1)
	fill(b, 20)
	assert.Equal(t, 20, b.Capacity())
	assert.Panics(t, func() { fill(b, 1) })
	assert.Equal(t, 20, b.Capacity())
	assert.Equal(t, 20, b.Size())
}
