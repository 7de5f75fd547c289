/*package moments computes summary statistics of the phase-space coordinates
stored in a Bunch.*/
package moments

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

// Moment summarizes one coordinate over the alive particles of a Bunch. Std
// is the unbiased sample standard deviation. Every field is NaN when there
// are no alive particles, and Std is NaN when there is exactly one.
type Moment struct {
	Mean, Std, Min, Max float64
}

// Compute returns the Moment of each of the Dim coordinates of b, plus the
// number of alive particles they were computed over.
func Compute(b *bunch.Bunch) ([bunch.Dim]Moment, int) {
	cols := Columns(b)
	out := [bunch.Dim]Moment{}
	n := len(cols[0])

	for k := range out {
		if n == 0 {
			nan := math.NaN()
			out[k] = Moment{nan, nan, nan, nan}
			continue
		}
		mean, std := stat.MeanStdDev(cols[k], nil)
		out[k] = Moment{mean, std, floats.Min(cols[k]), floats.Max(cols[k])}
	}
	return out, n
}

// Columns copies the coordinates of the alive particles of b into one slice
// per coordinate.
func Columns(b *bunch.Bunch) [bunch.Dim][]float64 {
	n := b.AliveCount()
	cols := [bunch.Dim][]float64{}
	for k := range cols {
		cols[k] = make([]float64, 0, n)
	}

	for i := 0; i < b.Size(); i++ {
		if b.Flag(i) == 0 {
			continue
		}
		c := b.Coord(i)
		for k := range cols {
			cols[k] = append(cols[k], c[k])
		}
	}
	return cols
}
