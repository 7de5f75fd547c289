package bunch

/* store.go contains rowStore, which owns the per-particle arrays of a Bunch.
Row i of every array always describes the same particle, so anything that
reallocates or moves rows has to go through here. */

// rowStore holds the liveness flags, 6D coordinates, and flat attribute array
// of a Bunch. All three always have the same number of rows. The attribute
// array is row-major with width columns per row.
type rowStore struct {
	flag  []int
	coord [][Dim]float64
	attr  []float64
	width int
}

// rows returns the number of allocated rows.
func (s *rowStore) rows() int { return len(s.flag) }

// grow reallocates every array to hold capacity rows and copies over the
// first n rows. The new arrays are fully built before any of them replace
// the old ones.
func (s *rowStore) grow(capacity, n int) {
	flag := make([]int, capacity)
	coord := make([][Dim]float64, capacity)
	attr := make([]float64, capacity*s.width)

	copy(flag, s.flag[:n])
	copy(coord, s.coord[:n])
	copy(attr, s.attr[:n*s.width])

	s.flag, s.coord, s.attr = flag, coord, attr
}

// addColumns appends k columns to the right of the attribute array. The
// first n rows keep their existing column values. New columns are zeroed.
func (s *rowStore) addColumns(k, n int) {
	w := s.width + k
	attr := make([]float64, s.rows()*w)
	for i := 0; i < n; i++ {
		copy(attr[i*w:i*w+s.width], s.attr[i*s.width:(i+1)*s.width])
	}
	s.attr, s.width = attr, w
}

// removeColumns drops the columns [low, upp) from the attribute array and
// shifts everything to their right left to fill the gap. Only the first n
// rows are copied.
func (s *rowStore) removeColumns(low, upp, n int) {
	w := s.width - (upp - low)
	attr := make([]float64, s.rows()*w)
	for i := 0; i < n; i++ {
		src := s.attr[i*s.width : (i+1)*s.width]
		dst := attr[i*w : (i+1)*w]
		copy(dst, src[:low])
		copy(dst[low:], src[upp:])
	}
	s.attr, s.width = attr, w
}

// move copies every array's row src into row dst.
func (s *rowStore) move(dst, src int) {
	s.flag[dst] = s.flag[src]
	s.coord[dst] = s.coord[src]
	copy(s.attrRow(dst), s.attrRow(src))
}

// attrRow returns the full attribute row of particle i. The capacity is
// clipped so appending to the result can't spill into row i+1.
func (s *rowStore) attrRow(i int) []float64 {
	lo, hi := i*s.width, (i+1)*s.width
	return s.attr[lo:hi:hi]
}
