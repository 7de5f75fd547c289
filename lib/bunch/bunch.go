/*package bunch contains Bunch, the in-memory container for the macro-particles
owned by one process of a distributed simulation.

A Bunch stores a 6D phase-space coordinate and a liveness flag for every
particle, plus any number of named per-particle attribute blocks which can be
attached and detached at run time. Rows are grown in fixed-size chunks and
both coordinates and attributes are always resized together, so row i of the
coordinate array and row i of the attribute array describe the same particle.

Particles can be removed in two ways. DeleteParticle removes a particle
immediately by moving the last particle into its slot. DeleteParticleFast
only marks the particle as dead; the hole stays until Compress is called.
Neither preserves particle order.

A Bunch is not safe for concurrent use.
*/
package bunch

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	g_error "github.com/phil-mansfield/macrobunch/lib/error"
	"github.com/phil-mansfield/macrobunch/lib/mpi"
)

const (
	// Dim is the number of phase-space coordinates per particle. They are
	// ordered (x, px, y, py, z, pz). Depending on the bunch-wide convention
	// the last two are sometimes (phi, dE) instead.
	Dim = 6

	// DefaultGrowthChunk is the number of rows added to a Bunch each time it
	// runs out of room.
	DefaultGrowthChunk = 1000
	// DefaultMinGrowthChunk is the lower limit on the growth chunk.
	DefaultMinGrowthChunk = 1000
)

var (
	// maxCapacity is the largest number of rows a Bunch will try to
	// allocate. Particle indices are exchanged as 32-bit ints in dump files
	// and MPI reductions, so anything larger is treated as exhaustion.
	maxCapacity = math.MaxInt32
	// fatal reports unrecoverable allocation failures.
	fatal = g_error.Internal
)

// Bunch is a container of macro-particles. The zero value is not usable:
// create Bunches with New.
type Bunch struct {
	store rowStore

	size           int
	growthChunk    int
	minGrowthChunk int
	needsCompress  bool

	// sizeGlobal is the result of the most recent SizeGlobal call.
	sizeGlobal int

	attrs     map[string]*attrEntry
	attrOrder []string
	memory    []ParticleAttributes

	bucket   *Bucket
	syncPart SyncPart
	comm     mpi.Comm
	log      zerolog.Logger
}

// New creates an empty Bunch with no allocated rows. Global sizes are
// computed over mpi.Serial() until SetComm is called.
func New() *Bunch {
	b := &Bunch{
		growthChunk:    DefaultGrowthChunk,
		minGrowthChunk: DefaultMinGrowthChunk,
		attrs:          map[string]*attrEntry{},
		bucket:         NewBucket(),
		comm:           mpi.Serial(),
		log:            zerolog.Nop(),
	}
	b.initBunchAttributes()
	return b
}

// SetLogger sets the logger used to report resizes, compactions, and
// attribute changes. The default logger discards everything.
func (b *Bunch) SetLogger(log zerolog.Logger) { b.log = log }

// SetGrowthChunk sets the number of rows added whenever the Bunch grows.
// The effective chunk is never smaller than the minimum growth chunk.
func (b *Bunch) SetGrowthChunk(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("bunch: growth chunk must be positive, got %d", n))
	}
	b.growthChunk = n
}

// SetMinGrowthChunk sets the lower limit on the growth chunk.
func (b *Bunch) SetMinGrowthChunk(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("bunch: minimum growth chunk must be positive, "+
			"got %d", n))
	}
	b.minGrowthChunk = n
}

// Size returns the number of particle slots in use on this process. Slots
// which were removed with DeleteParticleFast still count until Compress is
// called.
func (b *Bunch) Size() int { return b.size }

// Capacity returns the number of allocated rows.
func (b *Bunch) Capacity() int { return b.store.rows() }

// AliveCount counts the alive particles below Size. Unlike Size, it's O(n).
func (b *Bunch) AliveCount() int {
	n := 0
	for _, f := range b.store.flag[:b.size] {
		if f != 0 {
			n++
		}
	}
	return n
}

// NeedsCompress returns true if DeleteParticleFast has left a hole that
// Compress hasn't removed yet. While it's true, slots below Size may be dead.
func (b *Bunch) NeedsCompress() bool { return b.needsCompress }

// check panics if i isn't the index of a particle slot.
func (b *Bunch) check(i int) {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("bunch: particle index %d out of range [0, %d)",
			i, b.size))
	}
}

// Flag returns the liveness flag of particle i. Zero means dead.
func (b *Bunch) Flag(i int) int {
	b.check(i)
	return b.store.flag[i]
}

// Coord returns a pointer to the coordinates of particle i, which can be
// used to modify them. The pointer is invalidated by any operation that
// grows the Bunch.
func (b *Bunch) Coord(i int) *[Dim]float64 {
	b.check(i)
	return &b.store.coord[i]
}

// SetCoord overwrites the coordinates of particle i.
func (b *Bunch) SetCoord(i int, c [Dim]float64) {
	b.check(i)
	b.store.coord[i] = c
}

func (b *Bunch) X(i int) float64  { return b.Coord(i)[0] }
func (b *Bunch) PX(i int) float64 { return b.Coord(i)[1] }
func (b *Bunch) Y(i int) float64  { return b.Coord(i)[2] }
func (b *Bunch) PY(i int) float64 { return b.Coord(i)[3] }
func (b *Bunch) Z(i int) float64  { return b.Coord(i)[4] }
func (b *Bunch) PZ(i int) float64 { return b.Coord(i)[5] }

// XP, YP, Phi, and DE are aliases for PX, PY, Z, and PZ under the other
// naming conventions for the same columns.

func (b *Bunch) XP(i int) float64  { return b.PX(i) }
func (b *Bunch) YP(i int) float64  { return b.PY(i) }
func (b *Bunch) Phi(i int) float64 { return b.Z(i) }
func (b *Bunch) DE(i int) float64  { return b.PZ(i) }

// AddParticle appends a particle and returns its index. New particles are
// always placed at index Size(), even if there are dead slots below it.
// Every attached attribute block initializes its columns for the new row.
func (b *Bunch) AddParticle(x, px, y, py, z, pz float64) int {
	return b.AddParticleCoord([Dim]float64{x, px, y, py, z, pz})
}

// AddParticleCoord is AddParticle with the coordinates given as an array.
func (b *Bunch) AddParticleCoord(c [Dim]float64) int {
	if b.size == b.store.rows() {
		b.resize()
	}

	i := b.size
	b.store.flag[i] = 1
	b.store.coord[i] = c
	b.size++
	b.attrInit(i)

	return i
}

// resize grows every row array by one chunk. Running past maxCapacity is
// fatal.
func (b *Bunch) resize() {
	chunk := b.growthChunk
	if chunk < b.minGrowthChunk {
		chunk = b.minGrowthChunk
	}

	old := b.store.rows()
	if chunk > maxCapacity-old {
		fatal("Cannot grow a bunch with capacity %d by %d rows: the "+
			"particle address space is limited to %d rows.",
			old, chunk, maxCapacity)
		return
	}

	b.store.grow(old+chunk, b.size)
	b.log.Debug().Int("old_capacity", old).Int("capacity", old+chunk).
		Int("size", b.size).Msg("grew particle arrays")
}

// DeleteParticleFast marks particle i as dead without moving anything. Size
// doesn't change until Compress is called. Several fast deletions can be
// batched before a single Compress.
func (b *Bunch) DeleteParticleFast(i int) {
	b.check(i)
	b.store.flag[i] = 0
	b.needsCompress = true
}

// DeleteParticle removes particle i immediately by moving the last particle
// into its slot and shrinking Size by one. The particle previously at
// Size()-1 now lives at i; any other index held across this call is stale.
func (b *Bunch) DeleteParticle(i int) {
	b.check(i)
	b.removeAndCompact(i)
}

// removeAndCompact fills slot i with the last slot's rows and drops the last
// slot. It's the swap-to-end primitive shared by DeleteParticle and
// Compress.
func (b *Bunch) removeAndCompact(i int) {
	last := b.size - 1
	if i != last {
		b.store.move(i, last)
	}
	b.store.flag[last] = 0
	b.size--
}

// Compress removes every dead slot below Size by filling it with the last
// slot's data, so that every slot below Size is alive afterwards. The order
// of the surviving particles is not preserved.
func (b *Bunch) Compress() {
	if !b.needsCompress {
		return
	}

	old := b.size
	for i := 0; i < b.size; {
		if b.store.flag[i] != 0 {
			i++
			continue
		}
		// The moved-in particle may be dead too, so i is checked again.
		b.removeAndCompact(i)
	}
	b.needsCompress = false

	b.log.Debug().Int("old_size", old).Int("size", b.size).
		Msg("compressed bunch")
}

// DeleteAllParticles empties the Bunch without releasing memory. Attribute
// blocks stay attached, so the Bunch can be refilled immediately.
func (b *Bunch) DeleteAllParticles() {
	b.size = 0
	b.needsCompress = false
}

// attrInit runs the Init hook of every attached attribute block on row i.
func (b *Bunch) attrInit(i int) {
	for _, name := range b.attrOrder {
		b.attrs[name].attr.Init(b, i)
	}
}
