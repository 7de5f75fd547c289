package bunch

/* global.go contains the methods which deal with the particles of every
process in the group instead of just this one. */

import (
	"fmt"

	"github.com/phil-mansfield/macrobunch/lib/mpi"
)

// SetComm sets the process group this Bunch's process belongs to.
func (b *Bunch) SetComm(comm mpi.Comm) { b.comm = comm }

// Comm returns the process group this Bunch's process belongs to.
func (b *Bunch) Comm() mpi.Comm { return b.comm }

func (b *Bunch) MPIRank() int { return b.comm.Rank() }
func (b *Bunch) MPISize() int { return b.comm.Size() }

// SizeGlobal sums Size over every process in the group, remembers the result,
// and returns it. This is a collective: every process must call it at the
// same point, or the whole group will hang. On error, the remembered value
// is left alone.
func (b *Bunch) SizeGlobal() (int, error) {
	n, err := b.comm.AllreduceSumInt(b.size)
	if err != nil {
		return 0, fmt.Errorf("could not reduce bunch size over %d "+
			"processes: %w", b.comm.Size(), err)
	}
	b.sizeGlobal = n
	b.log.Debug().Int("size", b.size).Int("size_global", n).
		Msg("reduced global bunch size")
	return n, nil
}

// SizeGlobalFromMemory returns the result of the last SizeGlobal call
// without communicating, or zero if it was never called. It isn't updated
// when particles are added or removed, so it may be arbitrarily stale.
func (b *Bunch) SizeGlobalFromMemory() int { return b.sizeGlobal }
