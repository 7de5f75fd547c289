package mpi

/* local.go contains an in-process process group. Every member is expected to
run on its own goroutine, the same way every member of an MPI communicator
runs in its own process. */

import (
	"fmt"
	"sync"
)

// localGroup is the state shared by every member of an in-process group.
// Reductions are separated into generations so that a fast member can start
// the next reduction while slow members are still collecting the result of
// the previous one.
type localGroup struct {
	mu   sync.Mutex
	cond *sync.Cond

	n          int
	arrived    int
	sum        int
	result     int
	generation uint64
}

type localComm struct {
	group *localGroup
	rank  int
}

// NewLocalGroup creates an in-process group with n members and returns the
// Comm of each member, indexed by rank.
func NewLocalGroup(n int) []Comm {
	if n <= 0 {
		panic(fmt.Sprintf("mpi: a local group needs at least one member, "+
			"but %d were requested.", n))
	}

	g := &localGroup{n: n}
	g.cond = sync.NewCond(&g.mu)

	comms := make([]Comm, n)
	for i := range comms {
		comms[i] = &localComm{g, i}
	}
	return comms
}

func (c *localComm) Rank() int { return c.rank }
func (c *localComm) Size() int { return c.group.n }

func (c *localComm) AllreduceSumInt(x int) (int, error) {
	g := c.group
	g.mu.Lock()
	defer g.mu.Unlock()

	gen := g.generation
	g.sum += x
	g.arrived++

	if g.arrived == g.n {
		// Last one in publishes the result and opens the next generation.
		g.result = g.sum
		g.sum, g.arrived = 0, 0
		g.generation++
		g.cond.Broadcast()
		return g.result, nil
	}

	for gen == g.generation {
		g.cond.Wait()
	}
	// g.result can't be overwritten until this member joins the next
	// generation, so it's safe to read here.
	return g.result, nil
}
