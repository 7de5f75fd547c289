/*package mpi contains the process-group abstraction used for collective
reductions over particle containers. Each process in a simulation owns its
own containers and only ever coordinates with its peers through a Comm.

Three implementations are provided: Serial, a single-process group; the
in-process groups built by NewLocalGroup, which run every "process" as a
goroutine in one binary; and World, a cgo wrapper around MPI_COMM_WORLD that
is only compiled with the "mpi" build tag.
*/
package mpi

// Comm is a group of cooperating processes. Rank and Size are cheap local
// queries. AllreduceSumInt is a collective: every member of the group must
// call it the same number of times, and each call blocks until all members
// have contributed. A member that never makes the matching call will stall
// the rest of the group indefinitely.
type Comm interface {
	// Rank returns the index of the calling process within the group.
	Rank() int
	// Size returns the number of processes in the group.
	Size() int
	// AllreduceSumInt returns the sum of x over every process in the group.
	AllreduceSumInt(x int) (int, error)
}

// Type assertions
var (
	_ Comm = serial{}
	_ Comm = &localComm{}
)

type serial struct{}

// Serial returns a Comm containing only the calling process.
func Serial() Comm { return serial{} }

func (serial) Rank() int                          { return 0 }
func (serial) Size() int                          { return 1 }
func (serial) AllreduceSumInt(x int) (int, error) { return x, nil }
