package lib

// RunMode indicates how the ranks of a run are laid out.
type RunMode int

const (
	// SerialMode runs a single rank.
	SerialMode RunMode = iota
	// LocalGroupMode runs every rank of a process group as a goroutine in
	// this process.
	LocalGroupMode
	// MPIMode runs one rank per process of an mpirun launch.
	MPIMode
)

func (m RunMode) String() string {
	switch m {
	case SerialMode:
		return "serial"
	case LocalGroupMode:
		return "local-group"
	case MPIMode:
		return "mpi"
	}
	return "unknown"
}
