package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/phil-mansfield/macrobunch/lib"
	"github.com/phil-mansfield/macrobunch/lib/bunch"
	"github.com/phil-mansfield/macrobunch/lib/dump"
	g_error "github.com/phil-mansfield/macrobunch/lib/error"
	"github.com/phil-mansfield/macrobunch/lib/format"
	"github.com/phil-mansfield/macrobunch/lib/moments"
	"github.com/phil-mansfield/macrobunch/lib/mpi"
)

func main() {
	// Parse arguments.
	args, err := lib.ParseCommandLine(os.Args[1:])
	if err != nil {
		g_error.External("%s", err.Error())
	}

	if args.Mode == "help" {
		lib.PrintHelp(os.Stdout)
		return
	}

	if err := lib.Check(args); err != nil {
		g_error.External("%s", err.Error())
	}
	log := args.Config.Logger(os.Stderr)
	g_error.Logger = log

	// Run the chosen mode.
	switch args.Mode {
	case "check":
		fmt.Println("No errors detected.")
	case "info":
		Info(args, log)
	case "convert":
		Convert(args, log)
	case "prune":
		Prune(args, log)
	}
}

// newBunch creates a configured bunch for the given rank and logs through log.
func newBunch(args *lib.Args, comm mpi.Comm, log zerolog.Logger) *bunch.Bunch {
	b, err := args.Config.NewBunch(comm)
	if err != nil {
		g_error.External("Could not create a bunch from the configuration: %s",
			err.Error())
	}
	b.SetLogger(log.With().Int("rank", comm.Rank()).Logger())
	return b
}

// read appends the contents of fname to b, exiting on failure.
func read(fname string, b *bunch.Bunch, coordsOnly bool) {
	if _, err := dump.ReadFile(fname, b, coordsOnly); err != nil {
		g_error.External("Could not read '%s': %s", fname, err.Error())
	}
}

// write writes b to fname, exiting on failure.
func write(fname string, b *bunch.Bunch) {
	if err := dump.WriteFile(fname, b); err != nil {
		g_error.External("Could not write '%s': %s", fname, err.Error())
	}
}

// Info runs macrobunch's "info" mode, which summarizes one dump per rank.
func Info(args *lib.Args, log zerolog.Logger) {
	if err := lib.SetThreads(args.Threads); err != nil {
		g_error.External("%s", err.Error())
	}
	if args.RunMode == lib.MPIMode {
		infoMPI(args, log)
		return
	}

	comms := []mpi.Comm{mpi.Serial()}
	if args.RunMode == lib.LocalGroupMode {
		comms = mpi.NewLocalGroup(args.Ranks)
	}

	// Every file is read before the collective starts, so a rank that fails
	// to read can't leave the others waiting.
	fnames := make([]string, len(comms))
	bunches := make([]*bunch.Bunch, len(comms))
	for rank, comm := range comms {
		fname, err := format.ExpandRankFormat(args.In, rank)
		if err != nil {
			g_error.External("%s", err.Error())
		}
		fnames[rank] = fname
		bunches[rank] = newBunch(args, comm, log)
		read(fname, bunches[rank], false)
	}

	globals := make([]int, len(comms))
	errs := make([]error, len(comms))
	wg := &sync.WaitGroup{}
	for rank := range comms {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			globals[rank], errs[rank] = bunches[rank].SizeGlobal()
		}(rank)
	}
	wg.Wait()

	for rank := range comms {
		if errs[rank] != nil {
			g_error.External("Rank %d could not compute the global size: %s",
				rank, errs[rank].Error())
		}
		printInfo(rank, fnames[rank], bunches[rank])
	}
	fmt.Printf("Global size: %d particles over %d rank(s) (%s)\n",
		globals[0], len(comms), args.RunMode)
}

// infoMPI is Info for runs launched by mpirun. Every process reads the dump
// for its own rank and rank 0 prints the global size.
func infoMPI(args *lib.Args, log zerolog.Logger) {
	if err := mpi.Init(); err != nil {
		g_error.External("Could not start MPI: %s", err.Error())
	}
	comm := mpi.World()
	rank := comm.Rank()

	fname, err := format.ExpandRankFormat(args.In, rank)
	if err != nil {
		g_error.External("%s", err.Error())
	}
	b := newBunch(args, comm, log)
	read(fname, b, false)

	global, err := b.SizeGlobal()
	if err != nil {
		g_error.External("Rank %d could not compute the global size: %s",
			rank, err.Error())
	}
	printInfo(rank, fname, b)
	if rank == 0 {
		fmt.Printf("Global size: %d particles over %d rank(s) (%s)\n",
			global, comm.Size(), args.RunMode)
	}

	if err := mpi.Finalize(); err != nil {
		g_error.External("Could not shut down MPI: %s", err.Error())
	}
}

func printInfo(rank int, fname string, b *bunch.Bunch) {
	fmt.Printf("Rank %d: %s\n", rank, fname)
	fmt.Printf("    Size: %d\n", b.Size())
	for _, name := range b.BunchAttributes().DoubleNames() {
		x, _ := b.BunchAttributes().Double(name)
		fmt.Printf("    %s: %g\n", name, x)
	}
	for _, name := range b.BunchAttributes().IntNames() {
		x, _ := b.BunchAttributes().Int(name)
		fmt.Printf("    %s: %d\n", name, x)
	}
	for _, name := range b.ParticleAttributesNames() {
		low, upp, _ := b.ParticleAttributesRange(name)
		fmt.Printf("    Attributes %s: columns [%d, %d)\n", name, low, upp)
	}

	m, n := moments.Compute(b)
	if n == 0 {
		return
	}
	names := [bunch.Dim]string{"x", "px", "y", "py", "z", "pz"}
	fmt.Printf("    %-3s %14s %14s %14s %14s\n",
		"", "mean", "std", "min", "max")
	for k := range m {
		fmt.Printf("    %-3s %14.6g %14.6g %14.6g %14.6g\n",
			names[k], m[k].Mean, m[k].Std, m[k].Min, m[k].Max)
	}
}

// Convert runs macrobunch's "convert" mode, which rewrites a dump in the
// format given by the output file's extension.
func Convert(args *lib.Args, log zerolog.Logger) {
	b := newBunch(args, mpi.Serial(), log)
	read(args.In, b, args.CoordsOnly)
	write(args.Out, b)
	log.Info().Str("in", args.In).Str("out", args.Out).
		Int("particles", b.Size()).Msg("converted")
}

// Prune runs macrobunch's "prune" mode, which deletes a sequence of
// particles from a dump.
func Prune(args *lib.Args, log zerolog.Logger) {
	b := newBunch(args, mpi.Serial(), log)
	read(args.In, b, args.CoordsOnly)

	idx, err := format.ExpandSequenceFormat(args.Delete)
	if err != nil {
		g_error.External("%s", err.Error())
	}
	for _, i := range idx {
		if i < 0 || i >= b.Size() {
			g_error.External("-delete contains the index %d, but '%s' only "+
				"has %d particles.", i, args.In, b.Size())
		}
	}

	for _, i := range idx {
		b.DeleteParticleFast(i)
	}
	b.Compress()

	write(args.Out, b)
	log.Info().Str("in", args.In).Str("out", args.Out).
		Int("deleted", len(idx)).Int("particles", b.Size()).Msg("pruned")
}
