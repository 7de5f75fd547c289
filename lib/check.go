package lib

/* check.go contains the core functions of macrobunch's "check" mode. */

import (
	"fmt"

	"github.com/phil-mansfield/macrobunch/lib/config"
	"github.com/phil-mansfield/macrobunch/lib/format"
	"github.com/phil-mansfield/macrobunch/lib/mpi"
)

// Check validates args for the mode in args.Target and reads the
// configuration file, storing it in args.Config. It doesn't touch the
// input or output dumps. The first problem found is returned.
func Check(args *Args) error {
	if args.ConfigFile == "" {
		args.Config = config.Default()
	} else {
		c, err := config.Read(args.ConfigFile)
		if err != nil {
			return fmt.Errorf("Could not read the configuration file '%s': %s",
				args.ConfigFile, err.Error())
		}
		args.Config = c
	}
	if args.Verbose {
		args.Config.Log.Level = "debug"
	}

	if args.In == "" {
		return fmt.Errorf("'%s' mode needs an input dump, set with -in.",
			args.Target)
	}

	switch args.Target {
	case "info":
		if args.Ranks <= 0 {
			return fmt.Errorf("-ranks is %d, but must be positive.",
				args.Ranks)
		}
		if err := CheckThreads(args.Threads); err != nil {
			return err
		}
		switch args.RunMode {
		case LocalGroupMode:
			return checkRankFormat(args.In, args.Ranks)
		case MPIMode:
			if args.Ranks > 1 {
				return fmt.Errorf("-mpi and -ranks %d were both given. "+
					"Under -mpi, the number of ranks is set by mpirun.",
					args.Ranks)
			} else if !mpi.Enabled {
				return fmt.Errorf("-mpi was given, but macrobunch was " +
					"built without MPI support. Rebuild with '-tags mpi'.")
			}
			return checkRankFormat(args.In, 1)
		}
	case "convert", "prune":
		if args.Out == "" {
			return fmt.Errorf("'%s' mode needs an output dump, set with "+
				"-out.", args.Target)
		} else if args.Out == args.In {
			return fmt.Errorf("-in and -out are both '%s'. Write to a "+
				"different file.", args.In)
		}
	}

	if args.Target == "prune" {
		if args.Delete == "" {
			return fmt.Errorf("'prune' mode needs a sequence of particles " +
				"to delete, set with -delete.")
		} else if _, err := format.ExpandSequenceFormat(args.Delete); err != nil {
			return fmt.Errorf("Could not parse -delete '%s': %s",
				args.Delete, err.Error())
		}
	}

	return nil
}

// checkRankFormat makes sure that the rank format in gives every rank its
// own file.
func checkRankFormat(in string, ranks int) error {
	seen := map[string]int{}
	for rank := 0; rank < ranks; rank++ {
		fname, err := format.ExpandRankFormat(in, rank)
		if err != nil {
			return err
		}
		if prev, ok := seen[fname]; ok {
			return fmt.Errorf("Ranks %d and %d would both read '%s'. Make "+
				"sure -in contains a variable like {%%d,rank}.",
				prev, rank, fname)
		}
		seen[fname] = rank
	}
	return nil
}
