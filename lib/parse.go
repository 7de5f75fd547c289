package lib

import (
	"flag"
	"fmt"
	"io"

	"github.com/phil-mansfield/macrobunch/lib/config"
)

// Args stores the flags of a macrobunch run along with the configuration
// they point to.
type Args struct {
	// Mode is the mode being run. For "check", Target is the mode whose
	// arguments are being checked.
	Mode, Target string

	ConfigFile string
	In, Out    string
	Delete     string
	CoordsOnly bool
	Ranks      int
	Threads    int
	Verbose    bool
	MPI        bool

	RunMode RunMode
	Config  *config.Config
}

// ParseCommandLine parses macrobunch's command line arguments, not
// including the program name. Expects that the arguments are presented in
// the order:
// $ macrobunch <mode> [-<flag1> <value1>] [-<flag2> <value2>]
// or, for check mode,
// $ macrobunch check <mode> [-<flag1> <value1>] ...
// Flag syntax errors are returned immediately. Everything else is left to
// Check.
func ParseCommandLine(argv []string) (*Args, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("No mode was given. Run 'macrobunch help' " +
			"to see the valid modes.")
	}

	args := &Args{Mode: argv[0], Target: argv[0], Ranks: 1, Threads: -1}
	argv = argv[1:]
	if args.Mode == "help" {
		return args, nil
	} else if args.Mode == "check" {
		if len(argv) == 0 {
			return nil, fmt.Errorf("'check' mode needs the name of the " +
				"mode being checked, e.g. 'macrobunch check convert ...'.")
		}
		args.Target, argv = argv[0], argv[1:]
	}

	if !isMode(args.Target) || args.Target == "help" ||
		args.Target == "check" {
		return nil, fmt.Errorf("You attempted to run macrobunch in the mode "+
			"'%s', but the only valid modes are %q.", args.Target, Modes)
	}

	fs := flag.NewFlagSet(args.Target, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&args.ConfigFile, "config", "", "")
	fs.StringVar(&args.In, "in", "", "")
	fs.BoolVar(&args.Verbose, "v", false, "")

	switch args.Target {
	case "info":
		fs.IntVar(&args.Ranks, "ranks", 1, "")
		fs.IntVar(&args.Threads, "threads", -1, "")
		fs.BoolVar(&args.MPI, "mpi", false, "")
	case "convert":
		fs.StringVar(&args.Out, "out", "", "")
		fs.BoolVar(&args.CoordsOnly, "coords-only", false, "")
	case "prune":
		fs.StringVar(&args.Out, "out", "", "")
		fs.StringVar(&args.Delete, "delete", "", "")
		fs.BoolVar(&args.CoordsOnly, "coords-only", false, "")
	}

	if err := fs.Parse(argv); err != nil {
		return nil, fmt.Errorf("Could not parse the flags of '%s' mode: %s",
			args.Target, err.Error())
	} else if fs.NArg() > 0 {
		return nil, fmt.Errorf("'%s' mode got unexpected arguments %q.",
			args.Target, fs.Args())
	}

	if args.MPI {
		args.RunMode = MPIMode
	} else if args.Ranks > 1 {
		args.RunMode = LocalGroupMode
	}
	return args, nil
}

func isMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}
