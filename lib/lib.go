/*package lib contains the command line plumbing of macrobunch: argument
parsing, validation, and help text. The container itself and everything that
reads, writes, or summarizes it live in lib/'s subpackages.
*/
package lib

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/macrobunch/lib/config"
)

// Version is the version of the software.
var Version = "0.1.0"

// Modes lists every mode macrobunch can be run in.
var Modes = []string{"help", "check", "info", "convert", "prune"}

const helpText = `macrobunch %s

Usage:
    macrobunch <mode> [flags]

Modes:
    help     Print this message and an example configuration file.
    check    Validate the flags and configuration file of another mode
             without running it, e.g. "macrobunch check convert -in ...".
    info     Print the size, attribute blocks, and coordinate moments of a
             dump. With -ranks N, -in is a rank format such as
             "bunch.{%%03d,rank}.zst" and one dump is read per rank.
             With -mpi, every process launched by mpirun is one rank.
    convert  Read a dump and write it to -out. Files ending in .zst use the
             binary format; everything else is text.
    prune    Delete the particles in the sequence given by -delete, e.g.
             "0..100 - 63 + 200", compress, and write the rest to -out.

Flags:
    -config   Configuration file. Defaults are used if it isn't given.
    -in       Input dump.
    -out      Output dump (convert, prune).
    -coords-only
              Only read coordinates; attribute blocks from -config are
              reinitialized to their defaults (convert, prune).
    -delete   Sequence of particle indices to delete (prune).
    -ranks    Number of ranks in the process group (info).
    -threads  Number of threads used for the ranks, -1 for all cores (info).
    -mpi      Run one rank per MPI process. Needs a binary built with
              '-tags mpi' (info).
    -v        Log at debug level.

Example configuration file:

`

// PrintHelp writes usage information and the example configuration file.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, helpText, Version)
	fmt.Fprintln(w, config.ExampleFile)
}
