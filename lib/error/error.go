/*package error contains simple functions for reporting fatal macrobunch
errors. Import it as g_error so it doesn't shadow the builtin.
*/
package error

import (
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Logger is where fatal errors are reported. The CLI replaces it with its
// configured logger.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger()

// exit is swapped out in tests.
var exit = os.Exit

// External reports an error and kills the program. It should be used when
// an error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as
// the standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	Logger.Error().Msgf("macrobunch exited early with the following error:\n"+
		format, a...)
	exit(1)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix, or when the
// program can't continue in a meaningful state (e.g. memory exhaustion). It
// has the same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	Logger.Error().Str("stack", string(debug.Stack())).
		Msgf("macrobunch exited early with the following internal error:\n"+
			format, a...)
	exit(1)
}
