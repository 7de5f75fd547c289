package lib

/* thread.go contains functions useful for multi-threading. */

import (
	"fmt"
	"runtime"
)

// CheckThreads returns an error if n isn't a valid thread count for this
// machine. n = -1 means every core.
func CheckThreads(n int) error {
	if n == -1 {
		return nil
	} else if n <= 0 {
		return fmt.Errorf("%d threads requested, but at least one is "+
			"needed. Set -threads -1 to use every core.", n)
	} else if n > runtime.NumCPU() {
		return fmt.Errorf("%d threads requested, but your system only has "+
			"%d cores. Set -threads -1 to use every core.",
			n, runtime.NumCPU())
	}
	return nil
}

// SetThreads limits the number of OS threads running Go code at once.
func SetThreads(n int) error {
	if err := CheckThreads(n); err != nil {
		return err
	}
	if n == -1 {
		n = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(n)
	return nil
}
