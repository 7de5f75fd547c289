package dump

/* file.go contains helpers which pick a format from a file's name. */

import (
	"os"
	"strings"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

// BinaryExt is the extension of binary dumps. Every other file is read and
// written as text.
const BinaryExt = ".zst"

// IsBinary returns true if fname should be in the binary format.
func IsBinary(fname string) bool {
	return strings.HasSuffix(fname, BinaryExt)
}

// ReadFile appends the particles in fname to b and returns the number read.
// If coordsOnly is true, only coordinates are read and b's attribute blocks
// are reinitialized, as in ReadTextCoords.
func ReadFile(fname string, b *bunch.Bunch, coordsOnly bool) (int, error) {
	f, err := os.Open(fname)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch {
	case !IsBinary(fname) && coordsOnly:
		return ReadTextCoords(f, b)
	case !IsBinary(fname):
		return ReadText(f, b)
	case !coordsOnly:
		return ReadBinary(f, b)
	}

	// The binary format has no row-by-row reader, so the full file goes
	// into a scratch bunch first.
	tmp := bunch.New()
	n, err := ReadBinary(f, tmp)
	if err != nil {
		return 0, err
	}

	b.ClearAllParticleAttributesAndMemorize()
	for i := 0; i < tmp.Size(); i++ {
		b.AddParticleCoord(*tmp.Coord(i))
	}
	return n, b.RestoreAllParticleAttributesFromMemory()
}

// WriteFile writes the alive particles of b to fname, replacing it.
func WriteFile(fname string, b *bunch.Bunch) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	if IsBinary(fname) {
		err = WriteBinary(f, b)
	} else {
		err = WriteText(f, b)
	}

	if cErr := f.Close(); err == nil {
		err = cErr
	}
	return err
}
