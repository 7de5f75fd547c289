package dump

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/DataDog/zstd"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

const (
	// MagicNumber is an arbitrary number at the start of every binary dump
	// which identifies files that aren't dumps at all.
	MagicNumber = 0xb0c4d0e5
	// ReverseMagicNumber is the magic number read with flipped endianness.
	ReverseMagicNumber = 0xe5d0c4b0
	Version            = 1

	// zstdLevel is the compression level of the data blocks.
	zstdLevel = 3

	// Limits on header values. Files which exceed them are rejected before
	// anything is allocated for them.
	maxParticles = math.MaxInt32
	maxEntries   = 1 << 16
	maxNameLen   = 1 << 12
	maxWidth     = 1 << 16
)

var order = binary.LittleEndian

// FixedWidthHeader is the part of a binary dump's header that has the same
// size in every file.
type FixedWidthHeader struct {
	Magic, Version uint32
	// Dim is the number of coordinates per particle and N is the number of
	// particles in the file.
	Dim, N int64
	// NAttributes, NDoubles, and NInts give the number of attribute blocks,
	// floating point bunch attributes and integer bunch attributes.
	NAttributes, NDoubles, NInts int64
}

// WriteBinary writes the alive particles of b, its attribute schema, and its
// bunch attributes to w in the binary format.
func WriteBinary(w io.Writer, b *bunch.Bunch) error {
	schema := fileSchema(b)
	bk := b.BunchAttributes()
	doubles, ints := bk.DoubleNames(), bk.IntNames()

	alive := make([]int, 0, b.Size())
	for i := 0; i < b.Size(); i++ {
		if b.Flag(i) != 0 {
			alive = append(alive, i)
		}
	}

	hd := FixedWidthHeader{
		MagicNumber, Version, bunch.Dim, int64(len(alive)),
		int64(len(schema)), int64(len(doubles)), int64(len(ints)),
	}
	if err := binary.Write(w, order, &hd); err != nil {
		return err
	}

	for _, blk := range schema {
		if err := writeString(w, blk.name); err != nil {
			return err
		}
		if err := binary.Write(w, order, int64(blk.width)); err != nil {
			return err
		}
	}
	for _, name := range doubles {
		x, _ := bk.Double(name)
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := binary.Write(w, order, x); err != nil {
			return err
		}
	}
	for _, name := range ints {
		x, _ := bk.Int(name)
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := binary.Write(w, order, int64(x)); err != nil {
			return err
		}
	}

	coords := make([]float64, 0, len(alive)*bunch.Dim)
	for _, i := range alive {
		coords = append(coords, b.Coord(i)[:]...)
	}
	buf, err := writeBlock(w, coords, nil)
	if err != nil {
		return err
	}

	width := schemaWidth(schema)
	if width == 0 {
		return nil
	}
	attrs := make([]float64, 0, len(alive)*width)
	for _, i := range alive {
		for _, blk := range schema {
			attrs = append(attrs, b.AttrRow(blk.name, i)...)
		}
	}
	_, err = writeBlock(w, attrs, buf)
	return err
}

// ReadBinary appends the particles in a binary dump to b and returns the
// number read. Attribute blocks in the file are attached if needed, and the
// file's bunch attributes overwrite b's. Nothing is appended if an error is
// returned.
func ReadBinary(r io.Reader, b *bunch.Bunch) (int, error) {
	hd := FixedWidthHeader{}
	if err := binary.Read(r, order, &hd); err != nil {
		return 0, err
	}

	switch {
	case hd.Magic == ReverseMagicNumber:
		return 0, fmt.Errorf("%w: the file was written with a different "+
			"endianness", ErrFormat)
	case hd.Magic != MagicNumber:
		return 0, fmt.Errorf("%w: magic number 0x%x, not 0x%x", ErrFormat,
			hd.Magic, uint32(MagicNumber))
	case hd.Version != Version:
		return 0, fmt.Errorf("%w: version %d, but only version %d is "+
			"supported", ErrFormat, hd.Version, Version)
	case hd.Dim != bunch.Dim:
		return 0, fmt.Errorf("%w: particles have %d coordinates, not %d",
			ErrFormat, hd.Dim, bunch.Dim)
	case hd.N < 0 || hd.NAttributes < 0 || hd.NDoubles < 0 || hd.NInts < 0:
		return 0, fmt.Errorf("%w: negative counts in header %+v",
			ErrFormat, hd)
	case hd.N > maxParticles:
		return 0, fmt.Errorf("%w: header claims %d particles, more than "+
			"the limit of %d", ErrFormat, hd.N, maxParticles)
	case hd.NAttributes > maxEntries || hd.NDoubles > maxEntries ||
		hd.NInts > maxEntries:
		return 0, fmt.Errorf("%w: header claims %d attribute blocks, %d "+
			"doubles and %d ints, more than the limit of %d", ErrFormat,
			hd.NAttributes, hd.NDoubles, hd.NInts, maxEntries)
	}

	schema := make([]block, hd.NAttributes)
	for i := range schema {
		name, err := readString(r)
		if err != nil {
			return 0, err
		}
		width := int64(0)
		if err := binary.Read(r, order, &width); err != nil {
			return 0, err
		} else if width <= 0 || width > maxWidth {
			return 0, fmt.Errorf("%w: attribute block '%s' has width %d",
				ErrFormat, name, width)
		}
		schema[i] = block{name, int(width)}
	}
	if w := schemaWidth(schema); w > maxWidth {
		return 0, fmt.Errorf("%w: attribute blocks have total width %d, "+
			"more than the limit of %d", ErrFormat, w, maxWidth)
	}

	doubles := make(map[string]float64, hd.NDoubles)
	for i := int64(0); i < hd.NDoubles; i++ {
		name, err := readString(r)
		if err != nil {
			return 0, err
		}
		x := 0.0
		if err := binary.Read(r, order, &x); err != nil {
			return 0, err
		}
		doubles[name] = x
	}
	ints := make(map[string]int, hd.NInts)
	for i := int64(0); i < hd.NInts; i++ {
		name, err := readString(r)
		if err != nil {
			return 0, err
		}
		x := int64(0)
		if err := binary.Read(r, order, &x); err != nil {
			return 0, err
		}
		ints[name] = int(x)
	}

	n := int(hd.N)
	coords, err := readBlock(r, n*bunch.Dim)
	if err != nil {
		return 0, err
	}
	width := schemaWidth(schema)
	attrs := []float64{}
	if width > 0 {
		if attrs, err = readBlock(r, n*width); err != nil {
			return 0, err
		}
	}

	if err := prepareSchema(b, schema); err != nil {
		return 0, err
	}
	bk := b.BunchAttributes()
	for name, x := range doubles {
		bk.SetDouble(name, x)
	}
	for name, x := range ints {
		bk.SetInt(name, x)
	}

	for i := 0; i < n; i++ {
		var coord [bunch.Dim]float64
		copy(coord[:], coords[i*bunch.Dim:(i+1)*bunch.Dim])
		setRow(b, coord, schema, attrs[i*width:(i+1)*width])
	}
	return n, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, order, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n := uint32(0)
	if err := binary.Read(r, order, &n); err != nil {
		return "", err
	}
	if n > maxNameLen {
		return "", fmt.Errorf("%w: name has length %d, more than the "+
			"limit of %d", ErrFormat, n, maxNameLen)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// writeBlock zstd-compresses x and writes it to w, preceded by its
// compressed length. buf is used as the compression buffer and is returned,
// possibly resized, so it can be passed to the next call.
func writeBlock(w io.Writer, x []float64, buf []byte) ([]byte, error) {
	raw := make([]byte, 8*len(x))
	for i := range x {
		order.PutUint64(raw[8*i:], math.Float64bits(x[i]))
	}

	// Empty blocks are stored as a bare zero length.
	if len(raw) == 0 {
		return buf[:0], binary.Write(w, order, int64(0))
	}

	buf, err := zstd.CompressLevel(buf, raw, zstdLevel)
	if err != nil {
		return nil, err
	}
	if err := binary.Write(w, order, int64(len(buf))); err != nil {
		return nil, err
	}
	_, err = w.Write(buf)
	return buf[:0], err
}

// readBlock reads a block written by writeBlock which must contain n values.
// The compressed length may not exceed zstd's worst case for n values.
func readBlock(r io.Reader, n int) ([]float64, error) {
	nBuf := int64(0)
	if err := binary.Read(r, order, &nBuf); err != nil {
		return nil, err
	} else if nBuf < 0 {
		return nil, fmt.Errorf("%w: block has length %d", ErrFormat, nBuf)
	}

	if nBuf == 0 {
		if n != 0 {
			return nil, fmt.Errorf("%w: block is empty, but %d values "+
				"were expected", ErrFormat, n)
		}
		return []float64{}, nil
	}
	if bound := int64(zstd.CompressBound(8 * n)); n == 0 || nBuf > bound {
		return nil, fmt.Errorf("%w: block has length %d, but %d values "+
			"compress to at most %d bytes", ErrFormat, nBuf, n, bound)
	}

	// The buffer only grows as bytes arrive, so a truncated file can't
	// force a large allocation.
	buf, err := io.ReadAll(io.LimitReader(r, nBuf))
	if err != nil {
		return nil, err
	} else if int64(len(buf)) != nBuf {
		return nil, io.ErrUnexpectedEOF
	}

	raw, err := zstd.Decompress(nil, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	if len(raw) != 8*n {
		return nil, fmt.Errorf("%w: block holds %d bytes, but %d "+
			"values were expected", ErrFormat, len(raw), n)
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Float64frombits(order.Uint64(raw[8*i:]))
	}
	return x, nil
}
