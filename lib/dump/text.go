package dump

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

// Header keywords of the text format.
const (
	namesKey  = "PARTICLE_ATTRIBUTES_CONTROLLERS_NAMES"
	dictKey   = "PARTICLE_ATTRIBUTES_CONTROLLER_DICT"
	doubleKey = "BUNCH_ATTRIBUTE_DOUBLE"
	intKey    = "BUNCH_ATTRIBUTE_INT"

	// maxLine is the longest line the text reader will accept.
	maxLine = 1 << 20
)

var coordLegend = [bunch.Dim]string{
	"x[m]", "px[rad]", "y[m]", "py[rad]", "z[m]", "pz[rad]",
}

// WriteText writes the alive particles of b, its attribute schema, and its
// bunch attributes to w in the text format.
func WriteText(w io.Writer, b *bunch.Bunch) error {
	wr := bufio.NewWriter(w)
	schema := fileSchema(b)

	fmt.Fprintf(wr, "%% %s", namesKey)
	for _, blk := range schema {
		fmt.Fprintf(wr, " %s", blk.name)
	}
	fmt.Fprintln(wr)
	for _, blk := range schema {
		fmt.Fprintf(wr, "%% %s %s size %d\n", dictKey, blk.name, blk.width)
	}

	bk := b.BunchAttributes()
	for _, name := range bk.DoubleNames() {
		x, _ := bk.Double(name)
		fmt.Fprintf(wr, "%% %s %s %s\n", doubleKey, name, formatFloat(x))
	}
	for _, name := range bk.IntNames() {
		x, _ := bk.Int(name)
		fmt.Fprintf(wr, "%% %s %s %d\n", intKey, name, x)
	}

	fmt.Fprintf(wr, "%% %s", strings.Join(coordLegend[:], " "))
	for _, blk := range schema {
		if blk.width == 1 {
			fmt.Fprintf(wr, " %s", blk.name)
			continue
		}
		for k := 0; k < blk.width; k++ {
			fmt.Fprintf(wr, " %s[%d]", blk.name, k)
		}
	}
	fmt.Fprintln(wr)

	for i := 0; i < b.Size(); i++ {
		if b.Flag(i) == 0 {
			continue
		}
		c := b.Coord(i)
		for k := range c {
			if k > 0 {
				wr.WriteByte(' ')
			}
			wr.WriteString(formatFloat(c[k]))
		}
		for _, blk := range schema {
			for _, x := range b.AttrRow(blk.name, i) {
				wr.WriteByte(' ')
				wr.WriteString(formatFloat(x))
			}
		}
		wr.WriteByte('\n')
	}

	return wr.Flush()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// textHeader is the parsed '%' section of a text dump.
type textHeader struct {
	names   []string
	params  map[string]map[string]float64
	doubles map[string]float64
	ints    map[string]int
}

// schema returns the attribute blocks of the header. Blocks without a
// "size" entry in their dict line get the width the factory gives them.
func (hd *textHeader) schema() ([]block, error) {
	out := make([]block, len(hd.names))
	for i, name := range hd.names {
		if size, ok := hd.params[name]["size"]; ok {
			if size != math.Trunc(size) || size < 1 || size > maxWidth {
				return nil, fmt.Errorf("%w: attribute block '%s' has size "+
					"%g, which isn't a positive integer", ErrFormat, name, size)
			}
			out[i] = block{name, int(size)}
			continue
		}
		attr, err := bunch.NewParticleAttributes(name, hd.params[name])
		if err != nil {
			return nil, fmt.Errorf("%w: attribute block '%s' has no size "+
				"and can't be built by name: %s", ErrFormat, name, err)
		}
		out[i] = block{name, attr.Size()}
	}
	return out, nil
}

// parseHeaderLine adds a single '%' line to hd. Lines with unrecognized
// keywords, like the column legend, are ignored.
func (hd *textHeader) parseHeaderLine(line string, lineNum int) error {
	tok := strings.Fields(strings.TrimPrefix(line, "%"))
	if len(tok) == 0 {
		return nil
	}

	switch tok[0] {
	case namesKey:
		hd.names = append(hd.names, tok[1:]...)
	case dictKey:
		if len(tok) < 2 || len(tok)%2 != 0 {
			return fmt.Errorf("%w: line %d, '%s', should be a name followed "+
				"by key-value pairs", ErrFormat, lineNum, line)
		}
		name := tok[1]
		if hd.params[name] == nil {
			hd.params[name] = map[string]float64{}
		}
		for k := 2; k < len(tok); k += 2 {
			x, err := strconv.ParseFloat(tok[k+1], 64)
			if err != nil {
				return fmt.Errorf("%w: line %d, value '%s' of '%s' is not "+
					"a number", ErrFormat, lineNum, tok[k+1], tok[k])
			}
			hd.params[name][tok[k]] = x
		}
	case doubleKey:
		if len(tok) != 3 {
			return fmt.Errorf("%w: line %d, '%s', should be a name and a "+
				"value", ErrFormat, lineNum, line)
		}
		x, err := strconv.ParseFloat(tok[2], 64)
		if err != nil {
			return fmt.Errorf("%w: line %d, '%s' is not a number",
				ErrFormat, lineNum, tok[2])
		}
		hd.doubles[tok[1]] = x
	case intKey:
		if len(tok) != 3 {
			return fmt.Errorf("%w: line %d, '%s', should be a name and a "+
				"value", ErrFormat, lineNum, line)
		}
		x, err := strconv.Atoi(tok[2])
		if err != nil {
			return fmt.Errorf("%w: line %d, '%s' is not an integer",
				ErrFormat, lineNum, tok[2])
		}
		hd.ints[tok[1]] = x
	}
	return nil
}

// ReadText appends the particles in a text dump to b and returns the number
// read. Attribute blocks in the file are attached if needed, and the file's
// bunch attributes overwrite b's. Particles appended before an error is
// returned stay in b.
func ReadText(r io.Reader, b *bunch.Bunch) (int, error) {
	return readText(r, b, false, -1)
}

// ReadTextN is the same as ReadText, but stops after maxParticles particles.
// A negative maxParticles reads the whole file.
func ReadTextN(r io.Reader, b *bunch.Bunch, maxParticles int) (int, error) {
	return readText(r, b, false, maxParticles)
}

// ReadTextHeader applies the header of a text dump to b without reading any
// particles: missing attribute blocks are attached and the file's bunch
// attributes overwrite b's.
func ReadTextHeader(r io.Reader, b *bunch.Bunch) error {
	_, err := readText(r, b, false, 0)
	return err
}

// ReadTextCoords appends only the coordinates in a text dump to b and
// returns the number read. b's attribute schema is kept, but every block is
// reinitialized to its defaults for every particle, including those that
// were already in b. Header lines are ignored.
func ReadTextCoords(r io.Reader, b *bunch.Bunch) (int, error) {
	b.ClearAllParticleAttributesAndMemorize()
	n, err := readText(r, b, true, -1)
	if rErr := b.RestoreAllParticleAttributesFromMemory(); err == nil {
		err = rErr
	}
	return n, err
}

// readText reads at most limit particles, or all of them if limit is
// negative.
func readText(
	r io.Reader, b *bunch.Bunch, coordsOnly bool, limit int,
) (int, error) {
	hd := &textHeader{
		params:  map[string]map[string]float64{},
		doubles: map[string]float64{},
		ints:    map[string]int{},
	}

	var schema []block
	width, n, lineNum := 0, 0, 0
	attr := []float64{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 {
			continue
		}

		if line[0] == '%' {
			if schema != nil {
				return n, fmt.Errorf("%w: line %d is a header line after "+
					"the start of the particle table", ErrFormat, lineNum)
			}
			if err := hd.parseHeaderLine(line, lineNum); err != nil {
				return n, err
			}
			continue
		}

		if schema == nil {
			var err error
			if schema, err = startTable(b, hd, coordsOnly); err != nil {
				return n, err
			}
			width = schemaWidth(schema)
			attr = make([]float64, width)
		}
		if limit >= 0 && n >= limit {
			return n, nil
		}

		tok := strings.Fields(line)
		if len(tok) < bunch.Dim || (!coordsOnly && len(tok) != bunch.Dim+width) {
			return n, fmt.Errorf("%w: line %d has %d columns, but %d were "+
				"expected", ErrFormat, lineNum, len(tok), bunch.Dim+width)
		}

		var coord [bunch.Dim]float64
		for k := 0; k < bunch.Dim+width; k++ {
			x, err := strconv.ParseFloat(tok[k], 64)
			if err != nil {
				return n, fmt.Errorf("%w: line %d, column %d, '%s' is not a "+
					"number", ErrFormat, lineNum, k+1, tok[k])
			}
			if k < bunch.Dim {
				coord[k] = x
			} else {
				attr[k-bunch.Dim] = x
			}
		}

		setRow(b, coord, schema, attr)
		n++
	}

	if err := sc.Err(); err != nil {
		return n, err
	}
	if schema == nil {
		// The file has no particles, but its header still applies.
		if _, err := startTable(b, hd, coordsOnly); err != nil {
			return n, err
		}
	}
	return n, nil
}

// startTable applies the header to b once the first particle is reached.
func startTable(
	b *bunch.Bunch, hd *textHeader, coordsOnly bool,
) ([]block, error) {
	if coordsOnly {
		return []block{}, nil
	}

	schema, err := hd.schema()
	if err != nil {
		return nil, err
	}
	if err := prepareSchema(b, schema); err != nil {
		return nil, err
	}

	bk := b.BunchAttributes()
	for name, x := range hd.doubles {
		bk.SetDouble(name, x)
	}
	for name, x := range hd.ints {
		bk.SetInt(name, x)
	}
	return schema, nil
}
