/*package dump reads and writes Bunches to disk. Two formats are supported:

The text format is a whitespace-separated table with one alive particle per
line: six coordinates followed by every attribute column in the order the
blocks were attached. The table is preceded by '%'-prefixed header lines
which record the attribute blocks and the bunch attributes:

    % PARTICLE_ATTRIBUTES_CONTROLLERS_NAMES macrosize spin
    % PARTICLE_ATTRIBUTES_CONTROLLER_DICT macrosize size 1
    % PARTICLE_ATTRIBUTES_CONTROLLER_DICT spin size 3
    % BUNCH_ATTRIBUTE_DOUBLE mass 0.93827231
    % BUNCH_ATTRIBUTE_INT turn 12
    % x[m] px[rad] y[m] py[rad] z[m] pz[rad] macrosize spin[0] spin[1] spin[2]
    0.001 0 0 0 0 0 1e9 0 0 1

The binary format stores the same information with a fixed-width
little-endian header and zstd-compressed coordinate and attribute blocks.

Both readers append to the Bunch they're given. Attribute blocks named in a
file which aren't attached yet are built with bunch.NewParticleAttributes, or
as zero-initialized generic blocks if the factory doesn't know the name. Only
alive particles are written.
*/
package dump

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
)

// ErrFormat is wrapped by every error caused by a malformed file.
var ErrFormat = errors.New("malformed bunch dump")

// block is an attribute block as recorded in a file.
type block struct {
	name  string
	width int
}

// fileSchema returns the attribute blocks of b in attachment order.
func fileSchema(b *bunch.Bunch) []block {
	names := b.ParticleAttributesNames()
	out := make([]block, len(names))
	for i, name := range names {
		low, upp, _ := b.ParticleAttributesRange(name)
		out[i] = block{name, upp - low}
	}
	return out
}

// prepareSchema makes sure every block in schema is attached to b with the
// recorded width, attaching the missing ones. Nothing is attached if any
// block conflicts with b.
func prepareSchema(b *bunch.Bunch, schema []block) error {
	missing := []bunch.ParticleAttributes{}
	seen := map[string]bool{}
	for _, blk := range schema {
		if seen[blk.name] {
			return fmt.Errorf("%w: attribute block '%s' is listed twice",
				ErrFormat, blk.name)
		} else if blk.width <= 0 {
			return fmt.Errorf("%w: attribute block '%s' has %d columns",
				ErrFormat, blk.name, blk.width)
		}
		seen[blk.name] = true

		if b.HasParticleAttributes(blk.name) {
			low, upp, _ := b.ParticleAttributesRange(blk.name)
			if upp-low != blk.width {
				return fmt.Errorf("%w: attribute block '%s' has %d columns "+
					"in the file, but %d in the bunch", ErrFormat, blk.name,
					blk.width, upp-low)
			}
			continue
		}

		attr, err := bunch.NewParticleAttributes(
			blk.name, map[string]float64{"size": float64(blk.width)},
		)
		if errors.Is(err, bunch.ErrUnknownAttributes) {
			attr, err = bunch.NewGenericAttributes(blk.name, blk.width), nil
		}
		if err != nil {
			return err
		}
		if attr.Size() != blk.width {
			return fmt.Errorf("%w: attribute block '%s' has %d columns in "+
				"the file, but blocks of that type have %d", ErrFormat,
				blk.name, blk.width, attr.Size())
		}
		missing = append(missing, attr)
	}

	for _, attr := range missing {
		if err := b.AddParticleAttributes(attr); err != nil {
			return err
		}
	}
	return nil
}

// schemaWidth returns the total number of columns in schema.
func schemaWidth(schema []block) int {
	n := 0
	for _, blk := range schema {
		n += blk.width
	}
	return n
}

// setRow appends a particle to b and copies the file's attribute row, attr,
// into the blocks listed in schema.
func setRow(
	b *bunch.Bunch, coord [bunch.Dim]float64, schema []block, attr []float64,
) {
	i := b.AddParticleCoord(coord)
	start := 0
	for _, blk := range schema {
		copy(b.AttrRow(blk.name, i), attr[start:start+blk.width])
		start += blk.width
	}
}
