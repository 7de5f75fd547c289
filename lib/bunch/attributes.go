package bunch

/* attributes.go contains the registry of per-particle attribute blocks. Each
registered block owns a contiguous range of columns in the attribute array,
and the ranges of all registered blocks always tile [0, width) with no gaps. */

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAttributes is returned when attaching a block whose name
	// is already registered.
	ErrDuplicateAttributes = errors.New("particle attributes already registered")
	// ErrUnknownAttributes is returned when a name isn't registered, or
	// when the factory doesn't know a type name.
	ErrUnknownAttributes = errors.New("unknown particle attributes")
	// ErrInvalidAttributes is returned for blocks with a non-positive width.
	ErrInvalidAttributes = errors.New("invalid particle attributes")
)

// ParticleAttributes describes a named block of per-particle scalar columns.
// Implementations must not read or write other blocks' columns. They access
// their own columns through Bunch.AttrRow.
type ParticleAttributes interface {
	// Name is the unique key the block is registered under.
	Name() string
	// Size is the number of columns in the block. It must not change while
	// the block is attached.
	Size() int
	// Init writes default values into the block's columns for particle i.
	// It's called when the particle is appended and, for every existing
	// particle, when the block is attached or restored.
	Init(b *Bunch, i int)
}

// attrEntry is the registration of one block: its columns are [low, upp).
type attrEntry struct {
	attr     ParticleAttributes
	low, upp int
}

// AddParticleAttributes attaches a block to the Bunch. It gets the columns
// to the right of every currently registered block, and its Init hook is
// run for every existing particle. Only one block per name may be attached.
func (b *Bunch) AddParticleAttributes(attr ParticleAttributes) error {
	return b.attach([]ParticleAttributes{attr})
}

// AddParticleAttributesByName builds a block with NewParticleAttributes and
// attaches it.
func (b *Bunch) AddParticleAttributesByName(
	name string, params map[string]float64,
) error {
	attr, err := NewParticleAttributes(name, params)
	if err != nil {
		return err
	}
	return b.AddParticleAttributes(attr)
}

// attach registers a list of blocks in order with a single reallocation of
// the attribute array. Nothing is registered if any block is invalid.
func (b *Bunch) attach(attrs []ParticleAttributes) error {
	seen := map[string]bool{}
	total := 0
	for _, attr := range attrs {
		name, w := attr.Name(), attr.Size()
		if _, ok := b.attrs[name]; ok || seen[name] {
			return fmt.Errorf("%w: '%s'", ErrDuplicateAttributes, name)
		} else if w <= 0 {
			return fmt.Errorf("%w: '%s' has %d columns",
				ErrInvalidAttributes, name, w)
		}
		seen[name] = true
		total += w
	}
	if total == 0 {
		return nil
	}

	low := b.store.width
	b.store.addColumns(total, b.size)
	for _, attr := range attrs {
		name := attr.Name()
		b.attrs[name] = &attrEntry{attr, low, low + attr.Size()}
		b.attrOrder = append(b.attrOrder, name)
		low += attr.Size()
	}

	for _, attr := range attrs {
		for i := 0; i < b.size; i++ {
			attr.Init(b, i)
		}
		b.log.Debug().Str("name", attr.Name()).Int("columns", attr.Size()).
			Int("width", b.store.width).Msg("attached particle attributes")
	}

	return nil
}

// RemoveParticleAttributes detaches the named block and compacts the
// attribute array so that the remaining blocks' columns stay contiguous.
func (b *Bunch) RemoveParticleAttributes(name string) error {
	_, err := b.detach(name)
	return err
}

// RemoveAllParticleAttributes detaches every block.
func (b *Bunch) RemoveAllParticleAttributes() {
	for len(b.attrOrder) > 0 {
		b.detach(b.attrOrder[len(b.attrOrder)-1])
	}
}

// detach removes the named block's registration and columns and hands the
// block back to the caller, so it can be reattached later.
func (b *Bunch) detach(name string) (ParticleAttributes, error) {
	e, ok := b.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAttributes, name)
	}

	w := e.upp - e.low
	b.store.removeColumns(e.low, e.upp, b.size)
	for _, other := range b.attrs {
		if other.low >= e.upp {
			other.low -= w
			other.upp -= w
		}
	}

	delete(b.attrs, name)
	for i := range b.attrOrder {
		if b.attrOrder[i] == name {
			b.attrOrder = append(b.attrOrder[:i], b.attrOrder[i+1:]...)
			break
		}
	}

	b.log.Debug().Str("name", name).Int("width", b.store.width).
		Msg("detached particle attributes")
	return e.attr, nil
}

// HasParticleAttributes returns true if a block with the given name is
// attached.
func (b *Bunch) HasParticleAttributes(name string) bool {
	_, ok := b.attrs[name]
	return ok
}

// ParticleAttributes returns the attached block with the given name.
func (b *Bunch) ParticleAttributes(name string) (ParticleAttributes, error) {
	e, ok := b.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAttributes, name)
	}
	return e.attr, nil
}

// ParticleAttributesNames returns the names of the attached blocks in the
// order they were attached.
func (b *Bunch) ParticleAttributesNames() []string {
	return append([]string{}, b.attrOrder...)
}

// ParticleAttributesRange returns the column range [low, upp) of the named
// block within an attribute row.
func (b *Bunch) ParticleAttributesRange(name string) (low, upp int, err error) {
	e, ok := b.attrs[name]
	if !ok {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrUnknownAttributes, name)
	}
	return e.low, e.upp, nil
}

// ParticleAttributesSize returns the total number of attribute columns.
func (b *Bunch) ParticleAttributesSize() int { return b.store.width }

// ClearAllParticleAttributesAndMemorize detaches every block and remembers
// them, shrinking the attribute array to zero columns. This is meant for
// operations which only touch coordinates, such as bulk reads. Calling it
// again adds the newly attached blocks to the end of the memory, so nothing
// memorized earlier is lost. A newly memorized block replaces an older one
// with the same name.
func (b *Bunch) ClearAllParticleAttributesAndMemorize() {
	for _, name := range b.ParticleAttributesNames() {
		attr, _ := b.detach(name)
		b.memory = forget(b.memory, name)
		b.memory = append(b.memory, attr)
	}
	b.log.Debug().Int("memorized", len(b.memory)).
		Msg("memorized particle attributes")
}

// RestoreAllParticleAttributesFromMemory reattaches the blocks memorized by
// ClearAllParticleAttributesAndMemorize, in their original order, and clears
// the memory. Only the schema is restored: every block's Init hook is run
// again for every particle, so values written before memorizing are lost.
// Restoring with an empty memory does nothing. If any memorized name has
// been attached again in the meantime, nothing is restored and the memory is
// kept.
func (b *Bunch) RestoreAllParticleAttributesFromMemory() error {
	if err := b.attach(b.memory); err != nil {
		return fmt.Errorf("could not restore memorized attributes: %w", err)
	}
	b.log.Debug().Int("restored", len(b.memory)).
		Msg("restored particle attributes")
	b.memory = nil
	return nil
}

// forget removes the block with the given name from mem.
func forget(mem []ParticleAttributes, name string) []ParticleAttributes {
	out := mem[:0]
	for _, attr := range mem {
		if attr.Name() != name {
			out = append(out, attr)
		}
	}
	return out
}

// entry looks up a registration for row access, panicking if it doesn't
// exist.
func (b *Bunch) entry(name string) *attrEntry {
	e, ok := b.attrs[name]
	if !ok {
		panic(fmt.Sprintf("bunch: no particle attributes named '%s'", name))
	}
	return e
}

// AttrRow returns the named block's columns for particle i. Writes to the
// returned slice modify the Bunch. The slice is invalidated by anything that
// resizes the Bunch or changes its attribute blocks.
func (b *Bunch) AttrRow(name string, i int) []float64 {
	b.check(i)
	e := b.entry(name)
	row := b.store.attrRow(i)
	return row[e.low:e.upp:e.upp]
}

// Attr returns column c of the named block for particle i.
func (b *Bunch) Attr(name string, i, c int) float64 {
	row := b.AttrRow(name, i)
	checkColumn(name, c, len(row))
	return row[c]
}

// SetAttr sets column c of the named block for particle i.
func (b *Bunch) SetAttr(name string, i, c int, val float64) {
	row := b.AttrRow(name, i)
	checkColumn(name, c, len(row))
	row[c] = val
}

func checkColumn(name string, c, n int) {
	if c < 0 || c >= n {
		panic(fmt.Sprintf("bunch: column %d out of range [0, %d) for "+
			"particle attributes '%s'", c, n, name))
	}
}
