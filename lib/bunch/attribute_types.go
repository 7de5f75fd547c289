package bunch

/* attribute_types.go contains the standard attribute blocks and the factory
which builds them from their names. */

import (
	"fmt"
	"math"
)

// Names of the attribute blocks that NewParticleAttributes knows how to
// build.
const (
	MacroSizeName          = "macrosize"
	IDNumberName           = "ParticleIdNumber"
	InitialCoordinatesName = "ParticleInitialCoordinates"
	TurnNumberName         = "TurnNumber"
	LostParticlesName      = "LostParticleAttributes"
	SpinName               = "spin"
	EmptyName              = "empty"
)

// Type assertions
var (
	_ ParticleAttributes = &GenericAttributes{}
)

// GenericAttributes is a ParticleAttributes block with a fixed name and
// width whose defaults are computed by an optional function. If Default is
// nil, every column starts at zero.
type GenericAttributes struct {
	name    string
	size    int
	Default func(b *Bunch, i int, row []float64)
}

// NewGenericAttributes creates a block with the given name and number of
// columns, all of which default to zero.
func NewGenericAttributes(name string, size int) *GenericAttributes {
	return &GenericAttributes{name: name, size: size}
}

func (a *GenericAttributes) Name() string { return a.name }
func (a *GenericAttributes) Size() int    { return a.size }

func (a *GenericAttributes) Init(b *Bunch, i int) {
	row := b.AttrRow(a.name, i)
	if a.Default == nil {
		for k := range row {
			row[k] = 0
		}
		return
	}
	a.Default(b, i, row)
}

// NewParticleAttributes builds one of the standard attribute blocks:
//
//   macrosize                   1 column, defaults to the bunch macro-size
//   ParticleIdNumber            1 column, defaults to -1
//   ParticleInitialCoordinates  6 columns, defaults to the coordinates
//   TurnNumber                  1 column, defaults to 0
//   LostParticleAttributes      1 column, defaults to 0
//   spin                        3 columns, default to 0
//   empty                       params["size"] columns, default to 0
//
// params may be nil for every type except "empty".
func NewParticleAttributes(
	name string, params map[string]float64,
) (ParticleAttributes, error) {
	switch name {
	case MacroSizeName:
		a := NewGenericAttributes(name, 1)
		a.Default = func(b *Bunch, i int, row []float64) {
			row[0] = b.MacroSize()
		}
		return a, nil
	case IDNumberName:
		a := NewGenericAttributes(name, 1)
		a.Default = func(b *Bunch, i int, row []float64) { row[0] = -1 }
		return a, nil
	case InitialCoordinatesName:
		a := NewGenericAttributes(name, Dim)
		a.Default = func(b *Bunch, i int, row []float64) {
			c := b.Coord(i)
			copy(row, c[:])
		}
		return a, nil
	case TurnNumberName, LostParticlesName:
		return NewGenericAttributes(name, 1), nil
	case SpinName:
		return NewGenericAttributes(name, 3), nil
	case EmptyName:
		size, ok := params["size"]
		if !ok || size < 1 || size != math.Trunc(size) {
			return nil, fmt.Errorf("%w: '%s' needs a positive integer "+
				"'size' parameter, got %v", ErrInvalidAttributes, name,
				params["size"])
		}
		return NewGenericAttributes(name, int(size)), nil
	}
	return nil, fmt.Errorf("%w: no attribute type named '%s'",
		ErrUnknownAttributes, name)
}
