package bunch

/* bucket.go contains the bunch-wide named scalars (mass, charge, etc.) and
the Bunch methods that forward to them. */

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownBunchAttribute is returned when looking up a bunch attribute
// that was never set.
var ErrUnknownBunchAttribute = errors.New("unknown bunch attribute")

// Names of the bunch attributes every Bunch starts with.
const (
	MassName            = "mass"
	ChargeName          = "charge"
	ClassicalRadiusName = "classical_radius"
	MacroSizeForAllName = "macro_size"
)

// Default values of the standard bunch attributes: a proton with mass in GeV
// and classical radius in m.
const (
	DefaultMass            = 0.93827231
	DefaultCharge          = 1.0
	DefaultClassicalRadius = 1.534698e-18
	DefaultMacroSize       = 0.0
)

// Bucket is a store of named float64 and int scalars that describe a whole
// bunch rather than individual particles. The two types have separate
// namespaces.
type Bucket struct {
	doubles map[string]float64
	ints    map[string]int
}

// NewBucket returns an empty Bucket.
func NewBucket() *Bucket {
	return &Bucket{map[string]float64{}, map[string]int{}}
}

func (bk *Bucket) SetDouble(name string, x float64) { bk.doubles[name] = x }
func (bk *Bucket) SetInt(name string, x int)        { bk.ints[name] = x }

// Double returns the named float64 attribute.
func (bk *Bucket) Double(name string) (float64, error) {
	x, ok := bk.doubles[name]
	if !ok {
		return 0, fmt.Errorf("%w: no double named '%s'",
			ErrUnknownBunchAttribute, name)
	}
	return x, nil
}

// Int returns the named int attribute.
func (bk *Bucket) Int(name string) (int, error) {
	x, ok := bk.ints[name]
	if !ok {
		return 0, fmt.Errorf("%w: no int named '%s'",
			ErrUnknownBunchAttribute, name)
	}
	return x, nil
}

// DoubleNames returns the sorted names of the float64 attributes.
func (bk *Bucket) DoubleNames() []string { return sortedKeys(bk.doubles) }

// IntNames returns the sorted names of the int attributes.
func (bk *Bucket) IntNames() []string { return sortedKeys(bk.ints) }

// CopyTo copies every attribute into dst, overwriting any with the same
// name.
func (bk *Bucket) CopyTo(dst *Bucket) {
	for name, x := range bk.doubles {
		dst.doubles[name] = x
	}
	for name, x := range bk.ints {
		dst.ints[name] = x
	}
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (b *Bunch) initBunchAttributes() {
	b.bucket.SetDouble(MassName, DefaultMass)
	b.bucket.SetDouble(ChargeName, DefaultCharge)
	b.bucket.SetDouble(ClassicalRadiusName, DefaultClassicalRadius)
	b.bucket.SetDouble(MacroSizeForAllName, DefaultMacroSize)
}

// BunchAttributes returns the Bucket of bunch-wide attributes. Changes to it
// are visible to the Bunch.
func (b *Bunch) BunchAttributes() *Bucket { return b.bucket }

// standard returns one of the attributes set by initBunchAttributes.
func (b *Bunch) standard(name string) float64 {
	x, err := b.bucket.Double(name)
	if err != nil {
		// Bucket has no delete, so these can't go missing.
		panic(err.Error())
	}
	return x
}

func (b *Bunch) Mass() float64            { return b.standard(MassName) }
func (b *Bunch) Charge() float64          { return b.standard(ChargeName) }
func (b *Bunch) ClassicalRadius() float64 { return b.standard(ClassicalRadiusName) }
func (b *Bunch) MacroSize() float64       { return b.standard(MacroSizeForAllName) }

func (b *Bunch) SetMass(x float64)   { b.bucket.SetDouble(MassName, x) }
func (b *Bunch) SetCharge(x float64) { b.bucket.SetDouble(ChargeName, x) }
func (b *Bunch) SetClassicalRadius(x float64) {
	b.bucket.SetDouble(ClassicalRadiusName, x)
}
func (b *Bunch) SetMacroSize(x float64) {
	b.bucket.SetDouble(MacroSizeForAllName, x)
}
