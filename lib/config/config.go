/*package config reads macrobunch configuration files. They are gcfg (INI-style)
files with a [Bunch] section describing how particle containers are built
and a [Log] section controlling output. See ExampleFile.
*/
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/macrobunch/lib/bunch"
	"github.com/phil-mansfield/macrobunch/lib/mpi"
)

const ExampleFile = `[Bunch]

#######################
# Optional Parameters #
#######################

# Number of rows added to the particle arrays whenever they run out of room.
# Growth is always by a fixed chunk, never by a multiplicative factor.
# GrowthChunk = 1000

# Lower limit on GrowthChunk.
# MinGrowthChunk = 1000

# Bunch-wide particle properties. Mass is in GeV, ClassicalRadius in m,
# Charge in units of the elementary charge. The defaults describe a proton.
# Mass = 0.93827231
# Charge = 1
# ClassicalRadius = 1.534698e-18

# Number of real particles per macro-particle, used as the default of the
# "macrosize" attribute.
# MacroSize = 0

# Per-particle attribute blocks attached to every new bunch. Repeat the line
# for each block. Known blocks are macrosize, ParticleIdNumber,
# ParticleInitialCoordinates, TurnNumber, LostParticleAttributes, and spin.
# Attributes = macrosize
# Attributes = ParticleIdNumber

[Log]

# One of trace, debug, info, warn, error, fatal, panic, or disabled.
# Level = info`

// Config is the contents of a configuration file.
type Config struct {
	Bunch BunchConfig
	Log   LogConfig
}

type BunchConfig struct {
	GrowthChunk, MinGrowthChunk             int
	Mass, Charge, ClassicalRadius, MacroSize float64
	Attributes                               []string
}

type LogConfig struct {
	Level string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Bunch: BunchConfig{
			GrowthChunk:     bunch.DefaultGrowthChunk,
			MinGrowthChunk:  bunch.DefaultMinGrowthChunk,
			Mass:            bunch.DefaultMass,
			Charge:          bunch.DefaultCharge,
			ClassicalRadius: bunch.DefaultClassicalRadius,
			MacroSize:       bunch.DefaultMacroSize,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Read reads and validates the configuration file fname. Variables that
// aren't set keep the values from Default.
func Read(fname string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadFileInto(c, fname); err != nil {
		return nil, err
	}
	return c, c.CheckInit()
}

// ReadString is Read for a configuration held in memory.
func ReadString(str string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadStringInto(c, str); err != nil {
		return nil, err
	}
	return c, c.CheckInit()
}

// CheckInit validates the configuration.
func (c *Config) CheckInit() error {
	if c.Bunch.GrowthChunk <= 0 {
		return fmt.Errorf("GrowthChunk must be positive, but is %d.",
			c.Bunch.GrowthChunk)
	} else if c.Bunch.MinGrowthChunk <= 0 {
		return fmt.Errorf("MinGrowthChunk must be positive, but is %d.",
			c.Bunch.MinGrowthChunk)
	} else if c.Bunch.Mass < 0 {
		return fmt.Errorf("Mass must be non-negative, but is %g.",
			c.Bunch.Mass)
	} else if c.Bunch.ClassicalRadius < 0 {
		return fmt.Errorf("ClassicalRadius must be non-negative, but is %g.",
			c.Bunch.ClassicalRadius)
	} else if c.Bunch.MacroSize < 0 {
		return fmt.Errorf("MacroSize must be non-negative, but is %g.",
			c.Bunch.MacroSize)
	}

	seen := map[string]bool{}
	for _, name := range c.Bunch.Attributes {
		if seen[name] {
			return fmt.Errorf("The attribute block '%s' is listed more "+
				"than once.", name)
		}
		seen[name] = true
		if _, err := bunch.NewParticleAttributes(name, nil); err != nil {
			return fmt.Errorf("The attribute block '%s' can't be built: %s",
				name, err.Error())
		}
	}

	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("Level '%s' is not a valid log "+
			"level.", c.Log.Level)
	}
	return lvl, nil
}

// Logger creates a console logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).
		With().Timestamp().Logger()
}

// NewBunch creates an empty bunch with the configured growth settings,
// bunch attributes, and attribute blocks, belonging to the process group
// comm.
func (c *Config) NewBunch(comm mpi.Comm) (*bunch.Bunch, error) {
	b := bunch.New()
	b.SetComm(comm)
	b.SetGrowthChunk(c.Bunch.GrowthChunk)
	b.SetMinGrowthChunk(c.Bunch.MinGrowthChunk)
	b.SetMass(c.Bunch.Mass)
	b.SetCharge(c.Bunch.Charge)
	b.SetClassicalRadius(c.Bunch.ClassicalRadius)
	b.SetMacroSize(c.Bunch.MacroSize)

	for _, name := range c.Bunch.Attributes {
		if err := b.AddParticleAttributesByName(name, nil); err != nil {
			return nil, err
		}
	}
	return b, nil
}
