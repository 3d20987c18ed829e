// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"fmt"
	"github.com/SoftbearStudios/endless/world"
	"strings"
)

// NormalizeMode selects how raw octave sums are mapped into [0, 1].
type NormalizeMode uint8

const (
	// Global uses the theoretical maximum amplitude so every chunk shares one height scale.
	Global NormalizeMode = iota
	// Local remaps each grid's observed range on its own. Neighboring grids will not line up.
	Local
)

func (mode NormalizeMode) String() string {
	switch mode {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("NormalizeMode(%d)", uint8(mode))
	}
}

func (mode NormalizeMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

func (mode *NormalizeMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "global", "":
		*mode = Global
	case "local":
		*mode = Local
	default:
		return fmt.Errorf("invalid normalize mode %q", text)
	}
	return nil
}

// Basis selects the continuous 2D function each octave samples.
type Basis uint8

const (
	Perlin Basis = iota
	Simplex
)

func (basis Basis) String() string {
	switch basis {
	case Perlin:
		return "perlin"
	case Simplex:
		return "simplex"
	default:
		return fmt.Sprintf("Basis(%d)", uint8(basis))
	}
}

func (basis Basis) MarshalText() ([]byte, error) {
	return []byte(basis.String()), nil
}

func (basis *Basis) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "perlin", "":
		*basis = Perlin
	case "simplex":
		*basis = Simplex
	default:
		return fmt.Errorf("invalid noise basis %q", text)
	}
	return nil
}

// Settings are the parameters of a fractal noise field.
type Settings struct {
	Seed        int64         `yaml:"seed"`
	Scale       float64       `yaml:"scale"`
	Octaves     int           `yaml:"octaves"`
	Persistence float64       `yaml:"persistence"` // amplitude decay per octave, [0, 1]
	Lacunarity  float64       `yaml:"lacunarity"`  // frequency growth per octave, >= 1
	Offset      world.Vec2f   `yaml:"offset"`
	Normalize   NormalizeMode `yaml:"normalize"`
	Basis       Basis         `yaml:"basis"`
}

// DefaultSettings are good looking hills at mesh scale 1.
func DefaultSettings() Settings {
	return Settings{
		Scale:       50,
		Octaves:     6,
		Persistence: 0.5,
		Lacunarity:  2,
		Normalize:   Global,
	}
}

// Validate clamps the settings into their valid ranges.
func (s *Settings) Validate() {
	if s.Scale < minScale {
		s.Scale = minScale
	}
	if s.Octaves < 0 {
		s.Octaves = 0
	}
	if s.Lacunarity < 1 {
		s.Lacunarity = 1
	}
	if s.Persistence < 0 {
		s.Persistence = 0
	} else if s.Persistence > 1 {
		s.Persistence = 1
	}
	if s.Normalize > Local {
		s.Normalize = Global
	}
	if s.Basis > Simplex {
		s.Basis = Perlin
	}
}

// MaxPossibleHeight is the largest magnitude an octave sum can reach.
func (s *Settings) MaxPossibleHeight() float64 {
	var sum float64
	amplitude := 1.0
	for i := 0; i < s.Octaves; i++ {
		sum += amplitude
		amplitude *= s.Persistence
	}
	return sum
}
