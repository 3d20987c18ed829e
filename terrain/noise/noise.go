// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/SoftbearStudios/endless/world"
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"math"
	"math/rand"
)

const (
	// minScale stops a zero scale from dividing by zero.
	minScale = 0.0001

	// octaveOffsetRange bounds the random per-octave offsets.
	octaveOffsetRange = 100000

	// perlinPeriod is the lattice period of go-perlin. It only handles inputs above -4096,
	// so coordinates are wrapped into [0, perlinPeriod) first.
	perlinPeriod = 256

	// globalHeadroom leaves room above the estimated maximum so that
	// globally normalized terrain rarely clips at its peaks.
	globalHeadroom = 0.9
)

// field is a continuous function that returns values in [-1, 1].
type field interface {
	Noise2D(x, y float64) float64
}

type simplexField struct {
	opensimplex.Noise
}

func (f simplexField) Noise2D(x, y float64) float64 {
	return f.Eval2(x, y)
}

type perlinField struct {
	*perlin.Perlin
}

func (f perlinField) Noise2D(x, y float64) float64 {
	return f.Perlin.Noise2D(wrapPerlin(x), wrapPerlin(y))
}

// wrapPerlin is continuous in v since the field repeats every perlinPeriod.
func wrapPerlin(v float64) float64 {
	v = math.Mod(v, perlinPeriod)
	if v < 0 {
		v += perlinPeriod
	}
	return v
}

func newField(basis Basis, seed int64) field {
	if basis == Simplex {
		return simplexField{opensimplex.New(seed)}
	}
	// One octave; octaves are summed by Sample so offsets are under our control.
	return perlinField{perlin.NewPerlin(2, 2, 1, seed)}
}

// octaveOffsets derives the per octave offsets from the seed, so that
// any region of the field can be regenerated from its coordinates alone.
func octaveOffsets(s *Settings, sampleCenter world.Vec2f) [][2]float64 {
	random := rand.New(rand.NewSource(s.Seed))

	offsets := make([][2]float64, s.Octaves)
	for i := range offsets {
		offsets[i][0] = float64(random.Intn(2*octaveOffsetRange)-octaveOffsetRange) + float64(s.Offset.X) + float64(sampleCenter.X)
		offsets[i][1] = float64(random.Intn(2*octaveOffsetRange)-octaveOffsetRange) - float64(s.Offset.Y) - float64(sampleCenter.Y)
	}
	return offsets
}

// Sample generates a width by height grid, indexed [x][y], of fractal noise centered on sampleCenter.
// Values are normalized into [0, 1] according to s.Normalize.
func Sample(width, height int, s Settings, sampleCenter world.Vec2f) [][]float32 {
	scale := s.Scale
	if scale <= minScale {
		scale = minScale
	}

	f := newField(s.Basis, s.Seed)
	offsets := octaveOffsets(&s, sampleCenter)

	halfWidth := float64(width) / 2
	halfHeight := float64(height) / 2

	raw := make([][]float64, width)
	minLocal := math.MaxFloat64
	maxLocal := -math.MaxFloat64

	for x := range raw {
		column := make([]float64, height)
		for y := range column {
			amplitude := 1.0
			frequency := 1.0
			var noiseHeight float64

			for _, offset := range offsets {
				sampleX := (float64(x) - halfWidth + offset[0]) / scale * frequency
				sampleY := (float64(y) - halfHeight + offset[1]) / scale * frequency

				noiseHeight += f.Noise2D(sampleX, sampleY) * amplitude

				amplitude *= s.Persistence
				frequency *= s.Lacunarity
			}

			if noiseHeight > maxLocal {
				maxLocal = noiseHeight
			}
			if noiseHeight < minLocal {
				minLocal = noiseHeight
			}
			column[y] = noiseHeight
		}
		raw[x] = column
	}

	return normalize(raw, &s, minLocal, maxLocal)
}

func normalize(raw [][]float64, s *Settings, minLocal, maxLocal float64) [][]float32 {
	values := make([][]float32, len(raw))

	var divisor float64
	if s.Normalize == Global {
		divisor = s.MaxPossibleHeight() / globalHeadroom
	}

	for x, column := range raw {
		out := make([]float32, len(column))
		for y, v := range column {
			switch s.Normalize {
			case Local:
				if maxLocal > minLocal {
					out[y] = float32((v - minLocal) / (maxLocal - minLocal))
				}
			default:
				if divisor > 0 {
					out[y] = float32(clamp01((v + 1) / divisor))
				}
			}
		}
		values[x] = out
	}
	return values
}
