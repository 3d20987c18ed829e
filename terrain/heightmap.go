// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/endless/terrain/falloff"
	"github.com/SoftbearStudios/endless/terrain/noise"
	"github.com/SoftbearStudios/endless/world"
	"math"
)

// HeightMap is a square grid of elevations indexed [x][y], with one extra
// sample on every side for the mesh border.
// Once built it is never modified, so it may be shared between goroutines.
type HeightMap struct {
	Values [][]float32
	Min    float32
	Max    float32
}

// Size is the number of samples along each edge, including the border.
func (h *HeightMap) Size() int {
	return len(h.Values)
}

// HeightMapSettings describe how noise becomes elevation.
type HeightMapSettings struct {
	Noise            noise.Settings
	UseFalloff       bool
	HeightMultiplier float32
	Curve            Curve // nil means Linear
}

// DefaultHeightMapSettings returns rolling hills without an island mask.
func DefaultHeightMapSettings() HeightMapSettings {
	return HeightMapSettings{
		Noise:            noise.DefaultSettings(),
		HeightMultiplier: 30,
		Curve:            Linear{},
	}
}

// Validate clamps the noise settings.
func (s *HeightMapSettings) Validate() {
	s.Noise.Validate()
	if s.Curve == nil {
		s.Curve = Linear{}
	}
}

func (s *HeightMapSettings) curve() Curve {
	if s.Curve == nil {
		return Linear{}
	}
	return s.Curve
}

// MinHeight is the lowest elevation the settings can produce.
func (s *HeightMapSettings) MinHeight() float32 {
	return s.HeightMultiplier * s.curve().Evaluate(0)
}

// MaxHeight is the highest elevation the settings can produce.
func (s *HeightMapSettings) MaxHeight() float32 {
	return s.HeightMultiplier * s.curve().Evaluate(1)
}

// Build generates a height map with verticesPerEdge interior samples per edge, plus the border.
// It is pure, so the same arguments always give the same result.
func Build(verticesPerEdge int, s HeightMapSettings, sampleCenter world.Vec2f) HeightMap {
	size := verticesPerEdge + 2
	values := noise.Sample(size, size, s.Noise, sampleCenter)
	curve := s.curve()

	var mask [][]float32
	if s.UseFalloff {
		mask = falloff.Map(size)
	}

	min := float32(math.MaxFloat32)
	max := float32(-math.MaxFloat32)

	for x, column := range values {
		for y, v := range column {
			if mask != nil {
				v = world.Clamp01(v - mask[x][y])
			}

			h := curve.Evaluate(v) * s.HeightMultiplier
			column[y] = h

			if h > max {
				max = h
			}
			if h < min {
				min = h
			}
		}
	}

	return HeightMap{Values: values, Min: min, Max: max}
}
