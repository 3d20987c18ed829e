// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/endless/world"
	"image"
	"testing"
)

func TestBuild_Size(t *testing.T) {
	h := Build(49, DefaultHeightMapSettings(), world.Vec2f{})
	if h.Size() != 51 {
		t.Fatalf("expected 51, got %d", h.Size())
	}
	for x := range h.Values {
		if len(h.Values[x]) != 51 {
			t.Fatalf("column %d has %d values", x, len(h.Values[x]))
		}
	}
}

func TestBuild_MinMax(t *testing.T) {
	s := DefaultHeightMapSettings()
	h := Build(25, s, world.Vec2f{X: 100, Y: 200})

	if h.Min > h.Max {
		t.Fatalf("min %f > max %f", h.Min, h.Max)
	}

	var foundMin, foundMax bool
	for x := range h.Values {
		for _, v := range h.Values[x] {
			if v < h.Min || v > h.Max {
				t.Errorf("%f outside [%f, %f]", v, h.Min, h.Max)
			}
			foundMin = foundMin || v == h.Min
			foundMax = foundMax || v == h.Max
		}
	}
	if !foundMin || !foundMax {
		t.Error("min or max not present in values")
	}

	if h.Min < s.MinHeight() || h.Max > s.MaxHeight() {
		t.Errorf("[%f, %f] exceeds theoretical [%f, %f]", h.Min, h.Max, s.MinHeight(), s.MaxHeight())
	}
}

func TestBuild_Falloff(t *testing.T) {
	s := DefaultHeightMapSettings()
	s.UseFalloff = true
	h := Build(25, s, world.Vec2f{})

	last := h.Size() - 1
	for i := 0; i <= last; i++ {
		for _, v := range []float32{h.Values[0][i], h.Values[last][i], h.Values[i][0], h.Values[i][last]} {
			if v != 0 {
				t.Errorf("edge %d expected 0, got %f", i, v)
			}
		}
	}
}

// Adjacent chunks sample the same points along their shared edge.
func TestBuild_Seam(t *testing.T) {
	const chunkSize = 48
	const verticesPerEdge = chunkSize + 1

	s := DefaultHeightMapSettings()
	s.Noise.Seed = 99

	center := Build(verticesPerEdge, s, world.Vec2f{})
	east := Build(verticesPerEdge, s, world.Vec2f{X: chunkSize})
	north := Build(verticesPerEdge, s, world.Vec2f{Y: chunkSize})

	for i := 1; i <= verticesPerEdge; i++ {
		if a, b := center.Values[verticesPerEdge][i], east.Values[1][i]; a != b {
			t.Errorf("east seam %d: %f != %f", i, a, b)
		}
		if a, b := center.Values[i][1], north.Values[i][verticesPerEdge]; a != b {
			t.Errorf("north seam %d: %f != %f", i, a, b)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	s := DefaultHeightMapSettings()
	s.UseFalloff = true
	s.Curve = NewKeyframes(Keyframe{0, 0}, Keyframe{0.4, 0.1}, Keyframe{1, 1})

	a := Build(17, s, world.Vec2f{X: -34, Y: 17})
	b := Build(17, s, world.Vec2f{X: -34, Y: 17})
	for x := range a.Values {
		for y := range a.Values[x] {
			if a.Values[x][y] != b.Values[x][y] {
				t.Fatalf("[%d][%d] %f != %f", x, y, a.Values[x][y], b.Values[x][y])
			}
		}
	}
}

func TestHeightMapSettings_Heights(t *testing.T) {
	s := HeightMapSettings{HeightMultiplier: 10, Curve: NewKeyframes(Keyframe{0, 0.2}, Keyframe{1, 0.8})}
	if min := s.MinHeight(); min != 2 {
		t.Errorf("expected min 2, got %f", min)
	}
	if max := s.MaxHeight(); max != 8 {
		t.Errorf("expected max 8, got %f", max)
	}

	s.Curve = nil
	if max := s.MaxHeight(); max != 10 {
		t.Errorf("expected linear max 10, got %f", max)
	}
}

func TestRender(t *testing.T) {
	h := Build(9, DefaultHeightMapSettings(), world.Vec2f{})
	for _, img := range []image.Image{Render(h), RenderBands(h), RenderGrid(h.Values)} {
		if bounds := img.Bounds(); bounds.Dx() != 11 || bounds.Dy() != 11 {
			t.Errorf("expected 11x11, got %v", bounds)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	s := DefaultHeightMapSettings()
	s.UseFalloff = true
	for i := 0; i < b.N; i++ {
		Build(241, s, world.Vec2f{X: float32(i)})
	}
}
