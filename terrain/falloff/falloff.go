// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package falloff generates the square island mask that is subtracted from noise.
package falloff

import (
	"github.com/chewxy/math32"
	"sync"
)

const (
	// a controls the steepness of the transition.
	a = 3
	// b pushes the transition towards the edge.
	b = 2.2
)

// Evaluate maps a normalized distance from the center, t in [0, 1], to falloff in [0, 1].
func Evaluate(t float32) float32 {
	ta := math32.Pow(t, a)
	return ta / (ta + math32.Pow(b-b*t, a))
}

// Generate returns a size by size mask indexed [x][y] that is 0 at the center and 1 at the edges.
func Generate(size int) [][]float32 {
	mask := make([][]float32, size)

	// Divide by the last index so that both edges land on exactly 1.
	last := float32(size - 1)
	if last < 1 {
		last = 1
	}

	for x := range mask {
		column := make([]float32, size)
		for y := range column {
			tx := math32.Abs(float32(x)*2/last - 1)
			ty := math32.Abs(float32(y)*2/last - 1)
			column[y] = Evaluate(math32.Max(tx, ty))
		}
		mask[x] = column
	}

	return mask
}

var cache sync.Map // map[int][][]float32

// Map returns a shared mask of the given size, generating it on first use.
// The returned mask must not be modified.
func Map(size int) [][]float32 {
	if mask, ok := cache.Load(size); ok {
		return mask.([][]float32)
	}
	mask, _ := cache.LoadOrStore(size, Generate(size))
	return mask.([][]float32)
}
