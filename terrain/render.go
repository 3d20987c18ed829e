// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/endless/world"
	"image"
	"image/color"
)

type ColorVec [3]float32

var colors = [...]ColorVec{
	RGB(0, 50, 115),
	RGB(0, 75, 130),
	RGB(194, 178, 128),
	RGB(90, 180, 30),
	RGB(105, 110, 115),
	Gray(220),
}

// RenderGrid draws values in [0, 1], indexed [x][y], as grayscale.
func RenderGrid(values [][]float32) image.Image {
	return render(values, func(v float32) color.Color {
		return color.Gray{Y: floatToByte(v)}
	})
}

// Render draws a height map as grayscale, black at its minimum and white at its maximum.
func Render(h HeightMap) image.Image {
	return render(h.Values, func(v float32) color.Color {
		return color.Gray{Y: floatToByte(world.InverseLerp(h.Min, h.Max, v))}
	})
}

// RenderBands draws a height map with colored elevation bands.
func RenderBands(h HeightMap) image.Image {
	return render(h.Values, func(v float32) color.Color {
		return Band(world.InverseLerp(h.Min, h.Max, v)).Color()
	})
}

// Band returns the color of a normalized elevation.
func Band(f float32) ColorVec {
	switch {
	case f <= WaterLevel:
		return colors[0].Lerp(colors[1], clamp(f/WaterLevel))
	case f <= SandLevel:
		return colors[2]
	case f <= GrassLevel:
		return colors[2].Lerp(colors[3], clamp((f-SandLevel)/(GrassLevel-SandLevel)))
	case f <= RockLevel:
		return colors[3].Lerp(colors[4], clamp((f-GrassLevel)/(RockLevel-GrassLevel)))
	default:
		return colors[4].Lerp(colors[5], clamp((f-RockLevel)/(SnowLevel-RockLevel)))
	}
}

// render draws x to the right and y upwards, matching how meshes lay out height maps.
func render(values [][]float32, shade func(float32) color.Color) image.Image {
	width := len(values)
	height := 0
	if width > 0 {
		height = len(values[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x, column := range values {
		for y, v := range column {
			img.Set(x, height-1-y, shade(v))
		}
	}

	return img
}

func Gray(v byte) ColorVec {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) ColorVec {
	const factor = 1.0 / 255
	return ColorVec{float32(r) * factor, float32(g) * factor, float32(b) * factor}
}

func (vec ColorVec) String() string {
	return fmt.Sprintf("vec4(%.3f, %.3f, %.3f, 1.0)", vec[0], vec[1], vec[2])
}

func (vec ColorVec) Lerp(other ColorVec, factor float32) ColorVec {
	for i := range vec {
		vec[i] = world.Lerp(vec[i], other[i], factor)
	}
	return vec
}

func (vec ColorVec) Color() color.RGBA {
	return color.RGBA{R: floatToByte(vec[0]), G: floatToByte(vec[1]), B: floatToByte(vec[2]), A: 255}
}

func clamp(f float32) float32 {
	return world.Clamp01(f)
}

func floatToByte(f float32) byte {
	if f < 0 {
		return 0
	}
	if f > 1.0 {
		return 255
	}
	return byte(f * 255)
}
