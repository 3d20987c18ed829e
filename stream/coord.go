// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"fmt"
	"github.com/SoftbearStudios/endless/world"
)

// Coord identifies a chunk by its position on the chunk grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CoordOf returns the coordinate of the chunk whose center is nearest to position.
func CoordOf(position world.Vec2f, worldSize float32) Coord {
	rounded := position.Div(worldSize).Round()
	return Coord{X: int(rounded.X), Y: int(rounded.Y)}
}

func (c Coord) Add(other Coord) Coord {
	c.X += other.X
	c.Y += other.Y
	return c
}

// Center is the world position of the chunk's center.
func (c Coord) Center(worldSize float32) world.Vec2f {
	return world.Vec2f{X: float32(c.X), Y: float32(c.Y)}.Mul(worldSize)
}

// Bounds is the square the chunk covers in world space.
func (c Coord) Bounds(worldSize float32) world.AABB {
	return world.AABBAround(c.Center(worldSize), worldSize)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}
