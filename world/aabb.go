// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// AABB is an axis aligned rectangle. Vec2f is its minimum corner.
type AABB struct {
	Vec2f
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// AABBAround creates a square of side size centered on center.
func AABBAround(center Vec2f, size float32) AABB {
	return AABB{Vec2f: center, Width: size, Height: size}.CornerCoordinates()
}

// CornerCoordinates Center coords to corner coords
func (a AABB) CornerCoordinates() AABB {
	a.Vec2f = Vec2f{X: a.X - a.Width*0.5, Y: a.Y - a.Height*0.5}
	return a
}

// DistanceSquared is the squared distance from p to the nearest point of a.
// It is 0 when p is inside a.
func (a AABB) DistanceSquared(p Vec2f) float32 {
	var d Vec2f
	if p.X < a.X {
		d.X = a.X - p.X
	} else if maxX := a.X + a.Width; p.X > maxX {
		d.X = p.X - maxX
	}
	if p.Y < a.Y {
		d.Y = a.Y - p.Y
	} else if maxY := a.Y + a.Height; p.Y > maxY {
		d.Y = p.Y - maxY
	}
	return d.LengthSquared()
}
