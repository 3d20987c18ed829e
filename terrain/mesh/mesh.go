// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mesh turns height maps into renderable triangle meshes.
package mesh

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Data is a triangle mesh ready to be uploaded.
// Triangles wind so that normals face +Y.
type Data struct {
	Vertices   []mgl32.Vec3
	Normals    []mgl32.Vec3
	UVs        []mgl32.Vec2
	Triangles  []uint32
	FlatShaded bool
}

// TriangleCount is the number of emitted triangles.
func (data *Data) TriangleCount() int {
	return len(data.Triangles) / 3
}

// HeightRange returns the lowest and highest vertex.
func (data *Data) HeightRange() (min, max float32) {
	if len(data.Vertices) == 0 {
		return
	}
	min, max = math32.MaxFloat32, -math32.MaxFloat32
	for _, v := range data.Vertices {
		min = math32.Min(min, v.Y())
		max = math32.Max(max, v.Y())
	}
	return
}

var up = mgl32.Vec3{0, 1, 0}

// builder accumulates emitted and border vertices.
// Emitted vertices have indices >= 0, border vertices have indices < 0.
type builder struct {
	vertices        []mgl32.Vec3
	uvs             []mgl32.Vec2
	triangles       []int32
	borderVertices  []mgl32.Vec3
	borderTriangles []int32
}

// Triangulate builds a mesh from heights, as returned by terrain.Build, at a given level of detail.
// The outermost ring of heights is only used to compute normals so that meshes of adjacent chunks line up.
// The stride of the lod must divide len(heights)-3, which SupportedChunkSizes guarantee.
func Triangulate(heights [][]float32, s Settings, lod int) *Data {
	size := len(heights)
	n := size - 2 // interior samples per edge
	if n < 1 {
		return &Data{FlatShaded: s.FlatShading}
	}

	skip := Skip(lod)
	if debugChecks && (n-1)%skip != 0 {
		panic(fmt.Sprintf("lod %d stride %d does not divide %d", lod, skip, n-1))
	}

	// m is the number of emitted vertices per edge.
	m := (n-1)/skip + 1
	lattice := make([]int, m+2)
	for a := range lattice {
		switch a {
		case 0:
			lattice[a] = 0
		case m + 1:
			lattice[a] = n + 1
		default:
			lattice[a] = 1 + (a-1)*skip
		}
	}

	worldSize := s.WorldSize()
	span := float32(n - 1)
	if span < 1 {
		span = 1
	}

	b := builder{
		vertices:       make([]mgl32.Vec3, 0, m*m),
		uvs:            make([]mgl32.Vec2, 0, m*m),
		triangles:      make([]int32, 0, (m-1)*(m-1)*6),
		borderVertices: make([]mgl32.Vec3, 0, 4*(m+1)),
	}

	indices := make([][]int32, m+2)
	for a, x := range lattice {
		indices[a] = make([]int32, m+2)
		for c, y := range lattice {
			percent := mgl32.Vec2{float32(x-1) / span, float32(y-1) / span}
			position := mgl32.Vec3{(percent[0] - 0.5) * worldSize, heights[x][y], -(percent[1] - 0.5) * worldSize}

			if a == 0 || c == 0 || a == m+1 || c == m+1 {
				b.borderVertices = append(b.borderVertices, position)
				indices[a][c] = -int32(len(b.borderVertices))
			} else {
				indices[a][c] = int32(len(b.vertices))
				b.vertices = append(b.vertices, position)
				b.uvs = append(b.uvs, percent)
			}
		}
	}

	for a := 0; a <= m; a++ {
		for c := 0; c <= m; c++ {
			i00 := indices[a][c]
			i10 := indices[a+1][c]
			i01 := indices[a][c+1]
			i11 := indices[a+1][c+1]
			b.addTriangle(i00, i11, i01)
			b.addTriangle(i11, i00, i10)
		}
	}

	if s.FlatShading {
		return b.flatShaded()
	}
	return b.smooth()
}

func (b *builder) addTriangle(i1, i2, i3 int32) {
	if i1 < 0 || i2 < 0 || i3 < 0 {
		b.borderTriangles = append(b.borderTriangles, i1, i2, i3)
	} else {
		b.triangles = append(b.triangles, i1, i2, i3)
	}
}

func (b *builder) vertex(i int32) mgl32.Vec3 {
	if i < 0 {
		return b.borderVertices[-i-1]
	}
	return b.vertices[i]
}

func (b *builder) faceNormal(i1, i2, i3 int32) mgl32.Vec3 {
	p1, p2, p3 := b.vertex(i1), b.vertex(i2), b.vertex(i3)
	return normalize(p2.Sub(p1).Cross(p3.Sub(p1)))
}

func (b *builder) smooth() *Data {
	normals := make([]mgl32.Vec3, len(b.vertices))

	accumulate := func(triangles []int32) {
		for i := 0; i+2 < len(triangles); i += 3 {
			t := triangles[i : i+3]
			normal := b.faceNormal(t[0], t[1], t[2])
			for _, v := range t {
				if v >= 0 {
					normals[v] = normals[v].Add(normal)
				}
			}
		}
	}
	accumulate(b.triangles)
	accumulate(b.borderTriangles)

	for i := range normals {
		normals[i] = normalize(normals[i])
	}

	triangles := make([]uint32, len(b.triangles))
	for i, v := range b.triangles {
		triangles[i] = uint32(v)
	}

	return &Data{
		Vertices:  b.vertices,
		Normals:   normals,
		UVs:       b.uvs,
		Triangles: triangles,
	}
}

// flatShaded gives every triangle its own vertices so that each face is lit uniformly.
func (b *builder) flatShaded() *Data {
	count := len(b.triangles)
	data := &Data{
		Vertices:   make([]mgl32.Vec3, count),
		Normals:    make([]mgl32.Vec3, count),
		UVs:        make([]mgl32.Vec2, count),
		Triangles:  make([]uint32, count),
		FlatShaded: true,
	}

	for i := 0; i+2 < count; i += 3 {
		t := b.triangles[i : i+3]
		normal := b.faceNormal(t[0], t[1], t[2])
		for j, v := range t {
			data.Vertices[i+j] = b.vertices[v]
			data.UVs[i+j] = b.uvs[v]
			data.Normals[i+j] = normal
			data.Triangles[i+j] = uint32(i + j)
		}
	}

	return data
}

// normalize returns up for zero vectors instead of NaN.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.LenSqr() == 0 {
		return up
	}
	return v.Normalize()
}
