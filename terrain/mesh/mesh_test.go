// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package mesh

import (
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/world"
	"github.com/go-gl/mathgl/mgl32"
	"testing"
)

func testSettings(flat bool) Settings {
	return Settings{Scale: 1, FlatShading: flat}
}

func flatHeights(size int, f func(x, y int) float32) [][]float32 {
	heights := make([][]float32, size)
	for x := range heights {
		heights[x] = make([]float32, size)
		for y := range heights[x] {
			heights[x][y] = f(x, y)
		}
	}
	return heights
}

func TestSupportedChunkSizes(t *testing.T) {
	for _, size := range SupportedChunkSizes {
		for lod := 0; lod < NumSupportedLODs; lod++ {
			if size%Skip(lod) != 0 {
				t.Errorf("size %d not divisible by lod %d stride %d", size, lod, Skip(lod))
			}
		}
	}
}

func TestSettings(t *testing.T) {
	s := Settings{Scale: -1, ChunkSizeIndex: 100, FlatShadedChunkSizeIndex: 100}
	s.Validate()

	if s.Scale != 1 || s.ChunkSizeIndex != NumSupportedChunkSizes-1 || s.FlatShadedChunkSizeIndex != NumSupportedFlatShadedChunkSizes-1 {
		t.Fatalf("unexpected validated settings %+v", s)
	}
	if s.ChunkSize() != 240 || s.VerticesPerEdge() != 241 || s.WorldSize() != 240 {
		t.Errorf("unexpected smooth size %d", s.ChunkSize())
	}

	s.FlatShading = true
	if s.ChunkSize() != 96 {
		t.Errorf("expected flat size 96, got %d", s.ChunkSize())
	}
}

func TestTriangulate_VertexCount(t *testing.T) {
	s := testSettings(false)
	n := s.VerticesPerEdge()
	heights := flatHeights(n+2, func(x, y int) float32 { return float32(x ^ y) })

	for lod := 0; lod < NumSupportedLODs; lod++ {
		skip := Skip(lod)
		m := (n-1)/skip + 1

		data := Triangulate(heights, s, lod)
		if len(data.Vertices) != m*m || len(data.Normals) != m*m || len(data.UVs) != m*m {
			t.Errorf("lod %d: expected %d vertices, got %d", lod, m*m, len(data.Vertices))
		}
		if tris := data.TriangleCount(); tris != 2*(m-1)*(m-1) {
			t.Errorf("lod %d: expected %d triangles, got %d", lod, 2*(m-1)*(m-1), tris)
		}
		for _, i := range data.Triangles {
			if int(i) >= len(data.Vertices) {
				t.Fatalf("lod %d: index %d out of range", lod, i)
			}
		}
	}
}

func TestTriangulate_FlatShading(t *testing.T) {
	s := testSettings(true)
	heights := flatHeights(s.VerticesPerEdge()+2, func(x, y int) float32 { return float32(x*y) * 0.1 })

	for lod := 0; lod < NumSupportedLODs; lod++ {
		data := Triangulate(heights, s, lod)
		if !data.FlatShaded {
			t.Error("expected flat shaded")
		}
		if len(data.Vertices) != 3*data.TriangleCount() {
			t.Errorf("lod %d: expected %d vertices, got %d", lod, 3*data.TriangleCount(), len(data.Vertices))
		}
		for i := 0; i < len(data.Normals); i += 3 {
			if data.Normals[i] != data.Normals[i+1] || data.Normals[i] != data.Normals[i+2] {
				t.Fatalf("lod %d: triangle %d has mixed normals", lod, i/3)
			}
		}
	}
}

func TestTriangulate_BorderExcluded(t *testing.T) {
	s := testSettings(false)
	half := s.WorldSize() / 2
	heights := flatHeights(s.VerticesPerEdge()+2, func(x, y int) float32 { return 0 })

	data := Triangulate(heights, s, 2)

	for _, v := range data.Vertices {
		if v.X() < -half || v.X() > half || v.Z() < -half || v.Z() > half {
			t.Errorf("vertex %v outside chunk", v)
		}
	}
	for _, uv := range data.UVs {
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			t.Errorf("uv %v outside [0, 1]", uv)
		}
	}

	if first := data.Vertices[0]; first != (mgl32.Vec3{-half, 0, half}) {
		t.Errorf("expected first vertex at top left, got %v", first)
	}
	if last := data.Vertices[len(data.Vertices)-1]; last != (mgl32.Vec3{half, 0, -half}) {
		t.Errorf("expected last vertex at bottom right, got %v", last)
	}
	for _, normal := range data.Normals {
		if !normal.ApproxEqualThreshold(up, 1e-6) {
			t.Fatalf("expected up, got %v", normal)
		}
	}
}

func TestTriangulate_SlopeNormals(t *testing.T) {
	s := testSettings(false)
	// Rises towards +X by one unit per unit.
	heights := flatHeights(s.VerticesPerEdge()+2, func(x, y int) float32 { return float32(x) })

	data := Triangulate(heights, s, 0)
	expected := mgl32.Vec3{-1, 1, 0}.Normalize()

	for i, normal := range data.Normals {
		if !normal.ApproxEqualThreshold(expected, 1e-5) {
			t.Fatalf("vertex %d: expected %v, got %v", i, expected, normal)
		}
	}
}

// Normals along the shared edge of adjacent chunks match because the border samples the neighbor.
func TestTriangulate_SeamNormals(t *testing.T) {
	s := testSettings(false)
	chunkSize := float32(s.ChunkSize())
	n := s.VerticesPerEdge()

	hs := terrain.DefaultHeightMapSettings()
	west := terrain.Build(n, hs, world.Vec2f{})
	east := terrain.Build(n, hs, world.Vec2f{X: chunkSize})

	a := Triangulate(west.Values, s, 0)
	b := Triangulate(east.Values, s, 0)

	for y := 0; y < n; y++ {
		na := a.Normals[(n-1)*n+y]
		nb := b.Normals[y]
		if !na.ApproxEqualThreshold(nb, 1e-4) {
			t.Errorf("row %d: %v != %v", y, na, nb)
		}
		if a.Vertices[(n-1)*n+y].Y() != b.Vertices[y].Y() {
			t.Errorf("row %d: heights differ", y)
		}
	}
}

func TestTriangulate_Tiny(t *testing.T) {
	data := Triangulate(flatHeights(2, func(x, y int) float32 { return 0 }), testSettings(false), 0)
	if len(data.Vertices) != 0 {
		t.Errorf("expected empty mesh, got %d vertices", len(data.Vertices))
	}

	data = Triangulate(flatHeights(3, func(x, y int) float32 { return 1 }), testSettings(false), 0)
	if len(data.Vertices) != 1 || data.TriangleCount() != 0 || !data.Normals[0].ApproxEqualThreshold(up, 1e-6) {
		t.Errorf("unexpected single vertex mesh %+v", data)
	}
}

func TestData_HeightRange(t *testing.T) {
	s := testSettings(false)
	heights := flatHeights(s.VerticesPerEdge()+2, func(x, y int) float32 { return float32(y) })

	// The border ring does not count.
	min, max := Triangulate(heights, s, 0).HeightRange()
	if min != 1 || max != float32(s.VerticesPerEdge()) {
		t.Errorf("expected [1, %d], got [%f, %f]", s.VerticesPerEdge(), min, max)
	}
}

func BenchmarkTriangulate(b *testing.B) {
	s := Settings{Scale: 1, ChunkSizeIndex: NumSupportedChunkSizes - 1}
	h := terrain.Build(s.VerticesPerEdge(), terrain.DefaultHeightMapSettings(), world.Vec2f{})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Triangulate(h.Values, s, 0)
	}
}
