// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package mesh

const (
	// NumSupportedLODs is the number of distinct strides Triangulate accepts.
	NumSupportedLODs = 5
	// NumSupportedChunkSizes is the length of SupportedChunkSizes.
	NumSupportedChunkSizes = 9
	// NumSupportedFlatShadedChunkSizes are the smaller sizes, since flat shading triples vertex count.
	NumSupportedFlatShadedChunkSizes = 3
)

// SupportedChunkSizes are all multiples of 24 so every LOD stride divides them.
var SupportedChunkSizes = [NumSupportedChunkSizes]int{48, 72, 96, 120, 144, 168, 192, 216, 240}

// Settings control the resolution and size of chunk meshes.
type Settings struct {
	Scale                    float32 `yaml:"scale"`
	FlatShading              bool    `yaml:"flatShading"`
	ChunkSizeIndex           int     `yaml:"chunkSizeIndex"`
	FlatShadedChunkSizeIndex int     `yaml:"flatShadedChunkSizeIndex"`
}

func DefaultSettings() Settings {
	return Settings{
		Scale:          2.5,
		ChunkSizeIndex: 4,
	}
}

// Validate clamps the settings to the supported menu.
func (s *Settings) Validate() {
	if s.Scale <= 0 {
		s.Scale = 1
	}
	s.ChunkSizeIndex = clampIndex(s.ChunkSizeIndex, NumSupportedChunkSizes)
	s.FlatShadedChunkSizeIndex = clampIndex(s.FlatShadedChunkSizeIndex, NumSupportedFlatShadedChunkSizes)
}

// ChunkSize is the number of quads along each edge of an LOD 0 mesh.
func (s *Settings) ChunkSize() int {
	if s.FlatShading {
		return SupportedChunkSizes[clampIndex(s.FlatShadedChunkSizeIndex, NumSupportedFlatShadedChunkSizes)]
	}
	return SupportedChunkSizes[clampIndex(s.ChunkSizeIndex, NumSupportedChunkSizes)]
}

// VerticesPerEdge is the number of emitted vertices along each edge of an LOD 0 mesh,
// excluding the border.
func (s *Settings) VerticesPerEdge() int {
	return s.ChunkSize() + 1
}

// WorldSize is the side length of a chunk in world units.
func (s *Settings) WorldSize() float32 {
	return float32(s.ChunkSize()) * s.Scale
}

// Skip is the stride between emitted vertices at a given LOD.
func Skip(lod int) int {
	if lod <= 0 {
		return 1
	}
	return lod * 2
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
