// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/endless/dispatch"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/SoftbearStudios/endless/world"
	"github.com/chewxy/math32"
)

// colliderGenerationDistance is how close the viewer must be before a chunk gets its collider.
const colliderGenerationDistance = 5

// State is how far a chunk has progressed through generation.
type State uint8

const (
	HeightMapRequested State = iota
	HeightMapReady
)

func (state State) String() string {
	if state == HeightMapReady {
		return "heightMapReady"
	}
	return "heightMapRequested"
}

// lodMesh caches the mesh of one detail level. It is kept even when unused.
type lodMesh struct {
	lod              int
	data             *mesh.Data
	hasRequestedMesh bool
	hasMesh          bool
}

// Chunk is one square of terrain. Chunks are created once and never removed.
// All methods must be called on the owner goroutine.
type Chunk struct {
	Coord

	streamer     *Streamer
	sampleCenter world.Vec2f
	bounds       world.AABB
	heightMap    *terrain.HeightMap
	lodMeshes    []lodMesh
	previousLOD  int // index into lodMeshes, -1 if no mesh was ever shown
	visible      bool
	hasCollider  bool
}

// newChunk samples noise at coord times the chunk size, which is the world position divided by mesh scale.
func newChunk(s *Streamer, coord Coord) *Chunk {
	c := &Chunk{
		Coord:        coord,
		streamer:     s,
		sampleCenter: world.Vec2f{X: float32(coord.X), Y: float32(coord.Y)}.Mul(float32(s.mesh.ChunkSize())),
		bounds:       coord.Bounds(s.worldSize),
		lodMeshes:    make([]lodMesh, len(s.detailLevels)),
		previousLOD:  -1,
	}
	for i, info := range s.detailLevels {
		c.lodMeshes[i].lod = info.LOD
	}
	return c
}

// load requests the height map.
func (c *Chunk) load() {
	s := c.streamer
	center := c.sampleCenter
	s.stats.HeightMapsRequested++

	dispatch.Request(s.dispatcher, func() terrain.HeightMap {
		return s.builder.HeightMap(center)
	}, c.onHeightMap)
}

func (c *Chunk) onHeightMap(heightMap terrain.HeightMap) {
	c.heightMap = &heightMap
	c.streamer.sink.SetHeightMap(c.Coord, c.heightMap)
	c.UpdateChunk()
}

// UpdateChunk picks the level of detail for the current viewer position, swapping to that
// mesh if it has arrived or requesting it otherwise, and updates visibility.
// It does nothing until the height map has arrived.
func (c *Chunk) UpdateChunk() {
	if c.heightMap == nil {
		return
	}
	s := c.streamer

	distance := math32.Sqrt(c.bounds.DistanceSquared(s.viewer))
	wasVisible := c.visible
	visible := distance <= s.maxViewDistance

	if visible {
		index := selectLOD(s.detailLevels, distance)
		if index != c.previousLOD {
			lm := &c.lodMeshes[index]
			if lm.hasMesh {
				c.previousLOD = index
				s.sink.SetMesh(c.Coord, lm.lod, lm.data)
			} else if !lm.hasRequestedMesh {
				c.requestMesh(index)
			}
		}
	}

	if wasVisible != visible {
		c.visible = visible
		s.sink.SetVisible(c.Coord, visible)
		s.onVisibilityChanged(c, visible)
	}
}

// UpdateCollisionMesh requests the collider mesh once the viewer is within its detail level
// and hands it to the sink once the viewer is very close. A chunk's collider is never replaced.
func (c *Chunk) UpdateCollisionMesh() {
	if c.hasCollider || c.heightMap == nil {
		return
	}
	s := c.streamer
	index := s.colliderLODIndex
	lm := &c.lodMeshes[index]

	sqrDistance := c.bounds.DistanceSquared(s.viewer)
	if sqrDistance < s.detailLevels[index].SqrThreshold() && !lm.hasRequestedMesh {
		c.requestMesh(index)
	}

	if sqrDistance < colliderGenerationDistance*colliderGenerationDistance && lm.hasMesh {
		c.hasCollider = true
		s.stats.Colliders++
		s.sink.SetCollider(c.Coord, lm.data)
	}
}

func (c *Chunk) requestMesh(index int) {
	s := c.streamer
	lm := &c.lodMeshes[index]
	lm.hasRequestedMesh = true
	s.stats.MeshesRequested++

	heightMap := c.heightMap
	lod := lm.lod
	dispatch.Request(s.dispatcher, func() *mesh.Data {
		return s.builder.Mesh(heightMap, lod)
	}, func(data *mesh.Data) {
		c.onMesh(index, data)
	})
}

func (c *Chunk) onMesh(index int, data *mesh.Data) {
	lm := &c.lodMeshes[index]
	lm.data = data
	lm.hasMesh = true

	c.UpdateChunk()
	if index == c.streamer.colliderLODIndex {
		c.UpdateCollisionMesh()
	}
}

func (c *Chunk) State() State {
	if c.heightMap == nil {
		return HeightMapRequested
	}
	return HeightMapReady
}

// LOD returns the index into the detail table of the mesh being shown, or -1.
func (c *Chunk) LOD() int {
	return c.previousLOD
}

func (c *Chunk) Visible() bool {
	return c.visible
}

func (c *Chunk) HasCollider() bool {
	return c.hasCollider
}

// HeightMap returns nil until the height map has arrived.
func (c *Chunk) HeightMap() *terrain.HeightMap {
	return c.heightMap
}

// Mesh returns the cached mesh of a detail table index, if it has arrived.
func (c *Chunk) Mesh(index int) (*mesh.Data, bool) {
	if index < 0 || index >= len(c.lodMeshes) || !c.lodMeshes[index].hasMesh {
		return nil, false
	}
	return c.lodMeshes[index].data, true
}

func (c *Chunk) Bounds() world.AABB {
	return c.bounds
}

func (c *Chunk) SampleCenter() world.Vec2f {
	return c.sampleCenter
}
