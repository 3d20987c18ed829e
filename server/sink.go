// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/compressed"
	"github.com/SoftbearStudios/endless/terrain/mesh"
)

// sink forwards streamer changes to every client. Called on the hub goroutine.
type sink struct {
	h *Hub
}

func newChunkHeights(coord stream.Coord, heightMap *terrain.HeightMap) *ChunkHeights {
	return &ChunkHeights{Coord: coord, Terrain: compressed.Encode(heightMap)}
}

func (s sink) SetHeightMap(coord stream.Coord, heightMap *terrain.HeightMap) {
	if s.h.clients.Len == 0 {
		return
	}
	s.h.broadcastHeights(newChunkHeights(coord, heightMap))
}

func (s sink) SetMesh(coord stream.Coord, lod int, data *mesh.Data) {
	s.h.broadcast(ChunkMesh{Coord: coord, LOD: lod, Mesh: data})
}

func (s sink) SetVisible(coord stream.Coord, visible bool) {
	s.h.broadcast(ChunkVisible{Coord: coord, Visible: visible})
}

func (s sink) SetCollider(coord stream.Coord, data *mesh.Data) {
	s.h.broadcast(ChunkCollider{Coord: coord, Triangles: data.TriangleCount()})
}

func (s sink) UpdateMeshHeights(min, max float32) {
	s.h.heightRange = HeightRange{Min: min, Max: max}
	s.h.broadcast(s.h.heightRange)
}
