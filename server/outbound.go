// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/terrain/compressed"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"sync/atomic"
)

type (
	// HeightRange is the theoretical elevation range, for shading.
	HeightRange struct {
		Min float32 `json:"min"`
		Max float32 `json:"max"`
	}

	// ChunkHeights is a chunk's height map, including the border.
	// It is shared between clients, and pooled once all of them have sent it.
	ChunkHeights struct {
		Coord   stream.Coord     `json:"coord"`
		Terrain *compressed.Data `json:"terrain"`
		refs    atomic.Int32
	}

	// ChunkMesh is the mesh a chunk now displays.
	ChunkMesh struct {
		Coord stream.Coord `json:"coord"`
		LOD   int          `json:"lod"`
		Mesh  *mesh.Data   `json:"mesh"`
	}

	// ChunkVisible is sent when a chunk enters or leaves draw distance.
	ChunkVisible struct {
		Coord   stream.Coord `json:"coord"`
		Visible bool         `json:"visible"`
	}

	// ChunkCollider is sent once when a chunk becomes solid.
	ChunkCollider struct {
		Coord     stream.Coord `json:"coord"`
		Triangles int          `json:"triangles"`
	}
)

func init() {
	registerOutbound(
		HeightRange{},
		&ChunkHeights{},
		ChunkMesh{},
		ChunkVisible{},
		ChunkCollider{},
	)
}

func (heightRange HeightRange) Pool() {}

// share must be called before sending to n clients.
func (heights *ChunkHeights) share(n int) {
	heights.refs.Store(int32(n))
}

func (heights *ChunkHeights) Pool() {
	if heights.refs.Add(-1) <= 0 && heights.Terrain != nil {
		heights.Terrain.Pool()
		heights.Terrain = nil
	}
}

func (chunkMesh ChunkMesh) Pool() {}

func (visible ChunkVisible) Pool() {}

func (collider ChunkCollider) Pool() {}
