// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/SoftbearStudios/endless/world"
)

// Builder generates chunk data. Its methods are called concurrently from workers.
type Builder interface {
	HeightMap(sampleCenter world.Vec2f) terrain.HeightMap
	Mesh(heightMap *terrain.HeightMap, lod int) *mesh.Data
}

type builder struct {
	heightMap terrain.HeightMapSettings
	mesh      mesh.Settings
}

// NewBuilder returns a Builder backed by terrain.Build and mesh.Triangulate.
func NewBuilder(heightMap terrain.HeightMapSettings, mesh mesh.Settings) Builder {
	return &builder{heightMap: heightMap, mesh: mesh}
}

func (b *builder) HeightMap(sampleCenter world.Vec2f) terrain.HeightMap {
	return terrain.Build(b.mesh.VerticesPerEdge(), b.heightMap, sampleCenter)
}

func (b *builder) Mesh(heightMap *terrain.HeightMap, lod int) *mesh.Data {
	return mesh.Triangulate(heightMap.Values, b.mesh, lod)
}
