// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/mesh"
)

// Sink is told about chunk changes on the owner goroutine. Arguments must not be modified.
type Sink interface {
	// SetHeightMap is called once a chunk's height map arrives.
	SetHeightMap(coord Coord, heightMap *terrain.HeightMap)
	// SetMesh is called when a chunk switches to the mesh of a different level of detail.
	SetMesh(coord Coord, lod int, data *mesh.Data)
	// SetVisible is called when a chunk comes into or goes out of draw distance.
	SetVisible(coord Coord, visible bool)
	// SetCollider is called at most once per chunk.
	SetCollider(coord Coord, data *mesh.Data)
}

// Material receives the theoretical height range of all terrain so it can shade by elevation.
type Material interface {
	UpdateMeshHeights(min, max float32)
}

// NopSink ignores everything.
type NopSink struct{}

func (NopSink) SetHeightMap(Coord, *terrain.HeightMap) {}
func (NopSink) SetMesh(Coord, int, *mesh.Data)         {}
func (NopSink) SetVisible(Coord, bool)                 {}
func (NopSink) SetCollider(Coord, *mesh.Data)          {}
