// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream keeps the chunks around a moving viewer generated at the right level of detail.
package stream

import (
	"errors"
	"github.com/SoftbearStudios/endless/dispatch"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/SoftbearStudios/endless/world"
	"math"
)

const (
	// viewerMoveThreshold is how far the viewer must move before chunks are rescanned.
	viewerMoveThreshold    = 25
	sqrViewerMoveThreshold = viewerMoveThreshold * viewerMoveThreshold
)

var ErrNoDetailLevels = errors.New("at least one detail level is required")

// Options configure a Streamer.
type Options struct {
	HeightMap        terrain.HeightMapSettings
	Mesh             mesh.Settings
	DetailLevels     []LODInfo // sorted by New, the last threshold is the draw distance
	ColliderLODIndex int       // index into DetailLevels

	Dispatcher *dispatch.Dispatcher // if nil, one is created and closed by Close
	Builder    Builder              // if nil, NewBuilder(HeightMap, Mesh)
	Sink       Sink                 // if nil, NopSink
	Material   Material             // optional
}

// Stats count work done since the streamer was created.
type Stats struct {
	Chunks              int `json:"chunks"`
	Visible             int `json:"visible"`
	HeightMapsRequested int `json:"heightMapsRequested"`
	MeshesRequested     int `json:"meshesRequested"`
	Colliders           int `json:"colliders"`
}

// Streamer owns every chunk. It is not safe for concurrent use; all methods, and
// Dispatcher.Drain, must be called from the same goroutine.
type Streamer struct {
	heightMap        terrain.HeightMapSettings
	mesh             mesh.Settings
	detailLevels     []LODInfo
	colliderLODIndex int

	dispatcher      *dispatch.Dispatcher
	ownsDispatcher  bool
	builder         Builder
	sink            Sink
	worldSize       float32
	maxViewDistance float32
	chunksInView    int

	chunks  map[Coord]*Chunk
	visible []*Chunk

	viewer         world.Vec2f
	previousViewer world.Vec2f
	started        bool

	stats Stats
}

// New validates options and creates a streamer with no chunks. The first Update loads the
// chunks around the viewer.
func New(options Options) (*Streamer, error) {
	if len(options.DetailLevels) == 0 {
		return nil, ErrNoDetailLevels
	}

	s := &Streamer{
		heightMap:    options.HeightMap,
		mesh:         options.Mesh,
		detailLevels: ValidateDetailLevels(options.DetailLevels),
		dispatcher:   options.Dispatcher,
		builder:      options.Builder,
		sink:         options.Sink,
		chunks:       make(map[Coord]*Chunk),
	}
	s.heightMap.Validate()
	s.mesh.Validate()

	s.colliderLODIndex = options.ColliderLODIndex
	if s.colliderLODIndex < 0 {
		s.colliderLODIndex = 0
	} else if s.colliderLODIndex >= len(s.detailLevels) {
		s.colliderLODIndex = len(s.detailLevels) - 1
	}

	if s.dispatcher == nil {
		s.dispatcher = dispatch.New(0)
		s.ownsDispatcher = true
	}
	if s.builder == nil {
		s.builder = NewBuilder(s.heightMap, s.mesh)
	}
	if s.sink == nil {
		s.sink = NopSink{}
	}

	s.worldSize = s.mesh.WorldSize()
	s.maxViewDistance = s.detailLevels[len(s.detailLevels)-1].Threshold
	s.chunksInView = int(math.Round(float64(s.maxViewDistance / s.worldSize)))

	if options.Material != nil {
		options.Material.UpdateMeshHeights(s.heightMap.MinHeight(), s.heightMap.MaxHeight())
	}

	return s, nil
}

// Update moves the viewer. Colliders are checked whenever the viewer has moved, and
// chunks are rescanned on the first call and whenever the viewer moves far enough.
func (s *Streamer) Update(viewer world.Vec2f) {
	s.viewer = viewer

	if viewer != s.previousViewer {
		for _, c := range s.visible {
			c.UpdateCollisionMesh()
		}
	}

	if !s.started || s.previousViewer.DistanceSquared(viewer) > sqrViewerMoveThreshold {
		s.started = true
		s.previousViewer = viewer
		s.updateVisibleChunks()
	}
}

func (s *Streamer) updateVisibleChunks() {
	updated := make(map[Coord]struct{}, len(s.visible))

	// Backwards since chunks remove themselves when they become invisible.
	for i := len(s.visible) - 1; i >= 0; i-- {
		c := s.visible[i]
		updated[c.Coord] = struct{}{}
		c.UpdateChunk()
	}

	current := CoordOf(s.viewer, s.worldSize)

	for y := -s.chunksInView; y <= s.chunksInView; y++ {
		for x := -s.chunksInView; x <= s.chunksInView; x++ {
			coord := current.Add(Coord{X: x, Y: y})
			if _, ok := updated[coord]; ok {
				continue
			}

			if c, ok := s.chunks[coord]; ok {
				c.UpdateChunk()
			} else {
				c = newChunk(s, coord)
				s.chunks[coord] = c
				s.stats.Chunks++
				c.load()
			}
		}
	}
}

func (s *Streamer) onVisibilityChanged(c *Chunk, visible bool) {
	if visible {
		s.visible = append(s.visible, c)
		return
	}
	for i, v := range s.visible {
		if v == c {
			s.visible = append(s.visible[:i], s.visible[i+1:]...)
			return
		}
	}
}

// Chunk returns the chunk at a coordinate, if it was ever created.
func (s *Streamer) Chunk(coord Coord) (*Chunk, bool) {
	c, ok := s.chunks[coord]
	return c, ok
}

// Len is the number of chunks created so far.
func (s *Streamer) Len() int {
	return len(s.chunks)
}

// VisibleChunks returns the coordinates of visible chunks in the order they became visible.
func (s *Streamer) VisibleChunks() []Coord {
	coords := make([]Coord, len(s.visible))
	for i, c := range s.visible {
		coords[i] = c.Coord
	}
	return coords
}

// ForEachChunk calls f with every chunk in no particular order.
func (s *Streamer) ForEachChunk(f func(c *Chunk)) {
	for _, c := range s.chunks {
		f(c)
	}
}

func (s *Streamer) Stats() Stats {
	stats := s.stats
	stats.Visible = len(s.visible)
	return stats
}

// DetailLevels returns the validated detail table.
func (s *Streamer) DetailLevels() []LODInfo {
	return append([]LODInfo(nil), s.detailLevels...)
}

func (s *Streamer) ColliderLODIndex() int {
	return s.colliderLODIndex
}

func (s *Streamer) Viewer() world.Vec2f {
	return s.viewer
}

func (s *Streamer) WorldSize() float32 {
	return s.worldSize
}

func (s *Streamer) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Close stops the dispatcher if the streamer created it.
func (s *Streamer) Close() {
	if s.ownsDispatcher {
		s.dispatcher.Close()
	}
}
