// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"runtime"
	"time"
)

// Debug prints debugging info to console.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v]\n", time.Now().Format(time.UnixDate))
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	var (
		fps      float32
		fpsCount int // clients that have sent a trace
	)
	for client := h.clients.First; client != nil; client = client.Data().Next {
		if f := client.Data().FPS; f != 0 {
			fps += f
			fpsCount++
		}
	}
	if fpsCount > 0 {
		fps /= float32(fpsCount)
	}
	fmt.Printf(" - clients: %d, average fps: %.01f\n", h.clients.Len, fps)

	s := h.streamer.Stats()
	fmt.Printf(" - viewer: %v, chunks: %d, visible: %d, colliders: %d\n", h.viewer, s.Chunks, s.Visible, s.Colliders)
	fmt.Printf(" - requested height maps: %d, meshes: %d\n", s.HeightMapsRequested, s.MeshesRequested)
	fmt.Printf(" - dispatcher: %d in flight, %d pending, %d workers\n", h.dispatcher.InFlight(), h.dispatcher.Pending(), h.dispatcher.Workers())

	if h.frames > 0 {
		fmt.Printf(" - frames: %d, delivered per frame: %.02f\n", h.frames, float32(h.delivered)/float32(h.frames))
	}
	h.frames = 0
	h.delivered = 0
}
