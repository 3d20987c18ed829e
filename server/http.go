// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/world"
	"image/png"
	"log"
	"net/http"
	"strconv"
)

func (h *Hub) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := h.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}

	h.register <- NewSocketClient(conn)
}

// ServeChunkImage renders the height map of the chunk at ?x=&y= as a PNG.
// ?mode=gray draws grayscale instead of elevation bands.
// It regenerates the height map, so it never touches the hub goroutine's state.
func (h *Hub) ServeChunkImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	x, errX := strconv.Atoi(query.Get("x"))
	y, errY := strconv.Atoi(query.Get("y"))
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be integers", http.StatusBadRequest)
		return
	}

	coord := stream.Coord{X: x, Y: y}
	center := world.Vec2f{X: float32(coord.X), Y: float32(coord.Y)}.Mul(float32(h.config.Mesh.ChunkSize()))
	heightMap := h.builder.HeightMap(center)

	img := terrain.RenderBands(heightMap)
	if query.Get("mode") == "gray" {
		img = terrain.Render(heightMap)
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Println("png error", err)
	}
}
