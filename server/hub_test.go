// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"github.com/SoftbearStudios/endless/config"
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/terrain/compressed"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/SoftbearStudios/endless/world"
	"github.com/chewxy/math32"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() config.Config {
	c := config.Default()
	c.Noise.Octaves = 3
	c.Mesh = mesh.Settings{Scale: 1} // 48 world units per chunk
	c.DetailLevels = []stream.LODInfo{
		{LOD: 0, Threshold: 50},
		{LOD: 2, Threshold: 100},
	}
	c.Workers = 4
	return c
}

func newTestHub(t *testing.T, c config.Config) *Hub {
	h, err := NewHub(HubOptions{Config: c})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

// settle delivers generated chunks until no work remains.
func (h *Hub) settle() {
	for {
		h.dispatcher.Wait()
		if h.dispatcher.Drain() == 0 {
			return
		}
	}
}

type messageCounts struct {
	heightRanges int
	heights      map[stream.Coord]*ChunkHeights
	meshes       map[stream.Coord]int // latest LOD
	visible      map[stream.Coord]bool
	colliders    map[stream.Coord]int
}

func countMessages(t *testing.T, messages []outbound) messageCounts {
	t.Helper()

	counts := messageCounts{
		heights:   make(map[stream.Coord]*ChunkHeights),
		meshes:    make(map[stream.Coord]int),
		visible:   make(map[stream.Coord]bool),
		colliders: make(map[stream.Coord]int),
	}
	for _, out := range messages {
		switch m := out.(type) {
		case HeightRange:
			counts.heightRanges++
		case *ChunkHeights:
			if _, ok := counts.heights[m.Coord]; ok {
				t.Errorf("heights of %s sent twice", m.Coord)
			}
			counts.heights[m.Coord] = m
		case ChunkMesh:
			counts.meshes[m.Coord] = m.LOD
		case ChunkVisible:
			counts.visible[m.Coord] = m.Visible
		case ChunkCollider:
			counts.colliders[m.Coord]++
		default:
			t.Errorf("unexpected message %T", out)
		}
	}
	return counts
}

func TestNewHub_Errors(t *testing.T) {
	c := testConfig()
	c.DetailLevels = nil
	if _, err := NewHub(HubOptions{Config: c}); err != stream.ErrNoDetailLevels {
		t.Errorf("expected ErrNoDetailLevels, got %v", err)
	}
}

func TestHub_Stream(t *testing.T) {
	h := newTestHub(t, testConfig())

	client := &testClient{}
	h.addClient(client)
	if !client.inited || client.Hub != h {
		t.Fatal("client not initialized")
	}
	if len(client.messages) != 1 {
		t.Fatalf("expected only height range, got %d messages", len(client.messages))
	}
	if hr, ok := client.messages[0].(HeightRange); !ok || hr.Min != 0 || hr.Max != 30 {
		t.Errorf("unexpected first message %#v", client.messages[0])
	}

	h.Frame(0)
	h.settle()

	counts := countMessages(t, client.messages)

	// 5x5 chunks are loaded around the origin.
	if len(counts.heights) != 25 {
		t.Errorf("expected 25 height maps, got %d", len(counts.heights))
	}
	for coord, heights := range counts.heights {
		decoded, err := compressed.Decode(heights.Terrain)
		if err != nil {
			t.Errorf("%s: %v", coord, err)
			continue
		}
		if decoded.Size() != 51 {
			t.Errorf("%s: expected 51 vertices per edge, got %d", coord, decoded.Size())
		}
	}

	stats := h.streamer.Stats()
	if len(counts.visible) != stats.Visible {
		t.Errorf("expected %d visible, got %d", stats.Visible, len(counts.visible))
	}
	for coord, visible := range counts.visible {
		if !visible {
			t.Errorf("%s hidden without being shown", coord)
		}
		if _, ok := counts.meshes[coord]; !ok {
			t.Errorf("visible %s has no mesh", coord)
		}
	}
	if lod := counts.meshes[stream.Coord{}]; lod != 0 {
		t.Errorf("expected origin at LOD 0, got %d", lod)
	}
	if lod, ok := counts.meshes[stream.Coord{X: 2}]; !ok || lod != 2 {
		t.Errorf("expected (2, 0) at LOD 2, got %d", lod)
	}

	// Only the chunk under the viewer is close enough to collide.
	if len(counts.colliders) != 1 || counts.colliders[stream.Coord{}] != 1 {
		t.Errorf("expected one collider at origin, got %v", counts.colliders)
	}

	h.removeClient(client)
	if !client.closed || client.Hub != nil || h.clients.Len != 0 {
		t.Error("client not removed")
	}
}

func TestHub_Snapshot(t *testing.T) {
	h := newTestHub(t, testConfig())
	h.Frame(0)
	h.settle()

	// Joins after everything was generated.
	client := &testClient{}
	h.addClient(client)

	if _, ok := client.messages[0].(HeightRange); !ok {
		t.Errorf("expected height range first, got %T", client.messages[0])
	}
	counts := countMessages(t, client.messages)
	visible := h.streamer.VisibleChunks()
	if len(counts.visible) != len(visible) || len(counts.heights) != len(visible) || len(counts.meshes) != len(visible) {
		t.Errorf("expected %d of each, got %d visible, %d heights, %d meshes",
			len(visible), len(counts.visible), len(counts.heights), len(counts.meshes))
	}
	if len(counts.colliders) != 1 {
		t.Errorf("expected one collider, got %d", len(counts.colliders))
	}
}

func TestHub_MoveViewer(t *testing.T) {
	h := newTestHub(t, testConfig())
	h.Frame(0)
	h.settle()

	client := &testClient{}
	h.addClient(client)
	client.messages = nil

	MoveViewer{Position: world.Vec2f{X: math32.NaN()}}.Inbound(h, client)
	if h.viewer != (world.Vec2f{}) {
		t.Fatal("accepted NaN position")
	}

	MoveViewer{Position: world.Vec2f{X: 150}}.Inbound(h, client)
	h.Frame(0)
	h.settle()

	counts := countMessages(t, client.messages)
	if counts.visible[stream.Coord{X: -2}] {
		t.Error("(-2, 0) should not have been shown")
	}
	if visible, ok := counts.visible[stream.Coord{X: -1}]; !ok || visible {
		t.Error("expected (-1, 0) to be hidden")
	}
	if visible, ok := counts.visible[stream.Coord{X: 5}]; !ok || !visible {
		t.Error("expected (5, 0) to be shown")
	}
	if lod, ok := counts.meshes[stream.Coord{X: 3}]; !ok || lod != 0 {
		t.Errorf("expected (3, 0) at LOD 0, got %d", lod)
	}
	if counts.colliders[stream.Coord{X: 3}] != 1 {
		t.Error("expected collider under viewer")
	}
}

func TestHub_Trace(t *testing.T) {
	h := newTestHub(t, testConfig())
	client := &testClient{}
	h.addClient(client)

	Trace{FPS: 60}.Inbound(h, client)
	Trace{FPS: -1}.Inbound(h, client)
	if client.FPS != 60 {
		t.Errorf("expected 60 fps, got %f", client.FPS)
	}
}

func TestHub_Autopilot(t *testing.T) {
	c := testConfig()
	c.Server.Autopilot = true
	h := newTestHub(t, c)

	h.Frame(time.Second)
	if d := math32.Sqrt(h.viewer.LengthSquared()); math32.Abs(d-96) > 0.01 {
		t.Errorf("expected autopilot radius 96, got %f", d)
	}
	if h.viewer == (world.Vec2f{X: 96}) {
		t.Error("autopilot did not move")
	}

	MoveViewer{Position: world.Vec2f{X: 10, Y: 10}}.Inbound(h, &testClient{})
	h.Frame(time.Second)
	if h.viewer != (world.Vec2f{X: 10, Y: 10}) {
		t.Errorf("autopilot overrode manual viewer, got %v", h.viewer)
	}
}

func TestChunkHeights_Pool(t *testing.T) {
	h := newTestHub(t, testConfig())
	clients := []*testClient{{}, {}}
	for _, c := range clients {
		h.addClient(c)
	}

	heightMap := h.builder.HeightMap(world.Vec2f{})
	heights := newChunkHeights(stream.Coord{}, &heightMap)
	h.broadcastHeights(heights)

	heights.Pool()
	if heights.Terrain == nil {
		t.Fatal("pooled before every client sent")
	}
	heights.Pool()
	if heights.Terrain != nil {
		t.Error("not pooled after every client sent")
	}
}

func TestHub_ServeIndex(t *testing.T) {
	h := newTestHub(t, testConfig())

	w := httptest.NewRecorder()
	h.ServeIndex(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"worldSize":48`)) {
		t.Errorf("unexpected status %s", w.Body.String())
	}
}

func TestHub_ServeChunkImage(t *testing.T) {
	h := newTestHub(t, testConfig())

	for _, mode := range []string{"", "gray"} {
		w := httptest.NewRecorder()
		h.ServeChunkImage(w, httptest.NewRequest(http.MethodGet, "/chunk.png?x=1&y=-1&mode="+mode, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", mode, w.Code)
		}
		img, err := png.Decode(w.Body)
		if err != nil {
			t.Fatalf("%q: %v", mode, err)
		}
		if b := img.Bounds(); b.Dx() != 51 || b.Dy() != 51 {
			t.Errorf("%q: expected 51x51, got %v", mode, b)
		}
	}

	w := httptest.NewRecorder()
	h.ServeChunkImage(w, httptest.NewRequest(http.MethodGet, "/chunk.png?x=a&y=0", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
