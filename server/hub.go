// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/endless/config"
	"github.com/SoftbearStudios/endless/dispatch"
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/world"
	"github.com/chewxy/math32"
	"os"
	"sync/atomic"
	"time"
)

const (
	debugPeriod = time.Second * 5

	// autopilotIdle is how long after the last MoveViewer the autopilot resumes.
	autopilotIdle = time.Second * 10
	// autopilotChunks is the radius of the autopilot's circle in chunks.
	autopilotChunks = 2
	// autopilotSpeed is in world units per second.
	autopilotSpeed = 40
)

type HubOptions struct {
	Config config.Config
}

// Hub owns the terrain streamer. Its goroutine is the only one that touches the
// streamer, so it is the one that drains generated chunks.
type Hub struct {
	config     config.Config
	dispatcher *dispatch.Dispatcher
	streamer   *stream.Streamer
	builder    stream.Builder
	clients    ClientList // implemented as double-linked list

	// Viewer
	viewer         world.Vec2f
	manualTime     time.Time // last MoveViewer
	autopilotAngle float32

	heightRange HeightRange
	statusJSON  atomic.Value

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	framePeriod time.Duration
	frameTicker *time.Ticker
	frameTime   time.Time
	frames      int // since last debug
	delivered   int // since last debug
	debugTicker *time.Ticker
}

func NewHub(options HubOptions) (*Hub, error) {
	c := options.Config
	if err := c.Validate(); err != nil {
		return nil, err
	}

	h := &Hub{
		config:      c,
		dispatcher:  dispatch.New(c.Workers),
		inbound:     make(chan SignedInbound, 16+c.Server.MaxConnections*2),
		register:    make(chan Client, 8),
		unregister:  make(chan Client, 16),
		framePeriod: time.Second / time.Duration(c.Server.FrameRate),
	}

	opts := c.StreamOptions()
	h.builder = stream.NewBuilder(opts.HeightMap, opts.Mesh)
	opts.Dispatcher = h.dispatcher
	opts.Builder = h.builder
	opts.Sink = sink{h}
	opts.Material = sink{h}

	s, err := stream.New(opts)
	if err != nil {
		h.dispatcher.Close()
		return nil, err
	}
	h.streamer = s
	h.updateStatus()

	return h, nil
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	h.frameTicker = time.NewTicker(h.framePeriod)
	h.debugTicker = time.NewTicker(debugPeriod)
	h.frameTime = time.Now()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not same hub the message is old
				if h == in.Client.Data().Hub {
					in.Inbound(h, in.Client)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case now := <-h.frameTicker.C:
			h.Frame(now.Sub(h.frameTime))
			h.frameTime = now
		case <-h.debugTicker.C:
			h.Debug()
		}
	}
}

func (h *Hub) addClient(client Client) {
	h.clients.Add(client)
	client.Data().Hub = h
	client.Init()
	h.sendSnapshot(client)
}

func (h *Hub) removeClient(client Client) {
	client.Close()
	client.Data().Hub = nil
	h.clients.Remove(client)
}

// Frame advances the viewer, delivers generated chunks within the frame's budget and streams.
func (h *Hub) Frame(elapsed time.Duration) {
	if h.config.Server.Autopilot && time.Since(h.manualTime) > autopilotIdle {
		radius := autopilotChunks * h.streamer.WorldSize()
		h.autopilotAngle += float32(elapsed.Seconds()) * autopilotSpeed / radius
		h.viewer = world.Vec2f{X: math32.Cos(h.autopilotAngle), Y: math32.Sin(h.autopilotAngle)}.Mul(radius)
	}

	h.delivered += h.dispatcher.DrainFor(h.config.Server.DrainBudget)
	h.streamer.Update(h.viewer)
	h.frames++

	h.updateStatus()
}

// sendSnapshot catches a new client up on the visible chunks.
func (h *Hub) sendSnapshot(client Client) {
	client.Send(h.heightRange)

	levels := h.streamer.DetailLevels()
	colliderIndex := h.streamer.ColliderLODIndex()

	for _, coord := range h.streamer.VisibleChunks() {
		c, _ := h.streamer.Chunk(coord)

		if heightMap := c.HeightMap(); heightMap != nil {
			client.Send(newChunkHeights(coord, heightMap))
		}
		if index := c.LOD(); index >= 0 {
			data, _ := c.Mesh(index)
			client.Send(ChunkMesh{Coord: coord, LOD: levels[index].LOD, Mesh: data})
		}
		client.Send(ChunkVisible{Coord: coord, Visible: true})
		if c.HasCollider() {
			data, _ := c.Mesh(colliderIndex)
			client.Send(ChunkCollider{Coord: coord, Triangles: data.TriangleCount()})
		}
	}
}

func (h *Hub) broadcast(out outbound) {
	for client := h.clients.First; client != nil; client = client.Data().Next {
		client.Send(out)
	}
}

func (h *Hub) broadcastHeights(heights *ChunkHeights) {
	if h.clients.Len == 0 {
		heights.Pool()
		return
	}
	heights.share(h.clients.Len)
	h.broadcast(heights)
}

type status struct {
	Viewer    world.Vec2f  `json:"viewer"`
	WorldSize float32      `json:"worldSize"`
	Clients   int          `json:"clients"`
	Pending   int          `json:"pending"`
	InFlight  int          `json:"inFlight"`
	Workers   int          `json:"workers"`
	Stats     stream.Stats `json:"stats"`
}

func (h *Hub) updateStatus() {
	buf, err := json.Marshal(status{
		Viewer:    h.viewer,
		WorldSize: h.streamer.WorldSize(),
		Clients:   h.clients.Len,
		Pending:   h.dispatcher.Pending(),
		InFlight:  h.dispatcher.InFlight(),
		Workers:   h.dispatcher.Workers(),
		Stats:     h.streamer.Stats(),
	})
	if err != nil {
		fmt.Println("status error:", err)
		return
	}
	h.statusJSON.Store(buf)
}

// Close stops generation. The hub must not be running.
func (h *Hub) Close() {
	if h.frameTicker != nil {
		h.frameTicker.Stop()
		h.debugTicker.Stop()
	}
	h.dispatcher.Close()
}
