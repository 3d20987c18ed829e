// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/endless/world"
	"github.com/chewxy/math32"
	"time"
)

// Make sure to register in init function
type (
	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}

	// MoveViewer drives the viewer, taking over from the autopilot for a while.
	MoveViewer struct {
		Position world.Vec2f `json:"position"`
	}

	// Trace sends debug info.
	Trace struct {
		FPS float32 `json:"fps"`
	}
)

func init() {
	registerInbound(
		MoveViewer{},
		Trace{},
	)
}

func (data InvalidInbound) Inbound(_ *Hub, _ Client) {}

func (data MoveViewer) Inbound(h *Hub, _ Client) {
	p := data.Position
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	h.viewer = p
	h.manualTime = time.Now()
}

func (data Trace) Inbound(_ *Hub, client Client) {
	if finite(data.FPS) && data.FPS >= 0 {
		client.Data().FPS = data.FPS
	}
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
