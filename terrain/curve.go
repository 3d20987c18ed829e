// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/endless/world"
	"sort"
)

// Curve remaps normalized noise before it is multiplied into elevation.
// Implementations must be safe for concurrent use.
type Curve interface {
	Evaluate(t float32) float32
}

// Linear is the identity curve.
type Linear struct{}

func (Linear) Evaluate(t float32) float32 {
	return t
}

// Keyframe is a point on a Keyframes curve.
type Keyframe struct {
	Time  float32 `yaml:"time" json:"time"`
	Value float32 `yaml:"value" json:"value"`
}

// Keyframes is a piecewise linear curve. It is constant outside its first and last keyframe.
type Keyframes []Keyframe

// NewKeyframes returns a sorted copy of frames.
func NewKeyframes(frames ...Keyframe) Keyframes {
	k := make(Keyframes, len(frames))
	copy(k, frames)
	sort.SliceStable(k, func(i, j int) bool {
		return k[i].Time < k[j].Time
	})
	return k
}

// Evaluate assumes k is sorted. An empty curve is the identity.
func (k Keyframes) Evaluate(t float32) float32 {
	switch {
	case len(k) == 0:
		return t
	case t <= k[0].Time:
		return k[0].Value
	case t >= k[len(k)-1].Time:
		return k[len(k)-1].Value
	}

	// First keyframe strictly after t, never 0 due to the checks above.
	i := sort.Search(len(k), func(i int) bool {
		return k[i].Time > t
	})
	a, b := k[i-1], k[i]
	return world.Lerp(a.Value, b.Value, world.InverseLerp(a.Time, b.Time, t))
}
