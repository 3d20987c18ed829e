// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads terrain streaming parameters from YAML.
package config

import (
	"fmt"
	"github.com/SoftbearStudios/endless/stream"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/SoftbearStudios/endless/terrain/noise"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

type Config struct {
	Noise            noise.Settings   `yaml:"noise"`
	HeightMap        HeightMap        `yaml:"heightMap"`
	Mesh             mesh.Settings    `yaml:"mesh"`
	DetailLevels     []stream.LODInfo `yaml:"detailLevels"`
	ColliderLODIndex int              `yaml:"colliderLODIndex"`
	Workers          int              `yaml:"workers"` // 0 means one per CPU
	Server           Server           `yaml:"server"`
}

type HeightMap struct {
	UseFalloff       bool               `yaml:"useFalloff"`
	HeightMultiplier float32            `yaml:"heightMultiplier"`
	Curve            []terrain.Keyframe `yaml:"curve"` // empty means linear
}

type Server struct {
	FrameRate      int           `yaml:"frameRate"`
	DrainBudget    time.Duration `yaml:"drainBudget"`
	MaxConnections int           `yaml:"maxConnections"`
	Autopilot      bool          `yaml:"autopilot"` // move the viewer in a circle when no client drives it
}

func Default() Config {
	return Config{
		Noise: noise.DefaultSettings(),
		HeightMap: HeightMap{
			HeightMultiplier: 30,
		},
		Mesh: mesh.DefaultSettings(),
		DetailLevels: []stream.LODInfo{
			{LOD: 0, Threshold: 300},
			{LOD: 1, Threshold: 600},
			{LOD: 3, Threshold: 900},
		},
		Server: Server{
			FrameRate:      30,
			DrainBudget:    4 * time.Millisecond,
			MaxConnections: 64,
		},
	}
}

// Load reads a YAML file over Default and validates it.
func Load(path string) (Config, error) {
	c := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate clamps everything that can be clamped. Only an empty detail table is an error.
func (c *Config) Validate() error {
	if len(c.DetailLevels) == 0 {
		return stream.ErrNoDetailLevels
	}

	c.Noise.Validate()
	c.Mesh.Validate()
	c.DetailLevels = stream.ValidateDetailLevels(c.DetailLevels)

	if c.ColliderLODIndex < 0 {
		c.ColliderLODIndex = 0
	} else if c.ColliderLODIndex >= len(c.DetailLevels) {
		c.ColliderLODIndex = len(c.DetailLevels) - 1
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Server.FrameRate <= 0 {
		c.Server.FrameRate = 30
	}
	if c.Server.DrainBudget <= 0 {
		c.Server.DrainBudget = time.Second / time.Duration(c.Server.FrameRate) / 4
	}
	if c.Server.MaxConnections <= 0 {
		c.Server.MaxConnections = 64
	}
	return nil
}

func (c *Config) HeightMapSettings() terrain.HeightMapSettings {
	var curve terrain.Curve = terrain.Linear{}
	if len(c.HeightMap.Curve) > 0 {
		curve = terrain.NewKeyframes(c.HeightMap.Curve...)
	}

	return terrain.HeightMapSettings{
		Noise:            c.Noise,
		UseFalloff:       c.HeightMap.UseFalloff,
		HeightMultiplier: c.HeightMap.HeightMultiplier,
		Curve:            curve,
	}
}

// StreamOptions fills in everything but the collaborators.
func (c *Config) StreamOptions() stream.Options {
	return stream.Options{
		HeightMap:        c.HeightMapSettings(),
		Mesh:             c.Mesh,
		DetailLevels:     c.DetailLevels,
		ColliderLODIndex: c.ColliderLODIndex,
	}
}
