// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/endless/config"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/terrain/falloff"
	"github.com/SoftbearStudios/endless/terrain/noise"
	"github.com/SoftbearStudios/endless/world"
	"image"
	"image/png"
	"log"
	"os"
	"runtime/pprof"
)

func main() {
	var (
		cpuProfile string
		configPath string
		mode       string
		out        string
		x, y       int
	)
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&configPath, "config", "", "terrain config `file` (yaml), defaults if empty")
	flag.StringVar(&mode, "mode", "bands", "one of noise, falloff, gray or bands")
	flag.StringVar(&out, "out", "out.png", "output `file`")
	flag.IntVar(&x, "x", 0, "chunk x")
	flag.IntVar(&y, "y", 0, "chunk y")
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}

	img, err := run(&c, mode, x, y)
	if err != nil {
		log.Fatal(err)
	}

	file, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err = png.Encode(file, img); err != nil {
		log.Fatal(err)
	}
}

func run(c *config.Config, mode string, x, y int) (image.Image, error) {
	size := c.Mesh.VerticesPerEdge() + 2
	center := world.Vec2f{X: float32(x), Y: float32(y)}.Mul(float32(c.Mesh.ChunkSize()))

	switch mode {
	case "noise":
		return terrain.RenderGrid(noise.Sample(size, size, c.Noise, center)), nil
	case "falloff":
		return terrain.RenderGrid(falloff.Map(size)), nil
	case "gray", "bands":
		h := terrain.Build(c.Mesh.VerticesPerEdge(), c.HeightMapSettings(), center)
		if mode == "gray" {
			return terrain.Render(h), nil
		}
		return terrain.RenderBands(h), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}
