// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compressed packs height maps into quantized, run length encoded bytes for transport.
package compressed

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/endless/terrain"
	"github.com/SoftbearStudios/endless/world"
	"io"
	"sync"
)

// Data is a compressed height map.
type Data struct {
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
	Data   []byte  `json:"data"`   // Data is run length encoded quantized heights, column major.
	Stride int     `json:"stride"` // Stride is the number of samples per column.
	Length int     `json:"length"` // Length is the uncompressed length of Data for faster reading.
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

func NewData() *Data {
	return dataPool.Get().(*Data)
}

// Pool returns data to the pool. It must not be used afterwards.
func (data *Data) Pool() {
	*data = Data{
		Data: data.Data[:0],
	}
	dataPool.Put(data)
}

// Encode quantizes h to a byte per sample relative to its own range.
func Encode(h *terrain.HeightMap) *Data {
	data := NewData()
	data.Min = h.Min
	data.Max = h.Max
	data.Length = 0
	if len(h.Values) > 0 {
		data.Stride = len(h.Values[0])
	}

	var buffer Buffer
	buffer.Reset(data.Data)
	buffer.Grow(len(h.Values))

	for _, column := range h.Values {
		for _, v := range column {
			buffer.writeByte(quantize(world.InverseLerp(h.Min, h.Max, v)))
		}
		data.Length += len(column)
	}

	data.Data = buffer.Buffer()
	return data
}

var errCorrupt = errors.New("compressed height map is corrupt")

// Decode restores an approximate height map. data is not modified.
func Decode(data *Data) (terrain.HeightMap, error) {
	if data.Stride <= 0 || data.Length%data.Stride != 0 || len(data.Data)%2 != 0 {
		return terrain.HeightMap{}, errCorrupt
	}

	raw := make([]byte, data.Length)
	var buffer Buffer
	buffer.Reset(append([]byte(nil), data.Data...))

	if n, err := io.ReadFull(&buffer, raw); err != nil {
		return terrain.HeightMap{}, fmt.Errorf("%w: read %d of %d: %v", errCorrupt, n, data.Length, err)
	}

	values := make([][]float32, data.Length/data.Stride)
	for x := range values {
		column := make([]float32, data.Stride)
		for y := range column {
			column[y] = world.Lerp(data.Min, data.Max, float32(raw[x*data.Stride+y])*(1.0/255))
		}
		values[x] = column
	}

	return terrain.HeightMap{Values: values, Min: data.Min, Max: data.Max}, nil
}

func quantize(f float32) byte {
	return byte(f*255 + 0.5)
}
