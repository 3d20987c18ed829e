// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"github.com/go-gl/mathgl/mgl32"
	jsoniter "github.com/json-iterator/go"
	"reflect"
	"unsafe"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(mesh.Data{}).String(), encodeMeshData, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

// Encodes mesh.Data with flat arrays of lossy floats, since meshes are most of the traffic.
func encodeMeshData(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	data := (*mesh.Data)(ptr)

	stream.WriteObjectStart()
	stream.WriteObjectField("vertices")
	writeVec3s(stream, data.Vertices)
	stream.WriteMore()
	stream.WriteObjectField("normals")
	writeVec3s(stream, data.Normals)
	stream.WriteMore()
	stream.WriteObjectField("uvs")
	stream.WriteArrayStart()
	for i, uv := range data.UVs {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteFloat32Lossy(uv[0])
		stream.WriteMore()
		stream.WriteFloat32Lossy(uv[1])
	}
	stream.WriteArrayEnd()
	stream.WriteMore()
	stream.WriteObjectField("triangles")
	stream.WriteArrayStart()
	for i, index := range data.Triangles {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteUint32(index)
	}
	stream.WriteArrayEnd()
	if data.FlatShaded {
		stream.WriteMore()
		stream.WriteObjectField("flatShaded")
		stream.WriteTrue()
	}
	stream.WriteObjectEnd()
}

func writeVec3s(stream *jsoniter.Stream, vecs []mgl32.Vec3) {
	stream.WriteArrayStart()
	for i, v := range vecs {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteFloat32Lossy(v[0])
		stream.WriteMore()
		stream.WriteFloat32Lossy(v[1])
		stream.WriteMore()
		stream.WriteFloat32Lossy(v[2])
	}
	stream.WriteArrayEnd()
}

// Decodes the message type first, then the data as that type.
func decodeMessage(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	var raw struct {
		Data jsoniter.RawMessage `json:"data"`
		Type messageType         `json:"type"`
	}
	iter.ReadVal(&raw)
	if iter.Error != nil {
		return
	}

	message := (*Message)(ptr)

	if raw.Type == "" {
		iter.Error = errors.New("no inbound message type")
		return
	}

	inboundType, ok := inboundMessageTypes[raw.Type]
	if !ok {
		message.Data = InvalidInbound{messageType: raw.Type}
		return
	}

	in := reflect.New(inboundType)
	if len(raw.Data) > 0 {
		pool := iter.Pool()
		dataIter := pool.BorrowIterator(raw.Data)
		dataIter.ReadVal(in.Interface())
		err := dataIter.Error
		pool.ReturnIterator(dataIter)

		if err != nil {
			iter.Error = err
			return
		}
	}

	message.Data = in.Elem().Interface()
}
