// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"reflect"
	"strings"
)

// Message types are the Go type name with a lowercase first letter, so ChunkMesh is "chunkMesh".
var (
	inboundMessageTypes  = make(map[messageType]reflect.Type)
	outboundMessageTypes = make(map[reflect.Type]messageType)
)

type (
	// inbound is a message from a client, applied on the hub goroutine.
	inbound interface {
		Inbound(hub *Hub, client Client)
	}

	// outbound is a message to clients. Pool is called once it has been written.
	outbound interface {
		Pool()
	}

	// Message wraps inbound and outbound messages with their type on the wire:
	// {"data": {...}, "type": "chunkMesh"}
	Message struct {
		Data interface{}
	}

	messageJSON struct {
		Data interface{} `json:"data"`
		Type messageType `json:"type"`
	}

	messageType string

	// SignedInbound is an inbound along with the client that sent it.
	SignedInbound struct {
		Client Client
		inbound
	}
)

func messageTypeOf(t reflect.Type) messageType {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	return messageType(strings.ToLower(name[:1]) + name[1:])
}

func registerInbound(inbounds ...inbound) {
	for _, in := range inbounds {
		t := reflect.TypeOf(in)
		inboundMessageTypes[messageTypeOf(t)] = t
	}
}

func registerOutbound(outbounds ...outbound) {
	for _, out := range outbounds {
		t := reflect.TypeOf(out)
		outboundMessageTypes[t] = messageTypeOf(t)
	}
}

func (message Message) messageJSON() messageJSON {
	t := reflect.TypeOf(message.Data)
	mType, ok := outboundMessageTypes[t]
	if !ok {
		// Outbounds are only created by the server.
		panic("unregistered outbound message type " + t.String())
	}
	return messageJSON{Data: message.Data, Type: mType}
}

// Overridden by jsoniter
func (message Message) MarshalJSON() ([]byte, error) {
	panic("unimplemented")
}

// Overridden by jsoniter
func (message *Message) UnmarshalJSON([]byte) error {
	panic("unimplemented")
}
