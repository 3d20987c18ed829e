// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

type (
	// Client is anything that watches the stream: a websocket or a test recorder.
	Client interface {
		// Init runs on the hub goroutine right after registration, once Data().Hub is set.
		Init()

		// Close runs on the hub goroutine when the client is unregistered.
		Close()

		// Send queues an outbound message. It is only called on the hub goroutine and must not block.
		Send(out outbound)

		// Destroy asks the hub to unregister the client. Safe to call any number of
		// times from any goroutine.
		Destroy()

		// Data links the client into a ClientList.
		Data() *ClientData
	}

	// ClientData is embedded by every Client.
	ClientData struct {
		FPS      float32 // last reported by Trace
		Hub      *Hub    // nil once unregistered
		Previous Client
		Next     Client
	}

	// ClientList is an intrusive doubly-linked list, so the hub can add and remove
	// clients without allocating. Iterate with
	// for client := list.First; client != nil; client = client.Data().Next {}
	// or empty it with
	// for client := list.First; client != nil; client = list.Remove(client) {}
	ClientList struct {
		First Client
		Last  Client
		Len   int
	}
)

func (list *ClientList) contains(client Client) bool {
	data := client.Data()
	return data.Previous != nil || data.Next != nil || list.First == client
}

// Add appends a client. Adding a client twice panics.
func (list *ClientList) Add(client Client) {
	if list.contains(client) {
		panic("client already in list")
	}

	data := client.Data()
	data.Previous = list.Last
	if list.Last != nil {
		list.Last.Data().Next = client
	} else {
		list.First = client
	}
	list.Last = client
	list.Len++
}

// Remove unlinks a client and returns the one after it. Removing a client that
// isn't in the list panics.
func (list *ClientList) Remove(client Client) Client {
	if !list.contains(client) {
		panic("client not in list")
	}

	data := client.Data()
	next, previous := data.Next, data.Previous

	if previous != nil {
		previous.Data().Next = next
	} else {
		list.First = next
	}
	if next != nil {
		next.Data().Previous = previous
	} else {
		list.Last = previous
	}

	data.Previous, data.Next = nil, nil
	list.Len--
	return next
}
