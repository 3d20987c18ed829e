// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import "testing"

// testClient records messages instead of sending them. It never pools them.
type testClient struct {
	ClientData
	messages []outbound
	inited   bool
	closed   bool
}

func (client *testClient) Init() { client.inited = true }
func (client *testClient) Close() { client.closed = true }
func (client *testClient) Destroy() {}
func (client *testClient) Data() *ClientData { return &client.ClientData }
func (client *testClient) Send(out outbound) {
	client.messages = append(client.messages, out)
}

func TestClientList(t *testing.T) {
	var list ClientList
	clients := []*testClient{{}, {}, {}}
	for _, c := range clients {
		list.Add(c)
	}

	if list.Len != 3 || list.First != clients[0] || list.Last != clients[2] {
		t.Fatalf("unexpected list %+v", list)
	}

	// Remove the middle.
	if next := list.Remove(clients[1]); next != clients[2] {
		t.Errorf("expected next to be last client")
	}
	if clients[0].Next != clients[2] || clients[2].Previous != clients[0] {
		t.Error("list not repaired")
	}

	// Remove all by iterating.
	n := 0
	for client := list.First; client != nil; client = list.Remove(client) {
		n++
	}
	if n != 2 || list.Len != 0 || list.First != nil || list.Last != nil {
		t.Errorf("expected empty list after removing %d, got %+v", n, list)
	}
}

func TestClientList_AddTwice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	var list ClientList
	c := &testClient{}
	list.Add(c)
	list.Add(c)
}
