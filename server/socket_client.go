// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Meshes are large, so writes get more time than pings need.
	writeWait = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 8) / 10 // must be less than pongWait

	// A rescan can produce a burst of chunk messages, so the buffer holds several
	// before the client counts as unresponsive.
	socketBufferSize = 1024

	// Inbound messages are tiny (moveViewer, trace).
	maxMessageSize = 512

	debugSocket = false
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout:  time.Second,
	ReadBufferSize:    maxMessageSize,
	WriteBufferSize:   1 << 16,
	EnableCompression: true,
}

// SocketClient relays between a websocket connection and the hub.
type SocketClient struct {
	ClientData
	conn *websocket.Conn
	send chan outbound
	once sync.Once
}

func NewSocketClient(conn *websocket.Conn) *SocketClient {
	return &SocketClient{
		conn: conn,
		send: make(chan outbound, socketBufferSize),
	}
}

func (client *SocketClient) Init() {
	go client.writePump()
	go client.readPump()
}

// Close is called by the hub, after which the write pump sends a close frame.
func (client *SocketClient) Close() {
	close(client.send)
}

func (client *SocketClient) Data() *ClientData {
	return &client.ClientData
}

func (client *SocketClient) Destroy() {
	client.once.Do(func() {
		hub := client.Hub

		// Destroy may run on the hub goroutine, which must not block on its own channel.
		select {
		case hub.unregister <- client:
		default:
			go func() {
				hub.unregister <- client
			}()
		}

		_ = client.conn.Close()
	})
}

// Send never blocks. Missing a chunk message would leave the client's terrain wrong
// forever, so a client that can't keep up is disconnected instead.
func (client *SocketClient) Send(out outbound) {
	select {
	case client.send <- out:
	default:
		log.Println("socket client buffer full, disconnecting")
		client.Destroy()
	}
}

func (client *SocketClient) readPump() {
	defer client.Destroy()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		in, err := client.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("close error:", err)
			} else if debugSocket {
				log.Println("read error:", err)
			}
			return
		}
		if in != nil {
			client.Hub.inbound <- SignedInbound{Client: client, inbound: in}
		}
	}
}

// read returns nil, nil for messages of unknown type.
func (client *SocketClient) read() (inbound, error) {
	_, r, err := client.conn.NextReader()
	if err != nil {
		return nil, err
	}

	var message Message
	if err = json.NewDecoder(r).Decode(&message); err != nil {
		return nil, err
	}

	if invalid, ok := message.Data.(InvalidInbound); ok {
		log.Println("invalid message type received:", invalid.messageType)
		return nil, nil
	}
	return message.Data.(inbound), nil
}

func (client *SocketClient) writePump() {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		client.Destroy()
	}()

	for {
		select {
		case out, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}

			err := client.write(out)
			out.Pool()
			if err != nil {
				if debugSocket {
					log.Println("write error:", err)
				}
				client.drain()
				return
			}
		case <-pingTicker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.drain()
				return
			}
		}
	}
}

func (client *SocketClient) write(out outbound) error {
	w, err := client.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	// Wrap with Message to marshal type
	if err = json.NewEncoder(w).Encode(Message{Data: out}); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// drain pools whatever is still queued once writing failed, until the hub closes the channel.
func (client *SocketClient) drain() {
	client.Destroy()
	go func() {
		for out := range client.send {
			out.Pool()
		}
	}()
}
