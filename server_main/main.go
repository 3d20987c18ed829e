// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/endless/config"
	"github.com/SoftbearStudios/endless/server"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
)

func main() {
	var (
		configPath     string
		port           int
		maxConnections int
		autopilot      bool
	)

	flag.StringVar(&configPath, "config", "", "terrain config `file` (yaml), defaults if empty")
	flag.IntVar(&port, "port", 8192, "http service port")
	flag.IntVar(&maxConnections, "max-connections", 0, "maximum number of inbound TCP connections, overrides config")
	flag.BoolVar(&autopilot, "autopilot", false, "circle the viewer when no client drives it")
	flag.Parse()

	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			log.Fatal("config error: ", err)
		}
	}
	if maxConnections > 0 {
		c.Server.MaxConnections = maxConnections
	}
	if autopilot {
		c.Server.Autopilot = true
	}

	hub, err := server.NewHub(server.HubOptions{Config: c})
	if err != nil {
		log.Fatal("hub error: ", err)
	}

	go hub.Run()

	if port < 0 {
		log.Println("terrain simulation started")
		// Block forever
		<-make(chan struct{})
	}

	log.Printf("terrain server started on http://localhost:%d\n", port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)
	http.HandleFunc("/chunk.png", hub.ServeChunkImage)

	l, err := net.Listen("tcp", fmt.Sprint(":", port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, c.Server.MaxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
