/*
 * Web server - blocklist toggle web API
 *
 * Copyright 2026 Marco Confalonieri.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"opnsense-blocklist/cmd/webserver/init/blocklist"
	"opnsense-blocklist/cmd/webserver/init/configuration"
	webserver "opnsense-blocklist/cmd/webserver/init/server"
	"opnsense-blocklist/internal/logging"
	"opnsense-blocklist/internal/metrics"
	"opnsense-blocklist/internal/server"
	"opnsense-blocklist/internal/webapi"

	log "github.com/sirupsen/logrus"
)

const banner = `
  ___  ___ _  _
 / _ \| _ \ \| |___ ___ _ _  ___ ___
| (_) |  _/ .  (_-</ -_) ' \(_-</ -_)
 \___/|_| |_|\_/__/\___|_||_/__/\___|
 opnsense blocklist web server
 version: %s (%s)

`

var (
	Version = "local"
	Gitsha  = "?"
)

var (
	// notify requires the SIGINT and SIGTERM signals to be sent to the caller.
	notify = func(sig chan os.Signal) {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	}
)

// healthStatus is the interface used by waitForSignal.
type healthStatus interface {
	SetHealthy(bool)
	SetReady(bool)
}

// waitForSignal waits for a SIGTERM or a SIGINT and then marks the server
// as not healthy and not ready.
func waitForSignal(status healthStatus) {
	exitSignal := make(chan os.Signal, 1)
	notify(exitSignal)
	signal := <-exitSignal

	log.Infof("Signal %s received. Shutting down the web server.", signal.String())
	status.SetHealthy(false)
	status.SetReady(false)
}

func main() {
	fmt.Printf(banner, Version, Gitsha)
	if err := logging.Init(os.Stderr); err != nil {
		log.Fatal(err)
	}

	config := configuration.Init()
	socketOptions, err := server.NewSocketOptions()
	if err != nil {
		log.Fatal(err)
	}

	// Start the metrics and probes socket
	status := &server.Status{}
	metricsSocket := server.NewMetricsSocket(status, metrics.GetOpenMetricsInstance().GetRegistry())
	startedChan := make(chan struct{})
	go metricsSocket.Start(startedChan, *socketOptions)
	<-startedChan

	api, opnsenseConfig, err := blocklist.Init()
	if err != nil {
		log.Fatal(err)
	}

	srv := webserver.Init(config, webapi.New(api, opnsenseConfig.Host))
	status.SetHealthy(true)
	status.SetReady(true)

	// Loops until a signal tells us to exit
	waitForSignal(status)
	webserver.Shutdown(srv)
}
