// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/uninett/connect-import-service/internal/config"
	"github.com/uninett/connect-import-service/internal/logging"
)

// flags are the command line flags for the import service.
type flags struct {
	Debug      bool
	Port       string
	Bind       string
	ConfigPath string
}

// parseFlags parses command line flags for the import service
func parseFlags() flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", "", "listen port (overrides PORT and the config file)")
	var bind = flag.String("bind", "", "interface to bind on (overrides BIND and the config file)")
	var configPath = flag.String("config", "", "path to a YAML config file")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug:      *debug,
		Port:       *port,
		Bind:       *bind,
		ConfigPath: *configPath,
	}
}

// apply lets explicitly given flags win over the loaded configuration.
func (f flags) apply(cfg *config.Config) {
	if f.Port != "" {
		cfg.Server.Port = f.Port
	}
	if f.Bind != "" {
		cfg.Server.Bind = f.Bind
	}
}

// listenAddr returns the address for the configured bind and port.
func listenAddr(server config.ServerConfig) string {
	if server.Bind == "*" || server.Bind == "" {
		return ":" + server.Port
	}
	return server.Bind + ":" + server.Port
}
