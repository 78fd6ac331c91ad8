package main

import (
	"context"
	"flag"
	"log"

	"podpress/internal/config"
	"podpress/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	socketPath := flag.String("socket", "", "control socket path override")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		SocketPath: *socketPath,
		LogLevel:   *logLevel,
	}); err != nil {
		log.Fatalf("podpressd: %v", err)
	}
}
