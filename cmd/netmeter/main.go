package main

import (
	"context"
	"log"

	"netmeter/internal/agent"
	"netmeter/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, release, err := agent.BuildLogger(cfg)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer release()

	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Error("netmeter initialization failed", "error", err)
		return
	}

	if err := a.Run(context.Background()); err != nil {
		logger.Error("netmeter runtime failed", "error", err)
	}
}
