package main

import (
	"flag"
	"log"
	"os"

	"FlowScan/internal/di"
	"FlowScan/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	once := flag.Bool("once", false, "run a single cycle and exit")
	mode := flag.String("mode", "", "scan mode override: flow or pattern")
	flag.Parse()

	// Load config, flags win over file and environment
	cfg, err := config.LoadWithOverrides(*configPath, func(c *config.Config) {
		if *once {
			c.Scheduler.Mode = config.ScheduleOnce
		}
		if *mode != "" {
			c.Scan.Mode = *mode
		}
	})
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s mode=%s schedule=%s source=%s workers=%d",
		cfg.Environment, cfg.Scan.Mode, cfg.Scheduler.Mode, cfg.Scan.UniverseSource, cfg.Scan.Workers)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal, or one cycle in once mode)
	err = app.Run()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
