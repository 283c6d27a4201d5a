// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package main

import (
	"log"
	"os"

	"forgecrew/internal/agent"
	"forgecrew/internal/config"
	"forgecrew/internal/crew"
	"forgecrew/internal/workflow"
)

func main() {
	log.Println("🚀 Forgecrew Temporal Worker v0.1.0")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("❌ Failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalln("❌ Invalid configuration:", err)
	}

	client := agent.NewClient(cfg.Model.BaseURL)
	activities := workflow.NewGenerateActivities(client, crew.Agents(cfg))

	w, err := workflow.NewWorker(os.Getenv("TEMPORAL_HOST_PORT"), activities)
	if err != nil {
		log.Fatalln("❌ Unable to create Temporal worker:", err)
	}

	log.Println("✅ Connected to Temporal server")
	log.Println("⚙️  Worker listening on task queue:", workflow.TaskQueue)

	if err := w.Run(); err != nil {
		log.Fatalln("❌ Worker error:", err)
	}

	log.Println("✅ Worker stopped")
}
