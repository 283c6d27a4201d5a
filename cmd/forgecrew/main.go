// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"forgecrew/internal/agent"
	"forgecrew/internal/artifact"
	"forgecrew/internal/config"
	"forgecrew/internal/crew"
	"forgecrew/internal/deploy"
	"forgecrew/internal/pipeline"
	"forgecrew/internal/repair"
	"forgecrew/internal/smoketest"
)

const version = "0.1.0"

func main() {
	setupLogging()

	fmt.Printf("Forgecrew v%s - Multi-Agent App Generator\n", version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Forgecrew version %s\n", version)
		return
	case "help":
		printUsage()
		return
	}

	// Every remaining command needs configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Printf("\n✓ Project: %s\n", cfg.Project.Name)
	fmt.Printf("✓ Output Directory: %s\n\n", cfg.Project.OutputDir)

	switch command {
	case "setup":
		handleSetup(cfg)
	case "run":
		handleRun(cfg)
	case "validate":
		handleValidate(cfg)
	case "repair":
		handleRepair(cfg)
	case "smoke":
		handleSmoke(cfg)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setupLogging() {
	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func handleSetup(cfg *config.Config) {
	fmt.Println("🔧 Pre-Flight Setup")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for _, dir := range []string{"docs", "backend", "frontend", "tests", "deploy"} {
		path := filepath.Join(cfg.Project.OutputDir, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			log.Fatalf("Failed to create output directory %s: %v", path, err)
		}
		fmt.Printf("✓ %s\n", path)
	}

	// Docker is only needed for deployment, so an unreachable daemon is a
	// warning here rather than a failure.
	dm, err := deploy.NewDockerManager()
	if err != nil {
		fmt.Printf("⚠️  Docker client unavailable: %v\n", err)
	} else {
		defer dm.Close()
		ctx := context.Background()
		if err := dm.Ping(ctx); err != nil {
			fmt.Printf("⚠️  Docker daemon unreachable: %v\n", err)
		} else {
			fmt.Println("✓ Docker daemon reachable")
			cleanupStaleContainers(ctx, dm, cfg.Project.Name)
		}
	}

	fmt.Println("\n✅ Setup complete")
}

// cleanupStaleContainers removes containers a previous deployment of the
// generated app may have left behind, by their compose-default names.
func cleanupStaleContainers(ctx context.Context, dm *deploy.DockerManager, project string) {
	for _, name := range []string{project + "-backend-1", project + "-frontend-1"} {
		running, err := dm.IsContainerRunning(ctx, name)
		if err != nil {
			fmt.Printf("⚠️  Could not inspect container %s: %v\n", name, err)
			continue
		}
		if !running {
			continue
		}
		if err := dm.StopAndRemoveContainer(ctx, name); err != nil {
			fmt.Printf("⚠️  Could not remove stale container %s: %v\n", name, err)
			continue
		}
		fmt.Printf("✓ Removed stale container %s\n", name)
	}
}

func handleRun(cfg *config.Config) {
	fmt.Println("🚀 Generating Application")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	agents := crew.Agents(cfg)
	tasks := crew.Plan(agents)
	client := agent.NewClient(cfg.Model.BaseURL)
	runner := pipeline.NewRunner(client, cfg.Generation.RunDeadline(), slog.Default())

	result, err := runner.Run(context.Background(), tasks)
	if err != nil {
		log.Fatalf("Pipeline failed to start: %v", err)
	}

	fmt.Println("\n📊 Task Results")
	for _, name := range result.Order {
		tr := result.Results[name]
		if tr.Success {
			fmt.Printf("  ✅ %s (%d attempt(s), %s)\n", name, tr.Attempts, tr.Duration.Round(time.Millisecond))
		} else {
			fmt.Printf("  ❌ %s: %s\n", name, tr.Err)
		}
	}

	report := artifact.Validate(cfg.Project.OutputDir, artifact.Manifest())
	printReport(report)

	status := result.Status(report.OK())
	fmt.Printf("\n📋 Run status: %s (elapsed %s)\n", status, result.Elapsed.Round(time.Millisecond))

	if status != pipeline.StatusCompleteSuccess {
		fmt.Println("\n🔧 Applying post-generation repairs...")
		runRepairs(cfg.Project.OutputDir)
		os.Exit(1)
	}
	fmt.Println("\n✅ Generation complete")
}

func handleValidate(cfg *config.Config) {
	fmt.Println("🔍 Validating Artifacts")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	report := artifact.Validate(cfg.Project.OutputDir, artifact.Manifest())
	printReport(report)

	if !report.OK() {
		fmt.Println("\n❌ Validation failed: critical artifacts missing")
		os.Exit(1)
	}
	fmt.Println("\n✅ All critical artifacts present")
}

func handleRepair(cfg *config.Config) {
	fmt.Println("🔧 Post-Generation Repairs")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	runRepairs(cfg.Project.OutputDir)
	fmt.Println("\n✅ Repairs complete")
}

func handleSmoke(cfg *config.Config) {
	fmt.Println("🧪 Smoke Tests")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// A containerized deployment from an earlier run would hold the backend
	// port the liveness layer wants.
	if dm, err := deploy.NewDockerManager(); err == nil {
		defer dm.Close()
		if ctx := context.Background(); dm.Ping(ctx) == nil {
			cleanupStaleContainers(ctx, dm, cfg.Project.Name)
		}
	}

	harness := smoketest.NewHarness(smoketest.Options{
		Root:         cfg.Project.OutputDir,
		Python:       cfg.Smoke.Python,
		BackendPort:  cfg.Smoke.BackendPort,
		ProbeRetries: cfg.Smoke.ProbeRetries,
		ProbeTimeout: cfg.Smoke.ProbeTimeout(),
		Logger:       slog.Default(),
	})

	results, passed := harness.Run(context.Background())

	fmt.Println()
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
		}
		fmt.Printf("  %s %s\n", mark, r.Layer)
		for _, d := range r.Details {
			fmt.Printf("      %s\n", d)
		}
	}

	if !passed {
		fmt.Println("\n❌ Smoke tests failed")
		os.Exit(1)
	}
	fmt.Println("\n✅ All smoke tests passed")
}

func runRepairs(root string) {
	outcomes, err := repair.NewEngine().Run(root)
	for _, o := range outcomes {
		switch {
		case o.Changed:
			fmt.Printf("  🔧 %s: %s\n", o.Fixer, o.Detail)
		case o.Skipped:
			fmt.Printf("  ⏭️  %s: %s\n", o.Fixer, o.Detail)
		default:
			fmt.Printf("  ✓ %s: no changes needed\n", o.Fixer)
		}
	}
	if err != nil {
		log.Fatalf("Repair engine failed: %v", err)
	}
}

func printReport(report artifact.Report) {
	fmt.Printf("\n📁 Artifacts: %d present, %d critical missing, %d optional missing\n",
		len(report.Present), len(report.MissingCritical), len(report.MissingOptional))
	for _, s := range report.MissingCritical {
		fmt.Printf("  ❌ CRITICAL missing: %s (%s)\n", s.Artifact.Path, s.Artifact.Description)
	}
	for _, s := range report.MissingOptional {
		fmt.Printf("  ⚠️  optional missing: %s (%s)\n", s.Artifact.Path, s.Artifact.Description)
	}
}

func printUsage() {
	fmt.Println("Usage: forgecrew <command>")
	fmt.Println("\nCommands:")
	fmt.Println("  setup     Create output directories and probe the environment")
	fmt.Println("  run       Execute the generation pipeline and validate outputs")
	fmt.Println("  validate  Check generated artifacts against the manifest")
	fmt.Println("  repair    Apply post-generation fixes to the generated code")
	fmt.Println("  smoke     Run the smoke test harness on the generated app")
	fmt.Println("  version   Show version information")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  forgecrew setup")
	fmt.Println("  forgecrew run")
	fmt.Println("  forgecrew smoke")
}
