// File path: cmd/courseagent/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aastha-batta/course-agent/internal/api"
	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/llm"
	"github.com/aastha-batta/course-agent/internal/research"
	"github.com/aastha-batta/course-agent/internal/task"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("courseagent: .env file not loaded", "error", err)
	} else {
		logger.Info("courseagent: environment loaded from .env")
	}

	addr := flag.String("addr", ":5000", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite task database")
	outputDir := flag.String("output", defaultOutputDir(), "directory for generated course documents")
	flag.Parse()

	logger.Info("courseagent: startup initiated", "addr", *addr, "db", *dbPath, "output", *outputDir)

	provider := llm.NewProvider(ctx)
	logger.Info("courseagent: llm provider ready", "provider", provider.Name())

	gateway := research.NewService()

	store, err := task.Open(*dbPath)
	if err != nil {
		logger.Error("courseagent: task store open failed", "error", err)
		fmt.Println("task store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	manager, err := task.NewManager(store, provider, gateway, *outputDir)
	if err != nil {
		logger.Error("courseagent: manager construction failed", "error", err)
		fmt.Println("manager error:", err)
		os.Exit(1)
	}

	server, err := api.NewServer(manager)
	if err != nil {
		logger.Error("courseagent: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("courseagent: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("courseagent: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("courseagent: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDBPath() string {
	if env := strings.TrimSpace(os.Getenv("COURSE_DB_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "tasks.db")
}

func defaultOutputDir() string {
	if env := strings.TrimSpace(os.Getenv("COURSE_OUTPUT_DIR")); env != "" {
		return env
	}
	return "output"
}
