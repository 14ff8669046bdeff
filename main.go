package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/athapong/contract-intel/prompts"
	"github.com/athapong/contract-intel/restapi"
	"github.com/athapong/contract-intel/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	enableSSE := flag.Bool("sse", false, "Enable SSE server")
	sseAddr := flag.String("sse-addr", ":8080", "Address for SSE server to listen on")
	sseBasePath := flag.String("sse-base-path", "/mcp", "Base path for SSE endpoints")
	httpAddr := flag.String("http", "", "Address for the REST API server, e.g. :8090 (disabled when empty)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Error loading env file %s: %v\n", *envFile, err)
	}

	mcpServer := server.NewMCPServer(
		"contract-intel",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	tools.RegisterToolManagerTool(mcpServer)

	enableTools := strings.Split(os.Getenv("ENABLE_TOOLS"), ",")
	allToolsEnabled := len(enableTools) == 1 && enableTools[0] == ""

	isEnabled := func(toolName string) bool {
		return allToolsEnabled || slices.Contains(enableTools, toolName)
	}

	if isEnabled("contract") {
		tools.RegisterContractTools(mcpServer)
	}

	if isEnabled("fetch") {
		tools.RegisterFetchTool(mcpServer)
	}

	if isEnabled("assistant") {
		tools.RegisterAssistantTools(mcpServer)
	}

	if isEnabled("clause_library") {
		tools.RegisterClauseLibraryTools(mcpServer)
	}

	prompts.RegisterReviewPrompts(mcpServer)

	// Optional REST surface sharing the pipeline and store with the tools.
	var httpServer *http.Server
	if *httpAddr != "" {
		restServer := restapi.NewServer(tools.AnalysisPipeline(), tools.ReportStore())
		httpServer = &http.Server{
			Addr:    *httpAddr,
			Handler: restServer.Router(),
		}

		go func() {
			log.Printf("Starting REST API server on %s", *httpAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start REST API server: %v", err)
			}
		}()
	}

	if *enableSSE || os.Getenv("ENABLE_SSE") == "true" {
		sseServer := server.NewSSEServer(
			mcpServer,
			server.WithBasePath(*sseBasePath),
			server.WithKeepAlive(true),
		)

		go func() {
			log.Printf("Starting SSE server on %s with base path %s", *sseAddr, *sseBasePath)
			if err := sseServer.Start(*sseAddr); err != nil {
				log.Fatalf("Failed to start SSE server: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sseServer.Shutdown(ctx); err != nil {
			log.Printf("Error during SSE server shutdown: %v", err)
		}
		shutdownHTTP(httpServer)
		log.Println("Shutdown complete")
	} else if *httpAddr != "" && os.Getenv("DISABLE_STDIO") == "true" {
		// REST only: block until a termination signal arrives.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)
		shutdownHTTP(httpServer)
	} else {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Fatalf("Server error: %v", err)
		}
		shutdownHTTP(httpServer)
	}
}

func shutdownHTTP(httpServer *http.Server) {
	if httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during REST API server shutdown: %v", err)
	}
}
