// Package main is the entry point for the ym2151tone API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/ym2151tone/pkg/api"
	"github.com/james-see/ym2151tone/pkg/debug"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	debugFile := flag.String("debug-file", "", "Log requests and codec errors to this path")
	flag.Parse()

	if err := run(*port, *debugFile); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(port int, debugFile string) error {
	if debugFile != "" {
		if err := debug.Enable(debugFile); err != nil {
			return fmt.Errorf("failed to enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	fmt.Printf("Starting ym2151tone API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)

	return api.StartServer(port)
}
