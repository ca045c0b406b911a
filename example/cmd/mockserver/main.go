// Standalone mock grades server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/gradeboard serve -c example/config.yaml --watch
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/gradeboard/example/internal/mockgrades"
)

func main() {
	fmt.Println("Mock grades server starting on :9999")
	fmt.Println("  /apiAlumnos.php  students with drifting grades")
	fmt.Println("  /apiBD.php       staff")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              ":9999",
		Handler:           mockgrades.New(slog.Default()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
