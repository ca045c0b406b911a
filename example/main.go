package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/gradeboard"
	"github.com/jpalmerr/gradeboard/example/internal/mockgrades"
)

func main() {
	go func() {
		srv := &http.Server{
			Addr:              ":9999",
			Handler:           mockgrades.New(slog.Default()).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	alumnos, err := gradeboard.NewSource("alumnos", "http://localhost:9999/apiAlumnos.php", 7,
		gradeboard.WithFields(gradeboard.Fields{Name: "nombre", Scores: "practicas"}),
	)
	if err != nil {
		slog.Error("failed to create source", "error", err)
		os.Exit(1)
	}

	docentes, err := gradeboard.NewSource("docentes", "http://localhost:9999/apiBD.php", 0,
		gradeboard.WithFields(gradeboard.Fields{Name: "nombre"}),
		gradeboard.WithInterval(30*time.Second),
		gradeboard.WithPartition(gradeboard.FieldPartition("Distribution by sex", "sexo",
			gradeboard.Category{Value: "M", Label: "Masculino", Color: "#007bff"},
			gradeboard.Category{Value: "F", Label: "Femenino", Color: "#dc3545"},
		)),
	)
	if err != nil {
		slog.Error("failed to create source", "error", err)
		os.Exit(1)
	}

	b, err := gradeboard.New(
		gradeboard.WithSources(alumnos, docentes),
		gradeboard.WithRefreshInterval(5*time.Second),
		gradeboard.WithPort(8080),
		gradeboard.WithTitle("GradeBoard Demo"),
		gradeboard.WithUpdateCallback(func(s gradeboard.Snapshot) {
			if s.Source == "alumnos" && s.Failed > 0 {
				slog.Info("students below threshold", "failed", s.Failed, "threshold", s.Threshold)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create board", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  GradeBoard Demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println("  Sources:")
	fmt.Println("    alumnos   students, threshold 7, every 5s")
	fmt.Println("    docentes  staff by sex, every 30s")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		slog.Error("gradeboard error", "error", err)
		os.Exit(1)
	}
}
