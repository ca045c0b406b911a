// Package mockgrades serves fake student and staff rosters whose scores
// drift over time, for demos of the dashboard.
package mockgrades

import (
	"encoding/json"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type student struct {
	ID        int            `json:"id"`
	Nombre    string         `json:"nombre"`
	Practicas map[string]any `json:"practicas"`
}

type staffMember struct {
	ID       int    `json:"id"`
	Nombre   string `json:"nombre"`
	Sexo     string `json:"sexo"`
	Telefono string `json:"telefono"`
}

// Server holds the mutable rosters.
type Server struct {
	mu       sync.Mutex
	rng      *rand.Rand
	students []student
	staff    []staffMember
	logger   *slog.Logger
}

// New creates a server with a fixed starting roster.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}

	names := []string{"Ana", "Bruno", "Carla", "Diego", "Elena", "Fabián", "Gabriela", "Hugo"}
	for i, n := range names {
		p := map[string]any{}
		for j := 1; j <= 4; j++ {
			p["p"+strconv.Itoa(j)] = float64(4 + s.rng.Intn(7))
		}
		// a missing grade some rosters carry as text
		if i == 3 {
			p["p4"] = "n/a"
		}
		s.students = append(s.students, student{ID: 100 + i, Nombre: n, Practicas: p})
	}

	s.staff = []staffMember{
		{ID: 1, Nombre: "Marta Ruiz", Sexo: "F", Telefono: "555-0101"},
		{ID: 2, Nombre: "Jorge Paz", Sexo: "M", Telefono: "555-0102"},
		{ID: 3, Nombre: "Lucía Gómez", Sexo: "F", Telefono: "555-0103"},
		{ID: 4, Nombre: "Raúl Díaz", Sexo: "M", Telefono: "555-0104"},
		{ID: 5, Nombre: "Sofía León", Sexo: "F", Telefono: "555-0105"},
	}
	return s
}

// Handler returns the mux serving /apiAlumnos.php and /apiBD.php.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/apiAlumnos.php", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.drift()
		body, err := json.Marshal(s.students)
		s.mu.Unlock()
		s.write(w, body, err)
	})
	mux.HandleFunc("/apiBD.php", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		body, err := json.Marshal(s.staff)
		s.mu.Unlock()
		s.write(w, body, err)
	})
	return mux
}

// drift nudges one numeric grade of one student by ±1, clamped to 0..10.
func (s *Server) drift() {
	st := s.students[s.rng.Intn(len(s.students))]
	key := "p" + strconv.Itoa(1+s.rng.Intn(4))
	v, ok := st.Practicas[key].(float64)
	if !ok {
		return
	}
	next := math.Max(0, math.Min(10, v+float64(s.rng.Intn(3)-1)))
	if next != v {
		st.Practicas[key] = next
		s.logger.Info("grade changed", "student", st.Nombre, "item", key, "from", v, "to", next)
	}
}

func (s *Server) write(w http.ResponseWriter, body []byte, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// simulate small latency variance
	time.Sleep(time.Duration(50+s.rng.Intn(150)) * time.Millisecond)
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
