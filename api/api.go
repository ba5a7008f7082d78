package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/a-bouts/pod-racer/api/model"
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/race"
	"github.com/a-bouts/pod-racer/session"
)

const msgpackContentType = "application/msgpack"

type server struct {
	cpuprofile   bool
	startProfile func(options ...func(*profile.Profile)) interface{ Stop() }
	// only one cpu profile can run in the process
	profiling sync.Mutex

	sessions *session.Store
}

func InitServer(cpuprofile bool, sessions *session.Store) http.Handler {

	router := mux.NewRouter().StrictSlash(true)

	s := &server{
		cpuprofile:   cpuprofile,
		startProfile: profile.Start,
		sessions:     sessions,
	}

	router.HandleFunc("/racer/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/racer/api/v1").Subrouter()
	apiV1.HandleFunc("/sessions", s.createSession).Methods(http.MethodPost)
	apiV1.HandleFunc("/sessions/{id}/turns", s.turn).Methods(http.MethodPost)
	apiV1.HandleFunc("/sessions/{id}", s.deleteSession).Methods(http.MethodDelete)
	apiV1.HandleFunc("/simulate", s.simulate).Methods(http.MethodPost)

	access := log.StandardLogger().WriterLevel(log.DebugLevel)

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CombinedLoggingHandler(access, router))
}

func respond(w http.ResponseWriter, req *http.Request, status int, v interface{}) {
	if strings.Contains(req.Header.Get("Accept"), msgpackContentType) {
		w.Header().Set("Content-Type", msgpackContentType)
		w.WriteHeader(status)
		if err := msgpack.NewEncoder(w).Encode(v); err != nil {
			log.Errorf("Unable to encode response : %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Unable to encode response : %v", err)
	}
}

func requestLogger(action string, req *http.Request) *log.Entry {
	fields := log.Fields{
		"action": action,
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	return log.WithFields(fields)
}

// profile starts a cpu profile unless one is already running and returns its stop
func (s *server) profile() func() {
	if !s.cpuprofile || !s.profiling.TryLock() {
		return func() {}
	}

	p := s.startProfile(profile.CPUProfile, profile.Quiet)
	return func() {
		p.Stop()
		s.profiling.Unlock()
	}
}

func (s *server) healthz(w http.ResponseWriter, req *http.Request) {
	type health struct {
		Status string `json:"status" msgpack:"status"`
	}

	respond(w, req, http.StatusOK, health{Status: "Ok"})
}

func (s *server) createSession(w http.ResponseWriter, req *http.Request) {
	var c model.Course
	if err := json.NewDecoder(req.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(c.Checkpoints) == 0 || c.Laps <= 0 {
		http.Error(w, "a course needs checkpoints and laps", http.StatusBadRequest)
		return
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	created := s.sessions.Create(race.NewCourse(c.Laps, c.Checkpoints), seed)
	requestLogger("session", req).Infof("Session %s : %d laps on %d checkpoints", created.ID, c.Laps, len(c.Checkpoints))

	respond(w, req, http.StatusCreated, model.Session{ID: created.ID})
}

func (s *server) turn(w http.ResponseWriter, req *http.Request) {
	defer s.profile()()

	id := mux.Vars(req)["id"]
	current, err := s.sessions.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var t model.Turn
	if err := json.NewDecoder(req.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(t.Pods) != 2*race.PodsPerSide {
		http.Error(w, fmt.Sprintf("got %d pods, want %d", len(t.Pods), 2*race.PodsPerSide), http.StatusBadRequest)
		return
	}

	var records [2 * race.PodsPerSide]pod.Telemetry
	copy(records[:], t.Pods)

	start := time.Now()
	res := current.Turn(records)
	requestLogger("turn", req).Debugf("Session %s turn %d took %s (%d generations)", id, res.Turn, time.Since(start), res.Generations)

	respond(w, req, http.StatusOK, model.TurnResult{
		Turn:        res.Turn,
		Commands:    res.Commands[:],
		Generations: res.Generations,
		Simulations: res.Simulations,
		Best:        res.Plan,
	})
}

func (s *server) deleteSession(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	if err := s.sessions.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	requestLogger("session", req).Infof("Session %s deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// simulate plays a list of controls through the physics, without any search
func (s *server) simulate(w http.ResponseWriter, req *http.Request) {
	var sim model.Simulation
	if err := json.NewDecoder(req.Body).Decode(&sim); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(sim.Checkpoints) == 0 {
		http.Error(w, "missing checkpoints", http.StatusBadRequest)
		return
	}

	course := race.NewCourse(1, sim.Checkpoints)
	trajectory := model.Trajectory{States: make([]pod.Pod, 0, len(sim.Controls))}

	p := sim.Pod
	for _, c := range sim.Controls {
		p = p.Simulate(c, course)
		trajectory.States = append(trajectory.States, p)
	}

	respond(w, req, http.StatusOK, trajectory)
}

func getIp(r *http.Request) (string, error) {
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	ips := r.Header.Get("X-FORWARDED-FOR")
	for _, ip := range strings.Split(ips, ",") {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}
