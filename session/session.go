package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/pod-racer/bot"
	"github.com/a-bouts/pod-racer/genetic"
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/race"
)

const (
	DefaultTTL    = 10 * time.Minute
	evictInterval = 30
)

var ErrNotFound = errors.New("session not found")

type Notifier interface {
	Send(message string) error
}

// Result is what a served turn answers
type Result struct {
	Turn        int
	Commands    [race.PodsPerSide]string
	Generations int
	Simulations uint64
	Plan        genetic.Genome
}

// Session is one race played through the api, with its own planner
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	bot      *bot.Bot
	engine   *genetic.Engine
	clock    genetic.Clock
	lastSeen time.Time
}

func (s *Session) Turn(records [2 * race.PodsPerSide]pod.Telemetry) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	commands := s.bot.Turn(records)
	stats := s.engine.Stats()
	s.lastSeen = s.clock.Now()

	return Result{
		Turn:        s.bot.Turns() - 1,
		Commands:    commands,
		Generations: stats.Generations,
		Simulations: stats.Simulations,
		Plan:        s.bot.Plan(),
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	leader := s.bot.State().Leader()
	return fmt.Sprintf("Session %s : %d turns, %d/%d checkpoints", s.ID, s.bot.Turns(), leader.Next, s.bot.State().Course.Total())
}

type Options struct {
	TTL     time.Duration
	Genetic genetic.Options
	Bot     bot.Options
}

// Store keeps the running sessions in memory, idle ones are evicted
type Store struct {
	opts     Options
	clock    genetic.Clock
	notifier Notifier

	sessions map[string]*Session
	lock     sync.RWMutex

	stopped chan bool
}

func NewStore(opts Options, clock genetic.Clock, notifier Notifier) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return &Store{
		opts:     opts,
		clock:    clock,
		notifier: notifier,
		sessions: make(map[string]*Session),
	}
}

// Create starts a planner for the course. The seed makes the search reproducible.
func (s *Store) Create(course race.Course, seed int64) *Session {
	engine := genetic.NewEngine(s.opts.Genetic, rand.New(rand.NewSource(seed)))
	now := s.clock.Now()

	session := &Session{
		ID:       ksuid.New().String(),
		Created:  now,
		bot:      bot.New(course, engine, s.clock, s.opts.Bot),
		engine:   engine,
		clock:    s.clock,
		lastSeen: now,
	}

	s.lock.Lock()
	s.sessions[session.ID] = session
	s.lock.Unlock()

	log.Debugf("Session %s created (%d checkpoints, %d laps)", session.ID, course.Len(), course.Laps)

	return session
}

func (s *Store) Get(id string) (*Session, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	session, found := s.sessions[id]
	if !found {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *Store) Delete(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.sessions[id]; !found {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.sessions)
}

// Evict drops the sessions idle for longer than the ttl and returns how many.
// Sessions are checked outside of the store lock, so a running turn only
// delays the eviction job.
func (s *Store) Evict() int {
	now := s.clock.Now()

	s.lock.RLock()
	candidates := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		candidates = append(candidates, session)
	}
	s.lock.RUnlock()

	var idle []*Session
	for _, session := range candidates {
		if now.Sub(session.idleSince()) > s.opts.TTL {
			idle = append(idle, session)
		}
	}

	var evicted []*Session
	s.lock.Lock()
	for _, session := range idle {
		if s.sessions[session.ID] == session {
			evicted = append(evicted, session)
			delete(s.sessions, session.ID)
		}
	}
	s.lock.Unlock()

	for _, session := range evicted {
		message := session.summary()
		log.Info(message)
		if s.notifier != nil {
			if err := s.notifier.Send(message); err != nil {
				log.Warnf("Unable to notify eviction of %s : %v", session.ID, err)
			}
		}
	}

	return len(evicted)
}

// Start schedules the eviction job
func (s *Store) Start() {
	scheduler := gocron.NewScheduler()
	job := scheduler.Every(evictInterval).Seconds()
	job.Do(s.Evict)

	s.stopped = scheduler.Start()
}

func (s *Store) Stop() {
	if s.stopped != nil {
		close(s.stopped)
		s.stopped = nil
	}
}
