package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-bouts/pod-racer/bot"
	"github.com/a-bouts/pod-racer/genetic"
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/race"
	"github.com/a-bouts/pod-racer/vector"
)

// tickClock moves forward on every read so that searches always end
type tickClock struct {
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// gateClock holds the first read made after hold until release is closed
type gateClock struct {
	mu      sync.Mutex
	now     time.Time
	gate    chan struct{}
	entered chan struct{}
}

func (c *gateClock) hold() (release, entered chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
	c.entered = make(chan struct{})
	return c.gate, c.entered
}

func (c *gateClock) Now() time.Time {
	c.mu.Lock()
	gate, entered := c.gate, c.entered
	c.gate = nil
	c.now = c.now.Add(time.Millisecond)
	now := c.now
	c.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	return now
}

type recorder struct {
	messages []string
	err      error
}

func (r *recorder) Send(message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

var course = race.NewCourse(2, []vector.Vector{{X: 8000, Y: 4500}, {X: 1000, Y: 2000}})

var records = [4]pod.Telemetry{
	{X: 0, Y: 0, Heading: pod.UnknownHeading},
	{X: 500, Y: 0, Heading: 0},
	{X: 0, Y: 1000, Heading: pod.UnknownHeading},
	{X: 500, Y: 1000, Heading: pod.UnknownHeading},
}

func newStore(n Notifier) (*Store, *tickClock) {
	clock := &tickClock{now: time.Unix(0, 0)}
	opts := Options{
		TTL:     time.Minute,
		Genetic: genetic.DefaultOptions(),
		Bot:     bot.Options{FirstTurn: 20 * time.Millisecond, Turn: 5 * time.Millisecond},
	}
	return NewStore(opts, clock, n), clock
}

func TestCreateAndTurn(t *testing.T) {
	s, _ := newStore(nil)

	session := s.Create(course, 1)
	if session.ID == "" {
		t.Fatalf("Create() returned an empty id")
	}

	got, err := s.Get(session.ID)
	if err != nil || got != session {
		t.Fatalf("Get(%s) = %v, %v; want the created session", session.ID, got, err)
	}

	res := session.Turn(records)
	if res.Turn != 0 || res.Commands[0] != "1000 2000 100" {
		t.Errorf("Turn() = %+v; want turn 0 rushing to the second checkpoint", res)
	}
	if len(res.Plan) != genetic.DefaultHorizon {
		t.Errorf("len(Turn().Plan) = %d; want %d", len(res.Plan), genetic.DefaultHorizon)
	}
	if res.Generations == 0 {
		t.Errorf("Turn().Generations = 0; want some")
	}

	res = session.Turn(records)
	if res.Turn != 1 {
		t.Errorf("Turn().Turn = %d; want 1", res.Turn)
	}
}

func TestDelete(t *testing.T) {
	s, _ := newStore(nil)
	session := s.Create(course, 1)

	if err := s.Delete(session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v; want ErrNotFound", err)
	}
	if err := s.Delete(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v; want ErrNotFound", err)
	}
}

func TestEvict(t *testing.T) {
	r := &recorder{err: errors.New("offline")}
	s, clock := newStore(r)

	idle := s.Create(course, 1)
	clock.now = clock.now.Add(2 * time.Minute)
	active := s.Create(course, 2)
	active.Turn(records)

	if n := s.Evict(); n != 1 {
		t.Fatalf("Evict() = %d; want 1", n)
	}
	if _, err := s.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(idle) error = %v; want ErrNotFound", err)
	}
	if _, err := s.Get(active.ID); err != nil {
		t.Errorf("Get(active) error = %v; want nil", err)
	}
	if len(r.messages) != 1 || !strings.Contains(r.messages[0], idle.ID) {
		t.Errorf("notifications = %v; want one about %s", r.messages, idle.ID)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d; want 1", s.Len())
	}
}

func TestEvictDuringTurn(t *testing.T) {
	clock := &gateClock{now: time.Unix(0, 0)}
	s := NewStore(Options{
		TTL:     time.Minute,
		Genetic: genetic.DefaultOptions(),
		Bot:     bot.Options{FirstTurn: 20 * time.Millisecond, Turn: 5 * time.Millisecond},
	}, clock, nil)

	busy := s.Create(course, 1)
	other := s.Create(course, 2)

	release, entered := clock.hold()
	turned := make(chan struct{})
	go func() {
		busy.Turn(records)
		close(turned)
	}()
	<-entered

	evicted := make(chan int)
	go func() {
		evicted <- s.Evict()
	}()
	time.Sleep(20 * time.Millisecond)

	got := make(chan error)
	go func() {
		_, err := s.Get(other.ID)
		got <- err
	}()

	var err error
	blocked := false
	select {
	case err = <-got:
	case <-time.After(time.Second):
		blocked = true
	}

	close(release)
	<-turned
	if n := <-evicted; n != 0 {
		t.Errorf("Evict() = %d; want 0", n)
	}

	if blocked {
		<-got
		t.Fatalf("Get(%s) waited for the running turn", other.ID)
	}
	if err != nil {
		t.Errorf("Get(%s) error = %v; want nil", other.ID, err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d; want 2", s.Len())
	}
}
