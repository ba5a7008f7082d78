package bot

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/pod-racer/genetic"
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/protocol"
	"github.com/a-bouts/pod-racer/race"
)

const (
	DefaultFirstTurn = 980 * time.Millisecond
	DefaultTurn      = 70 * time.Millisecond
)

// Options are the search budgets, kept below the referee hard limits
type Options struct {
	FirstTurn time.Duration
	Turn      time.Duration
}

func DefaultOptions() Options {
	return Options{FirstTurn: DefaultFirstTurn, Turn: DefaultTurn}
}

// Bot drives our two pods for the whole race
type Bot struct {
	opts   Options
	state  *race.State
	engine *genetic.Engine
	clock  genetic.Clock
	turn   int
	plan   genetic.Genome
}

func New(course race.Course, engine *genetic.Engine, clock genetic.Clock, opts Options) *Bot {
	if opts.FirstTurn <= 0 {
		opts.FirstTurn = DefaultFirstTurn
	}
	if opts.Turn <= 0 {
		opts.Turn = DefaultTurn
	}

	return &Bot{
		opts:   opts,
		state:  race.NewState(course),
		engine: engine,
		clock:  clock,
	}
}

func (b *Bot) State() *race.State {
	return b.state
}

// Plan is the genome chosen by the last turn, before it was shifted
func (b *Bot) Plan() genetic.Genome {
	return b.plan
}

// Turns is the number of turns already played
func (b *Bot) Turns() int {
	return b.turn
}

func (b *Bot) budget() time.Duration {
	if b.turn == 0 {
		return b.opts.FirstTurn
	}
	return b.opts.Turn
}

// Turn plans with the remaining budget and returns one command per pod
func (b *Bot) Turn(records [2 * race.PodsPerSide]pod.Telemetry) [race.PodsPerSide]string {
	start := b.clock.Now()
	deadline := start.Add(b.budget())

	b.state.Update(records)

	best := b.engine.Search(b.state, deadline, b.clock)
	stats := b.engine.Stats()
	b.plan = best.Clone()

	var commands [race.PodsPerSide]string
	if b.turn == 0 {
		// no plan exists before the heading is known : rush to the second checkpoint
		cp := b.state.Course.Checkpoint(1)
		commands[0] = fmt.Sprintf("%d %d %d", int(cp.X), int(cp.Y), int(pod.MaxThrust))
	} else {
		control := best[0].Decode(b.engine.Options().Shield)
		log.Debugf("Turn %d : %+v -> %+v", b.turn, b.state.Pods[0], control)
		commands[0] = b.state.Pods[0].Render(control)
	}
	commands[1] = b.state.Pods[1].Render(pod.Control{})

	log.WithFields(log.Fields{
		"turn":        b.turn,
		"generations": stats.Generations,
		"simulations": stats.Simulations,
	}).Debugf("Search took %s", b.clock.Now().Sub(start))

	b.engine.AdvanceTurn()
	b.turn++

	return commands
}

// Play reads the course then answers every turn until the referee stops
func Play(ctx context.Context, r *protocol.Reader, w *protocol.Writer, newBot func(race.Course) *Bot) error {
	course, err := r.ReadCourse()
	if err != nil {
		return err
	}
	log.Infof("Race of %d laps on %d checkpoints", course.Laps, course.Len())

	b := newBot(course)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		records, err := r.ReadTurn()
		if err == io.EOF {
			log.Infof("Race over after %d turns", b.Turns())
			return nil
		}
		if err != nil {
			return err
		}

		commands := b.Turn(records)
		if err := w.WriteCommands(commands[:]...); err != nil {
			return err
		}
	}
}
