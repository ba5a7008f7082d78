package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/pod-racer/api"
	"github.com/a-bouts/pod-racer/bot"
	"github.com/a-bouts/pod-racer/genetic"
	"github.com/a-bouts/pod-racer/protocol"
	"github.com/a-bouts/pod-racer/race"
	"github.com/a-bouts/pod-racer/session"
	"github.com/a-bouts/pod-racer/xmpp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code once every deferred cleanup is done
func run(args []string) int {
	mode := "play"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("pod-racer", flag.ExitOnError)
	var (
		logLevel        = fs.String("log-level", "info", "panic, fatal, error, warn, info, debug or trace")
		seed            = fs.Int64("seed", 0, "random seed of the search, 0 for the current time")
		population      = fs.Int("population", genetic.DefaultPopulation, "genomes per generation")
		horizon         = fs.Int("horizon", genetic.DefaultHorizon, "turns planned by a genome")
		shield          = fs.Bool("shield", false, "let the planner use SHIELD")
		firstTurnBudget = fs.Duration("first-turn-budget", bot.DefaultFirstTurn, "search time of the first turn")
		turnBudget      = fs.Duration("turn-budget", bot.DefaultTurn, "search time of the next turns")
		cpuprofile      = fs.Bool("cpuprofile", false, "write a cpu profile")
		listen          = fs.String("listen", ":8888", "serve mode listen address")
		sessionTTL      = fs.Duration("session-ttl", session.DefaultTTL, "serve mode idle session lifetime")
		xmppHost        = fs.String("xmpp-host", "", "")
		xmppJid         = fs.String("xmpp-jid", "", "")
		xmppPassword    = fs.String("xmpp-password", "", "")
		xmppTo          = fs.String("xmpp-to", "", "")
		_               = fs.String("config", "", "config file")
	)
	if err := ff.Parse(fs, args,
		ff.WithEnvVarNoPrefix(),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		log.Fatal(err)
	}

	// stdout is the referee channel
	log.SetOutput(os.Stderr)
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	geneticOptions := genetic.Options{Population: *population, Horizon: *horizon, Shield: *shield}
	botOptions := bot.Options{FirstTurn: *firstTurnBudget, Turn: *turnBudget}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case "play":
		if *cpuprofile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
		}

		log.Debugf("Play with seed %d", *seed)
		newBot := func(course race.Course) *bot.Bot {
			engine := genetic.NewEngine(geneticOptions, rand.New(rand.NewSource(*seed)))
			return bot.New(course, engine, genetic.SystemClock{}, botOptions)
		}

		if err := bot.Play(ctx, protocol.NewReader(os.Stdin), protocol.NewWriter(os.Stdout), newBot); err != nil {
			log.Errorf("Race aborted : %v", err)
			return 1
		}

	case "serve":
		x := xmpp.Xmpp{Config: xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}}
		var notifier session.Notifier
		if x.Enabled() {
			notifier = x
		}

		store := session.NewStore(session.Options{TTL: *sessionTTL, Genetic: geneticOptions, Bot: botOptions}, genetic.SystemClock{}, notifier)
		store.Start()
		defer store.Stop()

		srv := &http.Server{Addr: *listen, Handler: api.InitServer(*cpuprofile, store)}
		go func() {
			<-ctx.Done()
			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdown); err != nil {
				log.Warnf("Unable to shutdown the server : %v", err)
			}
		}()

		log.Infof("Start server on %s", *listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err)
			return 1
		}

	default:
		log.Errorf("Unknown mode '%s', want play or serve", mode)
		return 2
	}

	return 0
}
