package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yegors/airtraffic/internal/config"
	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/internal/storage/sqlite"
	"github.com/yegors/airtraffic/pkg/logger"
)

// rolloutOptions controls a batch of random-action episodes
type rolloutOptions struct {
	Episodes int
	Seed     uint64
}

// episodeResult summarizes one finished rollout episode
type episodeResult struct {
	Seed        uint64
	Ticks       int
	TotalReward float64
	Terminated  bool
	Landings    int
	Collisions  int
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file (optional - built-in defaults when no file is found)")
	episodes := flag.Int("episodes", 1, "Number of episodes to run")
	seed := flag.Uint64("seed", 0, "Seed of the first episode (0 = use the configured seed)")
	record := flag.Bool("record", false, "Record episodes to SQLite regardless of the storage setting")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	var opts []simulation.Option
	if cfg.Storage.Enabled || *record {
		if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0755); err != nil {
			log.Error("Failed to create database directory", logger.Error(err))
			return 1
		}
		storage, err := sqlite.NewEpisodeStorage(sqlite.DailyPath(cfg.Storage.SQLiteBasePath, time.Now()), cfg.Storage.RecordTicks, log)
		if err != nil {
			log.Error("Failed to create SQLite storage", logger.Error(err))
			return 1
		}
		defer storage.Close()
		opts = append(opts, simulation.WithRecorder(storage))
	}

	service, err := simulation.NewService(cfg.ToWorldConfig(), log, opts...)
	if err != nil {
		log.Error("Failed to create simulation service", logger.Error(err))
		return 1
	}
	defer service.Close()

	firstSeed := *seed
	if firstSeed == 0 {
		firstSeed = cfg.Simulation.Seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := runRollouts(ctx, service, rolloutOptions{Episodes: *episodes, Seed: firstSeed}, log)

	var total float64
	for _, r := range results {
		total += r.TotalReward
	}
	if len(results) > 0 {
		log.Info("Rollouts finished",
			logger.Int("episodes", len(results)),
			logger.Float64("mean_reward", total/float64(len(results))))
	}
	return 0
}

// loadConfig loads an explicit path strictly. Without one it searches the
// usual locations and falls back to the defaults only when none exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg, err := config.LoadWithFallback("")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// runRollouts plays opts.Episodes episodes with uniformly random commands for
// every roster slot. Episode i is seeded with opts.Seed+i.
func runRollouts(ctx context.Context, service *simulation.Service, opts rolloutOptions, log *logger.Logger) []episodeResult {
	maxPlanes := service.Config().MaxPlanes
	results := make([]episodeResult, 0, opts.Episodes)

	for i := 0; i < opts.Episodes; i++ {
		seed := opts.Seed + uint64(i)
		actions := rand.New(rand.NewPCG(seed, ^seed))
		service.Reset(seed)

		res := episodeResult{Seed: seed}
		for {
			if ctx.Err() != nil {
				log.Warn("Rollout interrupted", logger.Uint64("seed", seed), logger.Int("tick", res.Ticks))
				return results
			}

			step, err := service.Step(sampleCommands(actions, maxPlanes))
			if err != nil {
				log.Error("Step failed", logger.Error(err))
				return results
			}

			res.Ticks = step.Tick
			res.TotalReward += step.Reward
			for _, ev := range step.Events {
				switch ev.Kind {
				case simulation.EventLanded:
					res.Landings++
				case simulation.EventCollision:
					res.Collisions++
				}
			}

			if step.Terminated || step.Truncated {
				res.Terminated = step.Terminated
				break
			}
		}

		log.Info("Episode finished",
			logger.Uint64("seed", seed),
			logger.Int("ticks", res.Ticks),
			logger.Float64("total_reward", res.TotalReward),
			logger.Bool("terminated", res.Terminated),
			logger.Int("landings", res.Landings),
			logger.Int("collisions", res.Collisions))
		results = append(results, res)
	}

	return results
}

// sampleCommands draws one command per slot from the action box
func sampleCommands(rng *rand.Rand, n int) []simulation.Command {
	cmds := make([]simulation.Command, n)
	for i := range cmds {
		cmds[i] = simulation.Command{
			Heading:  rng.Float64()*2*math.Pi - math.Pi,
			Throttle: rng.Float64()*2 - 1,
		}
	}
	return cmds
}
