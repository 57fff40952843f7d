package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/amel-hidouri/satchuim/internal/sat"
	"github.com/amel-hidouri/satchuim/internal/tdb"
	"github.com/amel-hidouri/satchuim/mine"
)

var flagMinUtil = flag.Int(
	"minutil",
	1,
	"minimum utility an itemset must reach to be reported",
)

var flagClosed = flag.Int(
	"closed",
	1,
	"enumerate closed itemsets only (1) or all high-utility itemsets (0)",
)

var flagVerb = flag.Int(
	"verb",
	1,
	"verbosity: 1 = statistics only, 3 = also print one itemset per line",
)

var flagThreads = flag.Int(
	"threads",
	1,
	"number of solver instances run in parallel",
)

var flagMaxConflicts = flag.Int64(
	"max_conflicts",
	-1,
	"maximum number of conflicts per solver (-1 = no maximum)",
)

var flagVarDecay = flag.Float64(
	"var-decay",
	sat.DefaultOptions.VarDecay,
	"variable activity decay factor",
)

var flagClaDecay = flag.Float64(
	"cla-decay",
	sat.DefaultOptions.ClauseDecay,
	"clause activity decay factor",
)

var flagRndFreq = flag.Float64(
	"rnd-freq",
	sat.DefaultOptions.RandomVarFreq,
	"random branching frequency (accepted but unused: the decision heuristic never branches randomly)",
)

var flagRndSeed = flag.Float64(
	"rnd-seed",
	sat.DefaultOptions.RandomSeed,
	"seed of the pseudo-random generator used for random initial activities",
)

var flagCcminMode = flag.Int(
	"ccmin-mode",
	sat.DefaultOptions.CcminMode,
	"conflict clause minimization (0=none, 1=basic, 2=deep)",
)

var flagPhaseSaving = flag.Int(
	"phase-saving",
	sat.DefaultOptions.PhaseSaving,
	"phase saving level (0=none, 1=limited, 2=full)",
)

var flagLuby = flag.Bool(
	"luby",
	sat.DefaultOptions.LubyRestart,
	"use the Luby restart sequence",
)

var flagRestartFirst = flag.Int(
	"rfirst",
	sat.DefaultOptions.RestartFirst,
	"base restart interval",
)

var flagRestartInc = flag.Float64(
	"rinc",
	sat.DefaultOptions.RestartInc,
	"restart interval increase factor",
)

var flagGarbageFrac = flag.Float64(
	"gc-frac",
	sat.DefaultOptions.GarbageFrac,
	"fraction of wasted memory allowed before garbage collection",
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

type config struct {
	instanceFile string
	options      mine.Options
	verbosity    int
	maxConflicts int64
	cpuProfile   bool
	memProfile   bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing database file")
	}

	options := mine.Options{
		MinUtil: *flagMinUtil,
		Closed:  *flagClosed != 0,
		Threads: *flagThreads,
		Solver: sat.Options{
			VarDecay:      *flagVarDecay,
			ClauseDecay:   *flagClaDecay,
			RandomVarFreq: *flagRndFreq,
			RandomSeed:    *flagRndSeed,
			CcminMode:     *flagCcminMode,
			PhaseSaving:   *flagPhaseSaving,
			LubyRestart:   *flagLuby,
			RestartFirst:  *flagRestartFirst,
			RestartInc:    *flagRestartInc,
			GarbageFrac:   *flagGarbageFrac,
			Verbosity:     *flagVerb,
		},
	}

	return &config{
		instanceFile: flag.Arg(0),
		options:      options,
		verbosity:    *flagVerb,
		maxConflicts: *flagMaxConflicts,
		cpuProfile:   *flagCPUProfile,
		memProfile:   *flagMemProfile,
	}, nil
}

func run(cfg *config) error {
	db, err := tdb.Load(cfg.instanceFile)
	if err != nil {
		return fmt.Errorf("could not parse database: %w", err)
	}

	coop, err := mine.NewCooperation(db, cfg.options)
	if err != nil {
		return err
	}
	coop.StartSolvers(cfg.options.Solver)
	if cfg.maxConflicts >= 0 {
		for _, s := range coop.Solvers {
			s.SetConflictBudget(cfg.maxConflicts)
		}
	}

	t := time.Now()
	status := coop.Solve()
	elapsed := time.Since(t)

	coop.PrintStats(elapsed)
	if status == sat.Unknown {
		fmt.Println("c enumeration interrupted before completion")
	}

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
