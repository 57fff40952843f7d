package sat

// Options groups the solver parameters. The defaults follow the usual CDCL
// values; RandomVarFreq and RandomSeed are kept even though random branching
// is disabled in the mining search.
type Options struct {
	VarDecay      float64 // variable activity decay per conflict
	ClauseDecay   float64 // clause activity decay
	RandomVarFreq float64 // probability of a random branch
	RandomSeed    float64 // PRNG seed for random branching / initial activities
	CcminMode     int     // conflict clause minimization (0=none, 1=basic, 2=deep)
	PhaseSaving   int     // phase saving level (0=none, 1=limited, 2=full)
	RndInitAct    bool    // randomize initial variable activity
	LubyRestart   bool    // Luby vs geometric restart sequence
	RestartFirst  int     // base restart interval in conflicts
	RestartInc    float64 // restart interval growth factor
	GarbageFrac   float64 // wasted fraction triggering garbage collection
	Verbosity     int
}

var DefaultOptions = Options{
	VarDecay:      0.95,
	ClauseDecay:   0.999,
	RandomVarFreq: 0,
	RandomSeed:    91648253,
	CcminMode:     2,
	PhaseSaving:   2,
	RndInitAct:    false,
	LubyRestart:   true,
	RestartFirst:  100,
	RestartInc:    2,
	GarbageFrac:   0.20,
	Verbosity:     1,
}
