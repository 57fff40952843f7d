package sat

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Cooperation carries the read-only database description shared by all
// solver instances of a portfolio, and the lock-protected channels through
// which they exchange learnt clauses and root-level unit literals. Solvers
// drain their channels between subtrees; the search loop itself never
// publishes to them (only exportShared does).
//
// Threads claim disjoint guiding-path indices (ind advances by NbThreads
// from the thread's own offset), so the sets of itemsets they report are
// disjoint by construction.
type Cooperation struct {
	MinSupp       int
	EnumClosed    bool
	NbThreads     int
	DivBegin      int
	MaxSharedSize int

	// Database description, supplied by the loader and never mutated once
	// the portfolio has started.
	Wocc             []int
	AppearTrans      [][]int
	ListTransactions [][]Literal
	WItemTrans       [][]int
	AllItems         []Literal

	Solvers []*Solver

	mu           sync.Mutex
	extraUnits   []*Queue[Literal]
	extraClauses []*Queue[[]Literal]
}

// NewCooperation returns a cooperation context for the given number of
// solver threads.
func NewCooperation(nbThreads int, minSupp int, closed bool) *Cooperation {
	if nbThreads < 1 {
		nbThreads = 1
	}
	c := &Cooperation{
		MinSupp:       minSupp,
		EnumClosed:    closed,
		NbThreads:     nbThreads,
		MaxSharedSize: 10,
	}
	for t := 0; t < nbThreads; t++ {
		c.extraUnits = append(c.extraUnits, NewQueue[Literal](64))
		c.extraClauses = append(c.extraClauses, NewQueue[[]Literal](64))
	}
	return c
}

// StartSolvers instantiates one solver per thread and encodes the database
// description in each of them.
func (c *Cooperation) StartSolvers(opts Options) {
	c.Solvers = nil
	for t := 0; t < c.NbThreads; t++ {
		s := NewSolver(opts, c, t)
		s.EncodeDB()
		c.Solvers = append(c.Solvers, s)
	}
}

// Solve runs every solver of the portfolio to completion, one goroutine per
// solver. It returns False when all partitions were fully enumerated and
// Unknown if any solver stopped on a budget or interrupt.
func (c *Cooperation) Solve() LBool {
	if c.NbThreads == 1 {
		return c.Solvers[0].Solve()
	}

	results := make([]LBool, c.NbThreads)
	g := errgroup.Group{}
	for t := range c.Solvers {
		t := t
		g.Go(func() error {
			results[t] = c.Solvers[t].Solve()
			return nil
		})
	}
	g.Wait()

	status := False
	for _, r := range results {
		if r == Unknown {
			status = Unknown
		}
	}
	return status
}

// Interrupt asks every solver to stop at its next safe point.
func (c *Cooperation) Interrupt() {
	for _, s := range c.Solvers {
		s.Interrupt()
	}
}

// AllModels returns the itemsets recorded by all solvers. The guiding-path
// partition guarantees the absence of duplicates.
func (c *Cooperation) AllModels() [][]int {
	models := [][]int{}
	for _, s := range c.Solvers {
		models = append(models, s.Models...)
	}
	return models
}

// TotalConflicts returns the conflict count summed over the portfolio.
func (c *Cooperation) TotalConflicts() int64 {
	n := int64(0)
	for _, s := range c.Solvers {
		n += s.Conflicts
	}
	return n
}

// limitSharedSize returns the maximum size of shared clauses; sharing is
// disabled when it is below 1.
func (c *Cooperation) limitSharedSize() int {
	return c.MaxSharedSize
}

// exportExtraUnit publishes a root-level unit literal to every other thread.
func (c *Cooperation) exportExtraUnit(from *Solver, l Literal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for t := 0; t < c.NbThreads; t++ {
		if t != from.threadID {
			c.extraUnits[t].Push(l)
		}
	}
}

// exportExtraClause publishes a learnt clause to every other thread,
// provided it is within the sharing size limit.
func (c *Cooperation) exportExtraClause(from *Solver, lits []Literal) {
	if c.limitSharedSize() < 1 || len(lits) > c.limitSharedSize() {
		return
	}
	shared := append([]Literal(nil), lits...)
	c.mu.Lock()
	defer c.mu.Unlock()
	for t := 0; t < c.NbThreads; t++ {
		if t != from.threadID {
			c.extraClauses[t].Push(shared)
		}
	}
}

// drainUnits moves the units addressed to thread t into out.
func (c *Cooperation) drainUnits(t int, out []Literal) []Literal {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.extraUnits[t].IsEmpty() {
		out = append(out, c.extraUnits[t].Pop())
	}
	return out
}

// drainClauses moves the clauses addressed to thread t into out.
func (c *Cooperation) drainClauses(t int, out [][]Literal) [][]Literal {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.extraClauses[t].IsEmpty() {
		out = append(out, c.extraClauses[t].Pop())
	}
	return out
}

// exportShared publishes the solver's newly fixed root-level literals, or
// the given learnt clause when the solver is deeper in the search.
func (s *Solver) exportShared(learnt []Literal) {
	if s.coop.limitSharedSize() < 1 {
		return
	}
	if s.decisionLevel() == 0 {
		for i := s.tailUnitLit; i < len(s.trail); i++ {
			s.coop.exportExtraUnit(s, s.trail[i])
		}
		s.tailUnitLit = len(s.trail)
	} else {
		s.coop.exportExtraClause(s, learnt)
	}
}

// importShared drains the clauses and units addressed to this solver. Must
// be called at the root level, outside propagation.
func (s *Solver) importShared() {
	if s.decisionLevel() != 0 {
		panic("shared clauses can only be imported at the root level")
	}
	s.extraUnits = s.coop.drainUnits(s.threadID, s.extraUnits[:0])
	for _, l := range s.extraUnits {
		if s.ValueLit(l) == Unknown {
			s.uncheckedEnqueue(l, ClauseRefUndef)
		}
	}

	for _, lits := range s.coop.drainClauses(s.threadID, nil) {
		s.addExtraClause(lits)
	}
}

// addExtraClause attaches a clause received from another thread as a learnt
// clause.
func (s *Solver) addExtraClause(lits []Literal) ClauseRef {
	cr := s.ca.Alloc(lits, true)
	s.learnts = append(s.learnts, cr)
	s.attachClause(cr)
	s.claBumpActivity(cr)
	return cr
}
