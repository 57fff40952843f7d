package sat

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// varData pairs the clause that implied a variable's assignment with the
// decision level at which it was assigned.
type varData struct {
	reason ClauseRef
	level  int
}

// Solver is a CDCL engine specialized for high-utility itemset enumeration.
// Variables are split in three contiguous ranges: [0, nbItems) are item
// variables (the only decision variables), [nbItems, nbItems+nbTrans) are
// transaction variables, and everything above is a witness variable carrying
// an integer utility weight in huWei.
type Solver struct {
	opts Options

	// Clause database.
	ca         *Arena
	clauses    []ClauseRef
	learnts    []ClauseRef
	claInc     float64
	maxClauses float64

	// Variable state.
	assigns  []LBool
	vardata  []varData
	activity []float64
	polarity []bool
	decision []bool
	varInc   float64

	// Propagation.
	watches  watchLists
	trail    []Literal
	trailLim []int
	qhead    int

	// Decision ordering.
	order *VarOrder

	// Conflict analysis scratch.
	seen         []bool
	analyzeStack []Literal
	analyzeClear []Literal
	tmpLearnt    []Literal

	// Whether the formula reached a top-level contradiction.
	ok bool

	// Mining state.
	nbItems     int
	nbTrans     int
	isTrans     []bool
	huWei       []int
	totalWeight int
	minSupp     int
	ind         int
	threadID    int

	// Encoder scratch (see encode.go).
	localTrans [][]Literal
	occ        []int
	seenScope  *ResetSet
	items      []Literal

	// Recorded itemsets: each model is the sorted list of item variables
	// assigned true.
	Models [][]int

	// Cooperation.
	coop        *Cooperation
	tailUnitLit int
	extraUnits  []Literal

	// Budgets and interruption.
	conflictBudget    int64
	propagationBudget int64
	asynchInterrupt   atomic.Bool

	// Statistics.
	Starts       int64
	Decisions    int64
	RndDecisions int64
	Propagations int64
	Conflicts    int64
	NbModels     int64
	clausesLits  int64
	learntsLits  int64
	maxLits      int64
	totLits      int64
	startTime    time.Time

	randSeed float64
}

// NewSolver returns a solver configured with the given options, attached to
// the cooperation context that carries the database description.
func NewSolver(opts Options, coop *Cooperation, threadID int) *Solver {
	s := &Solver{
		opts:              opts,
		ca:                NewArena(1 << 12),
		claInc:            1,
		varInc:            1,
		ok:                true,
		coop:              coop,
		threadID:          threadID,
		minSupp:           coop.MinSupp,
		conflictBudget:    -1,
		propagationBudget: -1,
		seenScope:         &ResetSet{},
		randSeed:          opts.RandomSeed,
	}
	return s
}

// NumVariables returns the number of variables known to the solver.
func (s *Solver) NumVariables() int {
	return len(s.assigns)
}

// NumAssigns returns the number of assigned literals.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumClauses returns the number of problem clauses.
func (s *Solver) NumClauses() int {
	return len(s.clauses)
}

// NumLearnts returns the number of learnt clauses.
func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// TotalWeight returns the maximum utility still achievable under the current
// partial assignment of the current subtree.
func (s *Solver) TotalWeight() int {
	return s.totalWeight
}

// ValueVar returns the current value of variable x.
func (s *Solver) ValueVar(x int) LBool {
	return s.assigns[x]
}

// ValueLit returns the current value of literal l.
func (s *Solver) ValueLit(l Literal) LBool {
	v := s.assigns[l.VarID()]
	if !l.IsPositive() {
		v = v.Opposite()
	}
	return v
}

func (s *Solver) reason(x int) ClauseRef {
	return s.vardata[x].reason
}

func (s *Solver) level(x int) int {
	return s.vardata[x].level
}

// abstractLevel maps a decision level on one of 32 buckets, used to abort
// redundancy checks early during clause minimization.
func (s *Solver) abstractLevel(x int) uint32 {
	return 1 << (uint32(s.level(x)) & 31)
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// NewVar creates a new variable. Only decision variables can be picked by
// the branching heuristic.
func (s *Solver) NewVar(sign bool, dvar bool) int {
	v := s.NumVariables()
	s.watches.expand()
	s.assigns = append(s.assigns, Unknown)
	s.vardata = append(s.vardata, varData{reason: ClauseRefUndef, level: 0})
	act := 0.0
	if s.opts.RndInitAct {
		act = drand(&s.randSeed) * 0.00001
	}
	s.activity = append(s.activity, act)
	s.seen = append(s.seen, false)
	s.huWei = append(s.huWei, 0)
	s.isTrans = append(s.isTrans, false)
	s.polarity = append(s.polarity, sign)
	s.decision = append(s.decision, dvar)
	s.seenScope.Expand()
	return v
}

// drand implements the portable pseudo-random generator used for the random
// branching surface.
func drand(seed *float64) float64 {
	*seed *= 1389796
	q := int64(*seed / 2147483647)
	*seed -= float64(q) * 2147483647
	return *seed / 2147483647
}

// irand returns a pseudo-random integer in [0, size).
func irand(seed *float64, size int) int {
	return int(drand(seed) * float64(size))
}

// AddClause adds a clause at the root level. False and duplicate literals
// are removed; satisfied clauses are discarded. Returns false if the clause
// makes the formula contradictory.
func (s *Solver) AddClause(lits ...Literal) bool {
	if s.decisionLevel() != 0 {
		panic("clauses can only be added at the root level")
	}
	if !s.ok {
		return false
	}

	ps := append([]Literal(nil), lits...)
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })

	j := 0
	prev := LitUndef
	for _, p := range ps {
		switch {
		case s.ValueLit(p) == True || p == prev.Opposite():
			return true
		case s.ValueLit(p) != False && p != prev:
			ps[j] = p
			prev = p
			j++
		}
	}
	ps = ps[:j]

	switch len(ps) {
	case 0:
		s.ok = false
		return false
	case 1:
		s.uncheckedEnqueue(ps[0], ClauseRefUndef)
		s.ok = s.propagate() == ClauseRefUndef
		return s.ok
	default:
		cr := s.ca.Alloc(ps, false)
		s.clauses = append(s.clauses, cr)
		s.attachClause(cr)
		return true
	}
}

func (s *Solver) attachClause(cr ClauseRef) {
	c := s.ca.Clause(cr)
	if c.Size() < 2 {
		panic("attach of a clause of size < 2")
	}
	s.watches.watch(c.Lit(0).Opposite(), cr, c.Lit(1))
	s.watches.watch(c.Lit(1).Opposite(), cr, c.Lit(0))
	if c.Learnt() {
		s.learntsLits += int64(c.Size())
	} else {
		s.clausesLits += int64(c.Size())
	}
}

func (s *Solver) detachClause(cr ClauseRef, strict bool) {
	c := s.ca.Clause(cr)
	if strict {
		s.watches.unwatch(c.Lit(0).Opposite(), cr)
		s.watches.unwatch(c.Lit(1).Opposite(), cr)
	} else {
		s.watches.smudge(c.Lit(0).Opposite())
		s.watches.smudge(c.Lit(1).Opposite())
	}
	if c.Learnt() {
		s.learntsLits -= int64(c.Size())
	} else {
		s.clausesLits -= int64(c.Size())
	}
}

func (s *Solver) removeClause(cr ClauseRef) {
	s.detachClause(cr, false)
	c := s.ca.Clause(cr)
	if s.locked(cr) {
		s.vardata[c.Lit(0).VarID()].reason = ClauseRefUndef
	}
	s.ca.Free(cr)
}

// locked reports whether the clause is the reason of its first literal's
// assignment.
func (s *Solver) locked(cr ClauseRef) bool {
	c := s.ca.Clause(cr)
	v := c.Lit(0).VarID()
	return s.ValueLit(c.Lit(0)) == True && s.reason(v) == cr
}

func (s *Solver) satisfied(cr ClauseRef) bool {
	c := s.ca.Clause(cr)
	for i := 0; i < c.Size(); i++ {
		if s.ValueLit(c.Lit(i)) == True {
			return true
		}
	}
	return false
}

// isWitness reports whether v is a witness variable.
func (s *Solver) isWitness(v int) bool {
	return v >= s.nbItems+s.nbTrans
}

// uncheckedEnqueue records a new assignment on the trail. All weight
// bookkeeping goes through here and undoOne so that totalWeight cannot
// desynchronize.
func (s *Solver) uncheckedEnqueue(p Literal, from ClauseRef) {
	if s.ValueLit(p) != Unknown {
		panic("enqueue of an assigned literal")
	}
	v := p.VarID()
	s.assigns[v] = Lift(p.IsPositive())
	s.vardata[v] = varData{reason: from, level: s.decisionLevel()}
	s.trail = append(s.trail, p)

	if !p.IsPositive() && s.isWitness(v) {
		s.totalWeight -= s.huWei[v]
	}
}

// enqueue is the checked variant: it returns false if p is already false.
func (s *Solver) enqueue(p Literal, from ClauseRef) bool {
	switch s.ValueLit(p) {
	case True:
		return true
	case False:
		return false
	default:
		s.uncheckedEnqueue(p, from)
		return true
	}
}

// undoOne unassigns the newest literal on the trail.
func (s *Solver) undoOne(phaseLimit int) {
	c := len(s.trail) - 1
	p := s.trail[c]
	v := p.VarID()
	s.assigns[v] = Unknown

	if s.opts.PhaseSaving > 1 || (s.opts.PhaseSaving == 1 && c > phaseLimit) {
		s.polarity[v] = !p.IsPositive()
	}
	if !p.IsPositive() && s.isWitness(v) {
		s.totalWeight += s.huWei[v]
	}
	if v < s.nbItems && s.order != nil {
		s.order.insert(v)
	}
	s.trail = s.trail[:c]
}

// cancelUntil reverts the state to the given decision level, keeping all
// assignments at that level but not beyond.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	phaseLimit := s.trailLim[len(s.trailLim)-1]
	for len(s.trail) > s.trailLim[level] {
		s.undoOne(phaseLimit)
	}
	s.qhead = s.trailLim[level]
	s.trailLim = s.trailLim[:level]
}

// cancelAll reverts every assignment, including the root-level ones fixed by
// the guiding-path encoder.
func (s *Solver) cancelAll() {
	for len(s.trail) > 0 {
		s.undoOne(-1)
	}
	s.qhead = 0
	s.trailLim = s.trailLim[:0]
}

// propagate performs boolean constraint propagation on all enqueued facts.
// If a conflict arises the conflicting clause is returned. A clause that
// becomes unit while the residual achievable utility is below the threshold
// is reported as a conflict even if it is not classically falsified: no
// extension of the current assignment can reach minSupp anymore.
func (s *Solver) propagate() ClauseRef {
	confl := ClauseRefUndef
	numProps := int64(0)
	s.watches.cleanAll(s.ca)

	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++
		ws := s.watches.occs[p]
		numProps++

		i, j := 0, 0
		for i < len(ws) {
			// Try to avoid inspecting the clause.
			blocker := ws[i].blocker
			if s.ValueLit(blocker) == True {
				ws[j] = ws[i]
				i++
				j++
				continue
			}

			// Make sure the false literal is position 1.
			cr := ws[i].ref
			c := s.ca.Clause(cr)
			falseLit := p.Opposite()
			if c.Lit(0) == falseLit {
				c.SetLit(0, c.Lit(1))
				c.SetLit(1, falseLit)
			}
			i++

			// If the 0th watch is true, the clause is already satisfied.
			first := c.Lit(0)
			w := watcher{ref: cr, blocker: first}
			if first != blocker && s.ValueLit(first) == True {
				ws[j] = w
				j++
				continue
			}

			// Look for a new literal to watch.
			foundWatch := false
			for k := 2; k < c.Size(); k++ {
				if s.ValueLit(c.Lit(k)) != False {
					c.SetLit(1, c.Lit(k))
					c.SetLit(k, falseLit)
					s.watches.watch(c.Lit(1).Opposite(), cr, first)
					foundWatch = true
					break
				}
			}
			if foundWatch {
				continue
			}

			// Did not find a watch: the clause is unit under assignment.
			ws[j] = w
			j++
			if s.totalWeight < s.minSupp || s.ValueLit(first) == False {
				confl = cr
				s.qhead = len(s.trail)
				for i < len(ws) {
					ws[j] = ws[i]
					i++
					j++
				}
			} else {
				s.uncheckedEnqueue(first, cr)
			}
		}
		s.watches.occs[p] = ws[:j]
	}

	s.Propagations += numProps
	return confl
}

// pickBranchLit pops the next decision variable from the activity order.
// Branching is positive-first: a satisfying model is an included itemset.
// The random branching path is part of the parameter surface but disabled.
func (s *Solver) pickBranchLit() Literal {
	for {
		v, ok := s.order.popMin()
		if !ok {
			return LitUndef
		}
		if s.assigns[v] == Unknown && s.decision[v] {
			return PositiveLiteral(v)
		}
	}
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.opts.VarDecay
}

func (s *Solver) varBumpActivity(v int) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 {
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.order != nil {
		s.order.update(v)
	}
}

func (s *Solver) claDecayActivity() {
	s.claInc *= 1 / s.opts.ClauseDecay
}

func (s *Solver) claBumpActivity(cr ClauseRef) {
	c := s.ca.Clause(cr)
	act := c.Activity() + float32(s.claInc)
	c.SetActivity(act)
	if act > 1e20 {
		for _, lr := range s.learnts {
			lc := s.ca.Clause(lr)
			lc.SetActivity(lc.Activity() * 1e-20)
		}
		s.claInc *= 1e-20
	}
}

// SetConflictBudget limits the number of conflicts of subsequent searches
// (negative means no limit).
func (s *Solver) SetConflictBudget(x int64) {
	if x < 0 {
		s.conflictBudget = -1
	} else {
		s.conflictBudget = s.Conflicts + x
	}
}

// SetPropagationBudget limits the number of propagations of subsequent
// searches (negative means no limit).
func (s *Solver) SetPropagationBudget(x int64) {
	if x < 0 {
		s.propagationBudget = -1
	} else {
		s.propagationBudget = s.Propagations + x
	}
}

// Interrupt asks the solver to stop at the next safe point. Safe to call
// from another goroutine.
func (s *Solver) Interrupt() {
	s.asynchInterrupt.Store(true)
}

func (s *Solver) withinBudget() bool {
	if s.asynchInterrupt.Load() {
		return false
	}
	if s.conflictBudget >= 0 && s.Conflicts >= s.conflictBudget {
		return false
	}
	if s.propagationBudget >= 0 && s.Propagations >= s.propagationBudget {
		return false
	}
	return true
}

// checkGarbage compacts the clause arena when the wasted fraction exceeds
// the configured threshold.
func (s *Solver) checkGarbage() {
	if float64(s.ca.Wasted()) > float64(s.ca.Size())*s.opts.GarbageFrac {
		s.garbageCollect()
	}
}

func (s *Solver) String() string {
	return fmt.Sprintf("Solver[%d vars, %d clauses, %d learnts]",
		s.NumVariables(), s.NumClauses(), s.NumLearnts())
}
