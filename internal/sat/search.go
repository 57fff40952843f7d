package sat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// searchState enumerates the explicit states of the search loop.
type searchState int

const (
	statePropagating searchState = iota
	stateConflict
	stateDecide
	stateRecord
	stateAdvanceSubtree
	stateDone
)

// Solve enumerates all itemsets of the solver's guiding-path partition whose
// utility reaches the threshold. It returns False when the enumeration is
// complete and Unknown when a budget expired or the solver was interrupted.
func (s *Solver) Solve() LBool {
	s.Models = nil
	s.NbModels = 0
	s.maxClauses = 100
	s.ind = s.threadID
	s.tailUnitLit = 0
	s.startTime = time.Now()

	if !s.ok {
		return False
	}

	status := Unknown
	for currRestarts := 0; status == Unknown; currRestarts++ {
		status = s.search(restartLimit(&s.opts, currRestarts))
		if !s.withinBudget() {
			break
		}
	}

	s.cancelAll()
	return status
}

// search runs the enumeration state machine. Conflicts are resolved by
// chronological backtracking: the deepest decision is flipped, which both
// blocks the witnessed model after a recording and exhausts the subtree in
// bounded time. nofConflicts bounds the conflicts of this run; the budget is
// only checked between subtrees so that no enumeration position is lost.
func (s *Solver) search(nofConflicts int) LBool {
	s.Starts++
	conflictC := 0
	state := stateAdvanceSubtree
	var confl ClauseRef

	for {
		switch state {
		case statePropagating:
			confl = s.propagate()
			if !s.ok || confl != ClauseRefUndef {
				state = stateConflict
			} else if s.totalWeight < s.minSupp {
				// Not a falsified clause, but no extension of the current
				// assignment can reach the threshold anymore.
				state = stateConflict
			} else {
				state = stateDecide
			}

		case stateConflict:
			s.Conflicts++
			conflictC++
			if !s.ok || s.decisionLevel() == 0 {
				state = stateAdvanceSubtree
			} else {
				s.flipLastDecision()
				state = statePropagating
			}

		case stateDecide:
			next := s.pickBranchLit()
			if next == LitUndef {
				state = stateRecord
				continue
			}
			s.Decisions++
			s.newDecisionLevel()
			s.uncheckedEnqueue(next, ClauseRefUndef)
			state = statePropagating

		case stateRecord:
			s.recordModel()
			if s.decisionLevel() == 0 {
				state = stateAdvanceSubtree
			} else {
				s.flipLastDecision()
				state = statePropagating
			}

		case stateAdvanceSubtree:
			if !s.withinBudget() || conflictC > nofConflicts {
				s.cancelAll()
				return Unknown
			}
			if s.ind >= len(s.coop.AllItems) {
				state = stateDone
				continue
			}
			s.ok = true
			s.cancelAll()
			s.wipeSubtreeClauses()
			s.importShared()
			for s.ind < len(s.coop.AllItems) && !s.encodeGuidingPath(s.ind+1) {
				s.ind += s.coop.NbThreads
			}
			if s.ind >= len(s.coop.AllItems) {
				state = stateDone
				continue
			}
			s.ind += s.coop.NbThreads
			state = statePropagating

		case stateDone:
			return False
		}
	}
}

// flipLastDecision cancels the deepest decision level and asserts the
// negation of the literal that opened it, blocking the model or conflict
// just witnessed.
func (s *Solver) flipLastDecision() {
	q := s.trail[s.trailLim[len(s.trailLim)-1]]
	s.cancelUntil(s.decisionLevel() - 1)
	s.uncheckedEnqueue(q.Opposite(), ClauseRefUndef)
}

// recordModel stores the set of selected items as a new model.
func (s *Solver) recordModel() {
	s.NbModels++
	model := make([]int, 0, 8)
	for v := 0; v < s.nbItems; v++ {
		if s.assigns[v] == True {
			model = append(model, v)
		}
	}
	s.Models = append(s.Models, model)

	if s.opts.Verbosity >= 3 {
		var sb strings.Builder
		for _, v := range model {
			fmt.Fprintf(&sb, "%d ", v+1)
		}
		fmt.Println(strings.TrimSpace(sb.String()))
	}
}

// wipeSubtreeClauses removes every problem clause: the guiding-path encoder
// regenerates the database of the next subtree from scratch. Learnt clauses
// are kept and only pruned by reduceLearnts.
func (s *Solver) wipeSubtreeClauses() {
	for _, cr := range s.clauses {
		s.removeClause(cr)
	}
	s.clauses = s.clauses[:0]
}

// reduceLearnts halves the learnt clause database, keeping the most active
// and the locked clauses.
func (s *Solver) reduceLearnts() {
	if len(s.learnts) == 0 {
		return
	}
	extraLim := float32(s.claInc / float64(len(s.learnts)))

	sort.Slice(s.learnts, func(i, j int) bool {
		ci, cj := s.ca.Clause(s.learnts[i]), s.ca.Clause(s.learnts[j])
		return ci.Size() > 2 && (cj.Size() == 2 || ci.Activity() < cj.Activity())
	})

	j := 0
	for i, cr := range s.learnts {
		c := s.ca.Clause(cr)
		if c.Size() > 2 && !s.locked(cr) && (i < len(s.learnts)/2 || c.Activity() < extraLim) {
			s.removeClause(cr)
		} else {
			s.learnts[j] = cr
			j++
		}
	}
	s.learnts = s.learnts[:j]
	s.checkGarbage()
}
