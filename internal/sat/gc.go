package sat

import "fmt"

// relocAll moves every reachable clause into the target arena and rewrites
// the references held by watch lists, reasons, and the clause databases.
func (s *Solver) relocAll(to *Arena) {
	// Watch lists must be cleaned first: stale watchers of deleted clauses
	// must not resurrect their regions.
	s.watches.cleanAll(s.ca)
	for v := 0; v < s.NumVariables(); v++ {
		for sign := 0; sign < 2; sign++ {
			p := Literal(2*v + sign)
			ws := s.watches.occs[p]
			for i := range ws {
				ws[i].ref = s.ca.Reloc(ws[i].ref, to)
			}
		}
	}

	// Reasons of trail literals. A reason that is neither relocated through
	// a watch list nor locked is dangling and is dropped instead.
	for _, p := range s.trail {
		v := p.VarID()
		if r := s.reason(v); r != ClauseRefUndef {
			if s.ca.Clause(r).reloced() || s.locked(r) {
				s.vardata[v].reason = s.ca.Reloc(r, to)
			} else {
				s.vardata[v].reason = ClauseRefUndef
			}
		}
	}

	for i := range s.learnts {
		s.learnts[i] = s.ca.Reloc(s.learnts[i], to)
	}
	for i := range s.clauses {
		s.clauses[i] = s.ca.Reloc(s.clauses[i], to)
	}
}

// garbageCollect compacts the clause arena by copying all live clauses into
// a fresh region sized to the live content.
func (s *Solver) garbageCollect() {
	to := NewArena(s.ca.Size() - s.ca.Wasted())
	s.relocAll(to)
	if s.opts.Verbosity >= 2 {
		fmt.Printf("c garbage collection: %d words => %d words\n", s.ca.Size(), to.Size())
	}
	to.MoveTo(s.ca)
}
