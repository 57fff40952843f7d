package sat

// analyze traces the implication graph backwards from the conflicting clause
// and produces a first-UIP learnt clause.
//
// Post-conditions:
//   - learnt[0] is the asserting literal, the only one of the current level.
//   - If len(learnt) > 1, learnt[1] has the greatest decision level of the
//     remaining literals, which is the returned backjump level.
func (s *Solver) analyze(confl ClauseRef) (learnt []Literal, btLevel int) {
	pathC := 0
	p := LitUndef

	s.tmpLearnt = s.tmpLearnt[:0]
	s.tmpLearnt = append(s.tmpLearnt, LitUndef) // room for the asserting literal
	index := len(s.trail) - 1

	for {
		if confl == ClauseRefUndef {
			panic("conflict analysis reached a literal with no reason")
		}
		c := s.ca.Clause(confl)

		if c.Learnt() {
			s.claBumpActivity(confl)
		}

		start := 0
		if p != LitUndef {
			start = 1
		}
		for j := start; j < c.Size(); j++ {
			q := c.Lit(j)
			v := q.VarID()
			if s.seen[v] || s.level(v) == 0 {
				continue
			}
			s.varBumpActivity(v)
			s.seen[v] = true
			if s.level(v) >= s.decisionLevel() {
				pathC++
			} else {
				s.tmpLearnt = append(s.tmpLearnt, q)
			}
		}

		// Select the next implication node to look at.
		for !s.seen[s.trail[index].VarID()] {
			index--
		}
		p = s.trail[index]
		index--
		confl = s.reason(p.VarID())
		s.seen[p.VarID()] = false
		pathC--
		if pathC <= 0 {
			break
		}
	}
	s.tmpLearnt[0] = p.Opposite()

	// Minimize the learnt clause.
	s.analyzeClear = append(s.analyzeClear[:0], s.tmpLearnt...)
	s.maxLits += int64(len(s.tmpLearnt))
	switch s.opts.CcminMode {
	case 2:
		abstractLevels := uint32(0)
		for _, q := range s.tmpLearnt[1:] {
			abstractLevels |= s.abstractLevel(q.VarID())
		}
		j := 1
		for _, q := range s.tmpLearnt[1:] {
			if s.reason(q.VarID()) == ClauseRefUndef || !s.litRedundant(q, abstractLevels) {
				s.tmpLearnt[j] = q
				j++
			}
		}
		s.tmpLearnt = s.tmpLearnt[:j]
	case 1:
		j := 1
		for _, q := range s.tmpLearnt[1:] {
			if s.basicRedundant(q) {
				continue
			}
			s.tmpLearnt[j] = q
			j++
		}
		s.tmpLearnt = s.tmpLearnt[:j]
	}
	s.totLits += int64(len(s.tmpLearnt))

	// Find the correct backtrack level and place one of its literals at
	// index 1.
	btLevel = 0
	if len(s.tmpLearnt) > 1 {
		maxI := 1
		for i := 2; i < len(s.tmpLearnt); i++ {
			if s.level(s.tmpLearnt[i].VarID()) > s.level(s.tmpLearnt[maxI].VarID()) {
				maxI = i
			}
		}
		s.tmpLearnt[maxI], s.tmpLearnt[1] = s.tmpLearnt[1], s.tmpLearnt[maxI]
		btLevel = s.level(s.tmpLearnt[1].VarID())
	}

	for _, q := range s.analyzeClear {
		s.seen[q.VarID()] = false
	}
	return s.tmpLearnt, btLevel
}

// basicRedundant reports whether q's reason is subsumed by the literals
// already collected in the learnt clause (ccmin mode 1).
func (s *Solver) basicRedundant(q Literal) bool {
	cr := s.reason(q.VarID())
	if cr == ClauseRefUndef {
		return false
	}
	c := s.ca.Clause(cr)
	for k := 1; k < c.Size(); k++ {
		v := c.Lit(k).VarID()
		if !s.seen[v] && s.level(v) > 0 {
			return false
		}
	}
	return true
}

// litRedundant checks whether p can be removed from the learnt clause by
// recursively resolving it against reason clauses (ccmin mode 2).
// abstractLevels is used to abort early when the resolution reaches a level
// that cannot appear in the learnt clause.
func (s *Solver) litRedundant(p Literal, abstractLevels uint32) bool {
	s.analyzeStack = append(s.analyzeStack[:0], p)
	top := len(s.analyzeClear)

	for len(s.analyzeStack) > 0 {
		q := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]
		cr := s.reason(q.VarID())
		if cr == ClauseRefUndef {
			panic("redundancy check on a literal with no reason")
		}
		c := s.ca.Clause(cr)

		for i := 1; i < c.Size(); i++ {
			l := c.Lit(i)
			v := l.VarID()
			if s.seen[v] || s.level(v) == 0 {
				continue
			}
			if s.reason(v) != ClauseRefUndef && s.abstractLevel(v)&abstractLevels != 0 {
				s.seen[v] = true
				s.analyzeStack = append(s.analyzeStack, l)
				s.analyzeClear = append(s.analyzeClear, l)
			} else {
				for _, cl := range s.analyzeClear[top:] {
					s.seen[cl.VarID()] = false
				}
				s.analyzeClear = s.analyzeClear[:top]
				return false
			}
		}
	}

	return true
}

// analyzeFinal expresses the final conflict on literal p in terms of the
// root-distance decisions that entail it. The mining search does not call it.
func (s *Solver) analyzeFinal(p Literal) []Literal {
	out := []Literal{p}
	if s.decisionLevel() == 0 {
		return out
	}

	s.seen[p.VarID()] = true
	for i := len(s.trail) - 1; i >= s.trailLim[0]; i-- {
		v := s.trail[i].VarID()
		if !s.seen[v] {
			continue
		}
		if s.reason(v) == ClauseRefUndef {
			out = append(out, s.trail[i].Opposite())
		} else {
			c := s.ca.Clause(s.reason(v))
			for j := 1; j < c.Size(); j++ {
				if s.level(c.Lit(j).VarID()) > 0 {
					s.seen[c.Lit(j).VarID()] = true
				}
			}
		}
		s.seen[v] = false
	}
	s.seen[p.VarID()] = false

	return out
}

// recordLearnt attaches the learnt clause produced by analyze and enqueues
// its asserting literal. Unit learnt clauses are enqueued at the root.
func (s *Solver) recordLearnt(learnt []Literal) {
	if len(learnt) == 1 {
		s.uncheckedEnqueue(learnt[0], ClauseRefUndef)
		return
	}
	cr := s.ca.Alloc(learnt, true)
	s.learnts = append(s.learnts, cr)
	s.attachClause(cr)
	s.claBumpActivity(cr)
	s.uncheckedEnqueue(learnt[0], cr)
}
