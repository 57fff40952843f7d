package sat

// EncodeDB prepares the solver for the database described by the cooperation
// context: one decision variable per item followed by one non-decision
// variable per transaction. Witness variables are created on demand by the
// guiding-path encoder.
func (s *Solver) EncodeDB() {
	s.nbItems = len(s.coop.Wocc)
	s.nbTrans = len(s.coop.ListTransactions)
	s.minSupp = s.coop.MinSupp

	for i := 0; i < s.nbItems; i++ {
		s.NewVar(false, true)
		s.localTrans = append(s.localTrans, nil)
		s.occ = append(s.occ, 0)
	}
	for t := 0; t < s.nbTrans; t++ {
		v := s.NewVar(false, false)
		s.isTrans[v] = true
	}
	s.order = newVarOrder(s, s.nbItems)
}

// transLiteral returns the positive literal of transaction t's variable. It
// is true in a model when the transaction covers the selected itemset.
func (s *Solver) transLiteral(t int) Literal {
	return PositiveLiteral(t + s.nbItems)
}

// encodeGuidingPath extends the clause database for subtree index: models of
// the resulting CNF are itemsets that contain allItems[index-1], exclude
// allItems[0..index-2], and satisfy the support and closure constraints over
// the transactions of the subtree. Returns false when the subtree cannot
// reach the utility threshold at all, in which case nothing was encoded.
//
// Must be called at the root level after cancelAll; the trail may then hold
// only units imported from other threads.
func (s *Solver) encodeGuidingPath(index int) bool {
	coop := s.coop
	p := coop.AllItems[index-1]
	if coop.Wocc[p.VarID()] < s.minSupp {
		return false
	}

	// Fix the guiding-path literals at the root: the subtree contains p and
	// none of the items preceding it in the global order. A unit imported
	// from another thread may already have fixed one of them; a conflicting
	// import makes the subtree trivially contradictory.
	s.seenScope.Clear()
	for i := 0; i < index-1; i++ {
		if !s.enqueue(coop.AllItems[i].Opposite(), ClauseRefUndef) {
			s.ok = false
		}
		s.seenScope.Add(coop.AllItems[i].VarID())
	}
	if !s.enqueue(p, ClauseRefUndef) {
		s.ok = false
	}

	currentDB := coop.AppearTrans[p.VarID()]
	initVars := s.nbItems + s.nbTrans
	s.totalWeight = 0
	s.items = s.items[:0]

	// One witness per (item, transaction) pair still selectable in the
	// subtree. A witness a with weight w stands for "the item is selected
	// and the transaction covers the itemset": a -> (q_t and r).
	for _, num := range currentDB {
		qt := s.transLiteral(num)
		wcurTrans := 0
		for j, r := range coop.ListTransactions[num] {
			v := r.VarID()
			if s.ValueLit(r) != False {
				var a Literal
				if initVars < s.NumVariables() {
					a = PositiveLiteral(initVars)
				} else {
					a = PositiveLiteral(s.NewVar(false, false))
				}
				initVars++
				w := coop.WItemTrans[num][j]
				s.huWei[a.VarID()] = w
				s.AddClause(a.Opposite(), qt)
				s.AddClause(a.Opposite(), r)
				s.totalWeight += w
				wcurTrans += w
			}
			s.localTrans[v] = append(s.localTrans[v], qt)
			if !s.seenScope.Contains(v) {
				s.seenScope.Add(v)
				s.items = append(s.items, r)
			}
		}
		// The transaction's weight bounds the residual utility of each of
		// its items.
		for _, r := range coop.ListTransactions[num] {
			s.occ[r.VarID()] += wcurTrans
		}
	}

	// Stale weights of witness variables recycled from a larger subtree.
	for v := initVars; v < s.NumVariables(); v++ {
		s.huWei[v] = 0
	}

	s.seenScope.Clear()

	// Item-level pruning: an item whose residual achievable utility is
	// below the threshold cannot be part of any reported itemset.
	for _, r := range s.items {
		if s.ValueLit(r) == Unknown && s.occ[r.VarID()] < s.minSupp {
			s.uncheckedEnqueue(r.Opposite(), ClauseRefUndef)
			s.propagate()
		}
	}

	if s.totalWeight >= s.minSupp {
		for _, num := range currentDB {
			s.addSupportConstraints(num, coop.ListTransactions[num])
		}
		if coop.EnumClosed {
			for _, q := range s.items {
				if s.ValueLit(q) != True {
					s.addClosureConstraints(q, currentDB, s.localTrans[q.VarID()])
				}
			}
			for i := coop.DivBegin; i < index-1; i++ {
				q := coop.AllItems[i]
				if s.occ[q.VarID()] >= s.minSupp {
					s.addExclusionClosure(currentDB, s.localTrans[q.VarID()])
				}
			}
		}
	}

	// Reorder the heap with the unassigned items of the subtree, preferring
	// items that appear in more of its transactions.
	vs := make([]int, 0, len(s.items))
	for _, q := range s.items {
		if s.ValueLit(q) == Unknown {
			s.activity[q.VarID()] = float64(len(currentDB) - len(s.localTrans[q.VarID()]))
			vs = append(vs, q.VarID())
		}
	}
	s.order.rebuild(vs)

	for _, q := range coop.AllItems {
		v := q.VarID()
		s.localTrans[v] = s.localTrans[v][:0]
		s.occ[v] = 0
	}

	if float64(len(s.clauses)) > s.maxClauses {
		s.checkGarbage()
		s.maxClauses *= 1.1
	} else {
		s.maxClauses *= 0.9
	}

	return true
}

// addSupportConstraints ties transaction num's covering variable to the item
// selection: q_t implies that no scope item outside the transaction is
// selected, and conversely q_t holds when none is.
func (s *Solver) addSupportConstraints(num int, lastTrans []Literal) {
	qt := s.transLiteral(num)

	for _, l := range lastTrans {
		s.seenScope.Add(l.VarID())
	}

	cover := make([]Literal, 0, len(s.items)+1)
	for _, it := range s.items {
		if !s.seenScope.Contains(it.VarID()) && s.ValueLit(it) != False {
			cover = append(cover, it)
			s.AddClause(qt.Opposite(), it.Opposite())
		}
	}
	cover = append(cover, qt)
	s.AddClause(cover...)

	for _, l := range lastTrans {
		s.seenScope.Remove(l.VarID())
	}
}

// addClosureConstraints forces item to be selected whenever every covering
// transaction contains it: either some transaction without the item covers
// the itemset, or the item is in.
func (s *Solver) addClosureConstraints(item Literal, currentDB []int, app []Literal) {
	for _, qt := range app {
		s.seenScope.Add(qt.VarID())
	}

	clause := make([]Literal, 0, len(currentDB)+1)
	for _, num := range currentDB {
		qt := s.transLiteral(num)
		if !s.seenScope.Contains(qt.VarID()) {
			clause = append(clause, qt)
		}
	}
	clause = append(clause, item)
	s.AddClause(clause...)

	for _, qt := range app {
		s.seenScope.Remove(qt.VarID())
	}
}

// addExclusionClosure handles an item excluded by the guiding path: some
// covering transaction must not contain it, otherwise the itemset would not
// be closed.
func (s *Solver) addExclusionClosure(currentDB []int, app []Literal) {
	for _, qt := range app {
		s.seenScope.Add(qt.VarID())
	}

	clause := make([]Literal, 0, len(currentDB))
	for _, num := range currentDB {
		qt := s.transLiteral(num)
		if !s.seenScope.Contains(qt.VarID()) {
			clause = append(clause, qt)
		}
	}
	s.AddClause(clause...)

	for _, qt := range app {
		s.seenScope.Remove(qt.VarID())
	}
}

// Simplify probes each scope item at a fresh decision level and fixes its
// negation when including it leads to a conflict or drops the achievable
// utility below the threshold.
func (s *Solver) Simplify() {
	for _, p := range s.items {
		if s.ValueLit(p) != Unknown {
			continue
		}
		s.newDecisionLevel()
		s.uncheckedEnqueue(p, ClauseRefUndef)
		cr := s.propagate()
		hopeless := cr != ClauseRefUndef || s.totalWeight < s.minSupp
		s.cancelUntil(0)
		if hopeless {
			s.uncheckedEnqueue(p.Opposite(), ClauseRefUndef)
			s.propagate()
		}
	}
}
