package sat

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	// The clause to inspect when the watched literal becomes false.
	ref ClauseRef

	// Blocker is one of the clause's literals, different from the watched
	// one. If it is already true the clause cannot be unit or conflicting
	// and does not need to be loaded at all.
	blocker Literal
}

// watchLists is an inverted index from literals to the clauses watching them.
// Deleted clauses are removed lazily: freeing a clause only smudges the two
// lists that reference it, and the stale entries are dropped by cleanAll at
// the start of the next propagation.
type watchLists struct {
	occs    [][]watcher
	dirty   []bool
	dirties []Literal
}

func (w *watchLists) expand() {
	w.occs = append(w.occs, nil, nil)
	w.dirty = append(w.dirty, false, false)
}

func (w *watchLists) watch(lit Literal, ref ClauseRef, blocker Literal) {
	w.occs[lit] = append(w.occs[lit], watcher{ref: ref, blocker: blocker})
}

// unwatch removes the watcher on ref from lit's list immediately.
func (w *watchLists) unwatch(lit Literal, ref ClauseRef) {
	ws := w.occs[lit]
	j := 0
	for i := 0; i < len(ws); i++ {
		if ws[i].ref != ref {
			ws[j] = ws[i]
			j++
		}
	}
	w.occs[lit] = ws[:j]
}

// smudge marks lit's list as containing entries for deleted clauses.
func (w *watchLists) smudge(lit Literal) {
	if !w.dirty[lit] {
		w.dirty[lit] = true
		w.dirties = append(w.dirties, lit)
	}
}

// cleanAll drops the watchers of deleted clauses from every smudged list.
func (w *watchLists) cleanAll(ca *Arena) {
	for _, lit := range w.dirties {
		if !w.dirty[lit] {
			continue
		}
		ws := w.occs[lit]
		j := 0
		for i := 0; i < len(ws); i++ {
			if !ca.Clause(ws[i].ref).Deleted() {
				ws[j] = ws[i]
				j++
			}
		}
		w.occs[lit] = ws[:j]
		w.dirty[lit] = false
	}
	w.dirties = w.dirties[:0]
}
