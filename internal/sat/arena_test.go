package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArena_AllocAndAccess(t *testing.T) {
	ca := NewArena(0)
	lits := []Literal{0, 3, 4}
	ref := ca.Alloc(lits, false)

	c := ca.Clause(ref)
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
	if c.Learnt() {
		t.Error("clause should not be learnt")
	}
	if diff := cmp.Diff(lits, c.Literals()); diff != "" {
		t.Errorf("literal mismatch (-want +got):\n%s", diff)
	}

	c.SetLit(1, 5)
	if c.Lit(1) != 5 {
		t.Errorf("Lit(1) = %v, want 5", c.Lit(1))
	}
}

func TestArena_LearntActivity(t *testing.T) {
	ca := NewArena(0)
	ref := ca.Alloc([]Literal{0, 2}, true)

	c := ca.Clause(ref)
	if !c.Learnt() {
		t.Error("clause should be learnt")
	}
	if c.Activity() != 0 {
		t.Errorf("initial activity = %f, want 0", c.Activity())
	}
	c.SetActivity(1.5)
	if c.Activity() != 1.5 {
		t.Errorf("Activity() = %f, want 1.5", c.Activity())
	}
}

func TestArena_WastedAccounting(t *testing.T) {
	ca := NewArena(0)
	r1 := ca.Alloc([]Literal{0, 2, 4}, false) // 4 words
	ca.Alloc([]Literal{1, 3}, true)           // 4 words (activity)

	if ca.Size() != 8 {
		t.Errorf("Size() = %d, want 8", ca.Size())
	}
	if ca.Wasted() != 0 {
		t.Errorf("Wasted() = %d, want 0", ca.Wasted())
	}

	ca.Free(r1)
	if ca.Wasted() != 4 {
		t.Errorf("Wasted() = %d, want 4", ca.Wasted())
	}
	if !ca.Clause(r1).Deleted() {
		t.Error("freed clause should be marked deleted")
	}
}

func TestArena_RelocForwards(t *testing.T) {
	ca := NewArena(0)
	lits := []Literal{1, 3, 5}
	ref := ca.Alloc([]Literal{0, 2}, false)
	ref2 := ca.Alloc(lits, true)
	ca.Clause(ref2).SetActivity(2.5)

	to := NewArena(0)
	newRef := ca.Reloc(ref2, to)

	c := to.Clause(newRef)
	if diff := cmp.Diff(lits, c.Literals()); diff != "" {
		t.Errorf("literal mismatch after reloc (-want +got):\n%s", diff)
	}
	if c.Activity() != 2.5 {
		t.Errorf("activity after reloc = %f, want 2.5", c.Activity())
	}

	// Relocating again must return the same forward.
	if again := ca.Reloc(ref2, to); again != newRef {
		t.Errorf("second reloc = %d, want %d", again, newRef)
	}

	// The untouched clause is unaffected.
	if diff := cmp.Diff([]Literal{0, 2}, ca.Clause(ref).Literals()); diff != "" {
		t.Errorf("untouched clause changed (-want +got):\n%s", diff)
	}
}

// Garbage collection must be observationally a no-op: every surviving
// reference resolves to the same literal sequence, and the wasted space
// drops to zero.
func TestGarbageCollect_PreservesClauses(t *testing.T) {
	s := newTestSolver()
	x := make([]Literal, 6)
	for i := range x {
		x[i] = PositiveLiteral(s.NewVar(false, true))
	}
	s.AddClause(x[0], x[1], x[2])
	s.AddClause(x[1].Opposite(), x[3])
	s.AddClause(x[2], x[4], x[5])
	s.AddClause(x[0].Opposite(), x[4].Opposite())

	before := make(map[int][]Literal)
	for i, cr := range s.clauses {
		before[i] = s.ca.Clause(cr).Literals()
	}

	// Free one clause to create waste, then collect.
	s.removeClause(s.clauses[1])
	s.clauses = append(s.clauses[:1], s.clauses[2:]...)
	delete(before, 1)
	wastedBefore := s.ca.Wasted()
	if wastedBefore == 0 {
		t.Fatal("expected wasted space before collection")
	}

	s.garbageCollect()

	if s.ca.Wasted() != 0 {
		t.Errorf("Wasted() = %d after GC, want 0", s.ca.Wasted())
	}
	got := []([]Literal){
		s.ca.Clause(s.clauses[0]).Literals(),
		s.ca.Clause(s.clauses[1]).Literals(),
		s.ca.Clause(s.clauses[2]).Literals(),
	}
	want := []([]Literal){before[0], before[2], before[3]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clauses changed across GC (-want +got):\n%s", diff)
	}

	checkWatchInvariant(t, s)

	// The solver must still propagate correctly after collection.
	s.newDecisionLevel()
	s.uncheckedEnqueue(x[1], ClauseRefUndef)
	if confl := s.propagate(); confl != ClauseRefUndef {
		t.Errorf("unexpected conflict after GC: %d", confl)
	}
}
