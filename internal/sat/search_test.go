package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The mining scenarios below use small hand-checked databases. Expected
// itemsets are written as 0-based item slices.

var twoTransDB = struct {
	transactions [][]int
	utilities    [][]int
}{
	// T1 = {0:5, 1:3}, T2 = {0:4, 2:2}
	transactions: [][]int{{0, 1}, {0, 2}},
	utilities:    [][]int{{5, 3}, {4, 2}},
}

var identicalTransDB = struct {
	transactions [][]int
	utilities    [][]int
}{
	// Three identical transactions {0:2, 1:2}.
	transactions: [][]int{{0, 1}, {0, 1}, {0, 1}},
	utilities:    [][]int{{2, 2}, {2, 2}, {2, 2}},
}

func runMiner(t *testing.T, transactions [][]int, utilities [][]int, minSupp int, closed bool, threads int) ([][]int, *Cooperation) {
	t.Helper()
	coop := newTestCoop(transactions, utilities, minSupp, closed, threads)
	if status := coop.Solve(); status != False {
		t.Fatalf("Solve() = %v, want false (enumeration complete)", status)
	}
	return coop.AllModels(), coop
}

func TestSolve_TwoTransactionsClosed(t *testing.T) {
	models, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 7, true, 1)

	want := toSet([][]int{{0}, {0, 1}})
	if diff := cmp.Diff(want, toSet(models)); diff != "" {
		t.Errorf("Itemset mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_SingleTransaction(t *testing.T) {
	models, _ := runMiner(t, [][]int{{0}}, [][]int{{10}}, 5, true, 1)

	want := toSet([][]int{{0}})
	if diff := cmp.Diff(want, toSet(models)); diff != "" {
		t.Errorf("Itemset mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_IdenticalTransactionsClosed(t *testing.T) {
	// {0} and {1} both have utility 6 but are not closed: every transaction
	// containing one contains the other.
	models, _ := runMiner(t, identicalTransDB.transactions, identicalTransDB.utilities, 5, true, 1)

	want := toSet([][]int{{0, 1}})
	if diff := cmp.Diff(want, toSet(models)); diff != "" {
		t.Errorf("Itemset mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_IdenticalTransactionsNotClosed(t *testing.T) {
	models, _ := runMiner(t, identicalTransDB.transactions, identicalTransDB.utilities, 5, false, 1)

	want := toSet([][]int{{0}, {1}, {0, 1}})
	if diff := cmp.Diff(want, toSet(models)); diff != "" {
		t.Errorf("Itemset mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_ZeroThreshold(t *testing.T) {
	models, _ := runMiner(t, identicalTransDB.transactions, identicalTransDB.utilities, 0, false, 1)

	want := toSet([][]int{{0}, {1}, {0, 1}})
	if diff := cmp.Diff(want, toSet(models)); diff != "" {
		t.Errorf("Itemset mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_ThresholdAboveTotal(t *testing.T) {
	models, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 1000, true, 1)

	if len(models) != 0 {
		t.Errorf("Expected no itemset, got %v", models)
	}
}

func TestSolve_EmptyDatabase(t *testing.T) {
	coop := newTestCoop(nil, nil, 1, true, 1)
	if status := coop.Solve(); status != False {
		t.Fatalf("Solve() = %v, want false", status)
	}
	if len(coop.AllModels()) != 0 {
		t.Errorf("Expected no itemset, got %v", coop.AllModels())
	}
	if !coop.Solvers[0].ok {
		t.Error("Empty database should not make the solver contradictory")
	}
}

// Every reported itemset must reach the utility threshold.
func TestSolve_AllModelsReachThreshold(t *testing.T) {
	for _, minSupp := range []int{0, 3, 6, 7, 9, 12} {
		models, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, minSupp, false, 1)
		for _, m := range models {
			u := utility(m, twoTransDB.transactions, twoTransDB.utilities)
			if u < minSupp {
				t.Errorf("minSupp=%d: itemset %v has utility %d", minSupp, m, u)
			}
		}
	}
}

// No itemset may be reported twice across the guiding-path partition.
func TestSolve_NoDuplicates(t *testing.T) {
	for _, threads := range []int{1, 2, 3} {
		models, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 3, false, threads)
		if len(models) != len(toSet(models)) {
			t.Errorf("threads=%d: duplicate itemsets in %v", threads, models)
		}
	}
}

// In closed mode, no reported itemset may be a proper subset of another one
// covering the same transactions.
func TestSolve_ClosedItemsetsAreClosed(t *testing.T) {
	models, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 3, true, 1)

	covering := func(itemset []int) string {
		cov := ""
		for tid, items := range twoTransDB.transactions {
			all := true
			for _, i := range itemset {
				found := false
				for _, j := range items {
					if i == j {
						found = true
					}
				}
				if !found {
					all = false
				}
			}
			if all {
				cov += string(rune('a' + tid))
			}
		}
		return cov
	}

	for _, a := range models {
		for _, b := range models {
			if len(a) >= len(b) || covering(a) != covering(b) {
				continue
			}
			inB := map[int]struct{}{}
			for _, i := range b {
				inB[i] = struct{}{}
			}
			subset := true
			for _, i := range a {
				if _, ok := inB[i]; !ok {
					subset = false
				}
			}
			if subset {
				t.Errorf("%v is a non-closed subset of %v with the same cover", a, b)
			}
		}
	}
}

// The portfolio must report exactly the same set of itemsets as a
// single-threaded run.
func TestSolve_PortfolioMatchesSingleThread(t *testing.T) {
	single, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 3, true, 1)

	for _, threads := range []int{2, 3, 4} {
		parallel, _ := runMiner(t, twoTransDB.transactions, twoTransDB.utilities, 3, true, threads)
		if diff := cmp.Diff(toSet(single), toSet(parallel)); diff != "" {
			t.Errorf("threads=%d: itemsets differ from single-threaded run (-want +got):\n%s", threads, diff)
		}
	}
}

func TestSolve_InterruptReturnsUnknown(t *testing.T) {
	coop := newTestCoop(twoTransDB.transactions, twoTransDB.utilities, 3, true, 1)
	coop.Solvers[0].Interrupt()
	if status := coop.Solve(); status != Unknown {
		t.Errorf("Solve() after interrupt = %v, want unknown", status)
	}
}

func TestSolve_ConflictBudget(t *testing.T) {
	coop := newTestCoop(twoTransDB.transactions, twoTransDB.utilities, 3, true, 1)
	coop.Solvers[0].SetConflictBudget(0)
	if status := coop.Solve(); status == True {
		t.Errorf("Solve() with zero conflict budget = %v, want false or unknown", status)
	}
}

// Solving twice must yield the same result: Solve fully resets the
// enumeration state.
func TestSolve_Rerun(t *testing.T) {
	coop := newTestCoop(twoTransDB.transactions, twoTransDB.utilities, 7, true, 1)
	coop.Solve()
	first := toSet(coop.AllModels())
	coop.Solve()
	second := toSet(coop.AllModels())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Re-run mismatch (-first +second):\n%s", diff)
	}
}

// totalWeight must always equal the sum of the weights of the witness
// variables not assigned false (checked after a full run through undo paths).
func TestSolve_WeightBookkeeping(t *testing.T) {
	coop := newTestCoop(twoTransDB.transactions, twoTransDB.utilities, 7, true, 1)
	s := coop.Solvers[0]
	coop.Solve()

	// After Solve, cancelAll restored every witness: totalWeight must be
	// back to the full weight of the last encoded subtree.
	sum := 0
	for v := s.nbItems + s.nbTrans; v < s.NumVariables(); v++ {
		if s.assigns[v] != False {
			sum += s.huWei[v]
		}
	}
	if s.totalWeight != sum {
		t.Errorf("totalWeight = %d, want %d", s.totalWeight, sum)
	}
}
