package sat

import (
	"fmt"
	"sort"
)

// newTestCoop builds a cooperation context directly from a list of
// transactions. Items are 0-based; utilities[t][j] is the utility of
// transactions[t][j]. The guiding path is ordered by decreasing per-item TWU
// bound, ties broken by item index.
func newTestCoop(transactions [][]int, utilities [][]int, minSupp int, closed bool, threads int) *Cooperation {
	nbItems := 0
	for _, t := range transactions {
		for _, i := range t {
			if i+1 > nbItems {
				nbItems = i + 1
			}
		}
	}

	coop := NewCooperation(threads, minSupp, closed)
	coop.Wocc = make([]int, nbItems)
	coop.AppearTrans = make([][]int, nbItems)
	coop.WItemTrans = utilities

	for tid, items := range transactions {
		lits := make([]Literal, len(items))
		twu := 0
		for j, i := range items {
			lits[j] = PositiveLiteral(i)
			twu += utilities[tid][j]
		}
		coop.ListTransactions = append(coop.ListTransactions, lits)
		for _, i := range items {
			coop.AppearTrans[i] = append(coop.AppearTrans[i], tid)
			coop.Wocc[i] += twu
		}
	}

	order := make([]int, nbItems)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return coop.Wocc[order[a]] > coop.Wocc[order[b]]
	})
	coop.AllItems = make([]Literal, nbItems)
	for k, i := range order {
		coop.AllItems[k] = PositiveLiteral(i)
	}

	coop.StartSolvers(DefaultOptions)
	return coop
}

// newTestSolver returns a bare solver with no item or transaction variables,
// suitable for exercising the CDCL core on plain CNF formulas.
func newTestSolver() *Solver {
	return NewSolver(DefaultOptions, NewCooperation(1, 0, false), 0)
}

// toSet converts a list of itemsets into a set of canonical strings.
func toSet(models [][]int) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		sorted := append([]int(nil), m...)
		sort.Ints(sorted)
		set[fmt.Sprint(sorted)] = struct{}{}
	}
	return set
}

// utility returns the total utility of the given itemset over the database.
func utility(itemset []int, transactions [][]int, utilities [][]int) int {
	inSet := map[int]struct{}{}
	for _, i := range itemset {
		inSet[i] = struct{}{}
	}
	total := 0
	for t, items := range transactions {
		covers := true
		for i := range inSet {
			found := false
			for _, j := range items {
				if j == i {
					found = true
					break
				}
			}
			if !found {
				covers = false
				break
			}
		}
		if !covers {
			continue
		}
		for j, i := range items {
			if _, ok := inSet[i]; ok {
				total += utilities[t][j]
			}
		}
	}
	return total
}
