// Package mine exposes the high-utility itemset miner: it turns a parsed
// transaction database into a solver portfolio and collects the enumerated
// itemsets.
package mine

import (
	"fmt"
	"sort"

	"github.com/amel-hidouri/satchuim/internal/sat"
	"github.com/amel-hidouri/satchuim/internal/tdb"
)

// Options configures a mining run.
type Options struct {
	// MinUtil is the minimum utility an itemset must reach to be reported.
	MinUtil int

	// Closed restricts the output to closed itemsets: itemsets that cannot
	// be extended without losing a covering transaction.
	Closed bool

	// Threads is the number of solver instances run in parallel. Each
	// thread claims a disjoint part of the guiding path, so the reported
	// set of itemsets does not depend on the thread count.
	Threads int

	// Solver carries the CDCL engine parameters.
	Solver sat.Options
}

// DefaultOptions mines closed itemsets single-threaded.
var DefaultOptions = Options{
	MinUtil: 1,
	Closed:  true,
	Threads: 1,
	Solver:  sat.DefaultOptions,
}

// Result is the outcome of a mining run.
type Result struct {
	// Itemsets holds one sorted slice of 1-based item identifiers per
	// reported itemset.
	Itemsets [][]int

	// Interrupted is true if the enumeration was stopped by a budget or an
	// interrupt before completing.
	Interrupted bool

	Conflicts int64
}

// Run enumerates the high-utility itemsets of db.
func Run(db *tdb.Database, opts Options) (*Result, error) {
	coop, err := NewCooperation(db, opts)
	if err != nil {
		return nil, err
	}
	coop.StartSolvers(opts.Solver)

	status := coop.Solve()

	result := &Result{
		Itemsets:    [][]int{},
		Interrupted: status == sat.Unknown,
		Conflicts:   coop.TotalConflicts(),
	}
	for _, model := range coop.AllModels() {
		itemset := make([]int, len(model))
		for i, v := range model {
			itemset[i] = v + 1
		}
		result.Itemsets = append(result.Itemsets, itemset)
	}
	return result, nil
}

// NewCooperation builds the solver-facing description of the database: item
// literals per transaction, the inverted index, and the guiding path ordered
// by decreasing per-item TWU bound.
func NewCooperation(db *tdb.Database, opts Options) (*sat.Cooperation, error) {
	if opts.MinUtil < 0 {
		return nil, fmt.Errorf("minutil must be non-negative, got %d", opts.MinUtil)
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}

	coop := sat.NewCooperation(opts.Threads, opts.MinUtil, opts.Closed)
	coop.Wocc = db.Wocc
	coop.AppearTrans = db.AppearTrans

	coop.ListTransactions = make([][]sat.Literal, db.NbTrans)
	for t, items := range db.Transactions {
		lits := make([]sat.Literal, len(items))
		for j, i := range items {
			lits[j] = sat.PositiveLiteral(i)
		}
		coop.ListTransactions[t] = lits
	}
	coop.WItemTrans = db.Utilities

	order := make([]int, db.NbItems)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return db.Wocc[order[a]] > db.Wocc[order[b]]
	})
	coop.AllItems = make([]sat.Literal, db.NbItems)
	for k, i := range order {
		coop.AllItems[k] = sat.PositiveLiteral(i)
	}

	return coop, nil
}
