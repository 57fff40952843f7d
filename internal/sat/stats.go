package sat

import (
	"fmt"
	"time"
)

// progressEstimate gives a rough measure of how much of the current subtree
// has been covered, based on the trail density per level.
func (s *Solver) progressEstimate() float64 {
	progress := 0.0
	f := 1.0 / float64(s.NumVariables())

	for i := 0; i <= s.decisionLevel(); i++ {
		beg := 0
		if i > 0 {
			beg = s.trailLim[i-1]
		}
		end := len(s.trail)
		if i < s.decisionLevel() {
			end = s.trailLim[i]
		}
		progress += pow(f, i) * float64(end-beg)
	}

	return progress / float64(s.NumVariables())
}

func pow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}

// PrintStats prints the mining statistics block in the usual "c "-prefixed
// format.
func (c *Cooperation) PrintStats(elapsed time.Duration) {
	nbClauses := int64(0)
	decisions := int64(0)
	propagations := int64(0)
	for _, s := range c.Solvers {
		nbClauses += int64(s.NumClauses()) + int64(s.NumLearnts())
		decisions += s.Decisions
		propagations += s.Propagations
	}

	fmt.Println("c ---------------------------------------------------------------------------")
	fmt.Printf("c items:        %d\n", len(c.Wocc))
	fmt.Printf("c transactions: %d\n", len(c.ListTransactions))
	fmt.Printf("c patterns:     %d\n", len(c.AllModels()))
	fmt.Printf("c conflicts:    %d\n", c.TotalConflicts())
	fmt.Printf("c decisions:    %d\n", decisions)
	fmt.Printf("c propagations: %d\n", propagations)
	fmt.Printf("c clauses:      %d\n", nbClauses)
	fmt.Printf("c time (sec):   %f\n", elapsed.Seconds())
	fmt.Println("c ---------------------------------------------------------------------------")
}
