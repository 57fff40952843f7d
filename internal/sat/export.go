package sat

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ToDimacsFile writes the current clause database to path in DIMACS CNF
// format, with variables remapped to a contiguous range.
func (s *Solver) ToDimacsFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := s.ToDimacs(w); err != nil {
		return err
	}
	return w.Flush()
}

// ToDimacs writes the clause database to w. Satisfied clauses are skipped
// and false literals are dropped, so the output reflects the formula under
// the current root-level assignment.
func (s *Solver) ToDimacs(w io.Writer) error {
	if !s.ok {
		_, err := fmt.Fprint(w, "p cnf 1 2\n1 0\n-1 0\n")
		return err
	}

	varMap := map[int]int{}
	mapVar := func(v int) int {
		if m, ok := varMap[v]; ok {
			return m
		}
		m := len(varMap)
		varMap[v] = m
		return m
	}

	cnt := 0
	for _, cr := range s.clauses {
		if !s.satisfied(cr) {
			cnt++
			c := s.ca.Clause(cr)
			for i := 0; i < c.Size(); i++ {
				if s.ValueLit(c.Lit(i)) != False {
					mapVar(c.Lit(i).VarID())
				}
			}
		}
	}

	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", len(varMap), cnt); err != nil {
		return err
	}
	for _, cr := range s.clauses {
		if s.satisfied(cr) {
			continue
		}
		c := s.ca.Clause(cr)
		for i := 0; i < c.Size(); i++ {
			l := c.Lit(i)
			if s.ValueLit(l) == False {
				continue
			}
			neg := ""
			if !l.IsPositive() {
				neg = "-"
			}
			if _, err := fmt.Fprintf(w, "%s%d ", neg, mapVar(l.VarID())+1); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "0"); err != nil {
			return err
		}
	}
	return nil
}
