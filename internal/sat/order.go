package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder is the activity-ordered pool of candidate decision variables. Only
// item variables are ever inserted: transaction and witness variables are
// assigned by propagation alone.
type VarOrder struct {
	solver *Solver
	capa   int
	heap   *yagh.IntMap[float64]
}

func newVarOrder(s *Solver, capa int) *VarOrder {
	return &VarOrder{
		solver: s,
		capa:   capa,
		heap:   yagh.New[float64](capa),
	}
}

// insert puts variable v back in the pool if it is eligible for branching.
func (vo *VarOrder) insert(v int) {
	if !vo.solver.decision[v] || vo.heap.Contains(v) {
		return
	}
	vo.heap.Put(v, -vo.solver.activity[v])
}

// update refreshes v's position after an activity bump.
func (vo *VarOrder) update(v int) {
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.solver.activity[v])
	}
}

// rebuild resets the pool to exactly the given variables.
func (vo *VarOrder) rebuild(vars []int) {
	vo.heap = yagh.New[float64](vo.capa)
	for _, v := range vars {
		vo.heap.Put(v, -vo.solver.activity[v])
	}
}

// popMin removes and returns the variable with the highest activity.
func (vo *VarOrder) popMin() (int, bool) {
	entry, ok := vo.heap.Pop()
	if !ok {
		return -1, false
	}
	return entry.Elem, true
}
