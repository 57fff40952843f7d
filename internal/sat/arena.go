package sat

import (
	"fmt"
	"math"
)

// ClauseRef is a handle to a clause stored in an Arena. References are stable
// across all operations except garbage collection, which remaps them through
// Arena.Reloc.
type ClauseRef uint32

// ClauseRefUndef is a placeholder for "no clause".
const ClauseRefUndef ClauseRef = math.MaxUint32

// Header word layout (least significant bits first):
//
//	[0:2]  mark (0 = live, 1 = deleted)
//	[2]    learnt
//	[3]    relocated
//	[4:32] number of literals
const (
	hdrMarkMask  = 0x3
	hdrLearntBit = 1 << 2
	hdrRelocBit  = 1 << 3
	hdrSizeShift = 4
)

// Arena is an append-only region allocator for clauses. A clause occupies one
// header word, one word per literal and, for learnt clauses, one trailing
// activity word. Freeing only marks the region as wasted; the space is
// reclaimed by copying the live clauses into a fresh arena (see
// Solver.garbageCollect).
type Arena struct {
	data   []uint32
	wasted int
}

// NewArena returns an arena with the given initial capacity in words.
func NewArena(capa int) *Arena {
	if capa < 1024 {
		capa = 1024
	}
	return &Arena{data: make([]uint32, 0, capa)}
}

// Size returns the number of words allocated so far.
func (ca *Arena) Size() int {
	return len(ca.data)
}

// Wasted returns the number of words occupied by freed clauses.
func (ca *Arena) Wasted() int {
	return ca.wasted
}

func clauseWords(size int, learnt bool) int {
	n := 1 + size
	if learnt {
		n++
	}
	return n
}

// Alloc stores a new clause and returns its reference.
func (ca *Arena) Alloc(literals []Literal, learnt bool) ClauseRef {
	if len(literals) < 2 {
		panic(fmt.Sprintf("alloc of clause of size %d", len(literals)))
	}

	ref := ClauseRef(len(ca.data))
	hdr := uint32(len(literals)) << hdrSizeShift
	if learnt {
		hdr |= hdrLearntBit
	}
	ca.data = append(ca.data, hdr)
	for _, l := range literals {
		ca.data = append(ca.data, uint32(l))
	}
	if learnt {
		ca.data = append(ca.data, math.Float32bits(0))
	}
	return ref
}

// Free marks the clause as deleted and accounts its region as wasted. The
// reference must not be used afterwards, except to observe the deleted mark
// from lazily cleaned watch lists.
func (ca *Arena) Free(ref ClauseRef) {
	c := ca.Clause(ref)
	ca.wasted += clauseWords(c.Size(), c.Learnt())
	c.setMark(1)
}

// Clause returns a view on the clause stored at ref. The view is invalidated
// by any subsequent Alloc.
func (ca *Arena) Clause(ref ClauseRef) Clause {
	hdr := ca.data[ref]
	size := int(hdr >> hdrSizeShift)
	return Clause{d: ca.data[ref : int(ref)+clauseWords(size, hdr&hdrLearntBit != 0)]}
}

// Reloc copies the clause into the target arena, leaves a forwarding
// reference in the old header, and returns the new reference. Relocating a
// clause twice returns the same forward.
func (ca *Arena) Reloc(ref ClauseRef, to *Arena) ClauseRef {
	c := ca.Clause(ref)
	if c.reloced() {
		return c.relocation()
	}

	newRef := to.Alloc(c.Literals(), c.Learnt())
	if c.Learnt() {
		to.Clause(newRef).SetActivity(c.Activity())
	}
	c.setRelocation(newRef)
	return newRef
}

// MoveTo transfers the arena's content to other, replacing whatever other
// held before. The receiver is left empty.
func (ca *Arena) MoveTo(other *Arena) {
	other.data = ca.data
	other.wasted = ca.wasted
	ca.data = nil
	ca.wasted = 0
}

// Clause is a view on a clause stored in an arena: the header word followed
// by the literals and, for learnt clauses, the activity word.
type Clause struct {
	d []uint32
}

// Size returns the number of literals in the clause.
func (c Clause) Size() int {
	return int(c.d[0] >> hdrSizeShift)
}

// Learnt reports whether the clause was learnt.
func (c Clause) Learnt() bool {
	return c.d[0]&hdrLearntBit != 0
}

// Deleted reports whether the clause has been freed.
func (c Clause) Deleted() bool {
	return c.d[0]&hdrMarkMask != 0
}

func (c Clause) setMark(m uint32) {
	c.d[0] = c.d[0]&^uint32(hdrMarkMask) | m
}

// Lit returns the i-th literal.
func (c Clause) Lit(i int) Literal {
	return Literal(c.d[1+i])
}

// SetLit overwrites the i-th literal.
func (c Clause) SetLit(i int, l Literal) {
	c.d[1+i] = uint32(l)
}

// Literals returns a copy of the clause's literals.
func (c Clause) Literals() []Literal {
	lits := make([]Literal, c.Size())
	for i := range lits {
		lits[i] = c.Lit(i)
	}
	return lits
}

// Activity returns the learnt clause's activity.
func (c Clause) Activity() float32 {
	return math.Float32frombits(c.d[len(c.d)-1])
}

// SetActivity sets the learnt clause's activity.
func (c Clause) SetActivity(act float32) {
	c.d[len(c.d)-1] = math.Float32bits(act)
}

func (c Clause) reloced() bool {
	return c.d[0]&hdrRelocBit != 0
}

func (c Clause) relocation() ClauseRef {
	return ClauseRef(c.d[1])
}

func (c Clause) setRelocation(ref ClauseRef) {
	c.d[0] |= hdrRelocBit
	c.d[1] = uint32(ref)
}
