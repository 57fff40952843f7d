// Package tdb loads weighted transaction databases and builds the inverted
// index used by the guiding-path encoder.
//
// A database file contains one transaction per line, terminated by 0. Each
// line holds three fields separated by -1 tokens: the 1-based items of the
// transaction, its transaction-weighted utility, and the per-item utilities
// (the i-th utility belongs to the i-th item):
//
//	<items...> -1 <TWU> -1 <utilities...> 0
package tdb

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rhartert/dimacs"
)

// Database is the parsed transaction database together with the indexes
// required by the miner.
type Database struct {
	NbItems int
	NbTrans int

	// Transactions[t] lists the 0-based items of transaction t, and
	// Utilities[t][j] is the utility of Transactions[t][j] in t.
	Transactions [][]int
	Utilities    [][]int

	// TWU[t] is the transaction-weighted utility of transaction t.
	TWU []int

	// AppearTrans[i] lists the transactions containing item i.
	AppearTrans [][]int

	// Wocc[i] is the sum of the TWUs of the transactions containing item i:
	// an upper bound on the utility of any itemset containing i.
	Wocc []int
}

// Load reads the database stored in the given file. Files ending in ".gz"
// are transparently decompressed.
func Load(filename string) (*Database, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %w", filename, err)
	}
	defer file.Close()

	r := io.Reader(file)
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("error reading file %q: %w", filename, err)
		}
		defer gz.Close()
		r = gz
	}

	return Read(r)
}

// Read parses a database from r.
func Read(r io.Reader) (*Database, error) {
	b := &builder{db: &Database{}}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	b.db.buildIndex()
	return b.db, nil
}

// builder implements dimacs.Builder: every 0-terminated record of the input
// is one transaction.
type builder struct {
	db *Database
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("transaction databases should not have problem lines")
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *builder) Clause(record []int) error {
	sep1, sep2 := -1, -1
	for i, tok := range record {
		if tok == -1 {
			if sep1 < 0 {
				sep1 = i
			} else {
				sep2 = i
				break
			}
		}
	}
	if sep1 < 0 || sep2 < 0 {
		return fmt.Errorf("malformed transaction %v: missing -1 separators", record)
	}

	items := record[:sep1]
	twuField := record[sep1+1 : sep2]
	utilities := record[sep2+1:]

	if len(twuField) != 1 {
		return fmt.Errorf("malformed transaction %v: expected a single TWU", record)
	}
	if len(utilities) != len(items) {
		return fmt.Errorf("malformed transaction %v: %d items but %d utilities", record, len(items), len(utilities))
	}

	t := make([]int, len(items))
	for i, item := range items {
		if item < 1 {
			return fmt.Errorf("malformed transaction %v: item %d is not positive", record, item)
		}
		t[i] = item - 1
		if item > b.db.NbItems {
			b.db.NbItems = item
		}
	}

	b.db.Transactions = append(b.db.Transactions, t)
	b.db.Utilities = append(b.db.Utilities, append([]int(nil), utilities...))
	b.db.TWU = append(b.db.TWU, twuField[0])
	b.db.NbTrans++
	return nil
}

// buildIndex computes the inverted index and the per-item TWU bounds.
func (db *Database) buildIndex() {
	db.AppearTrans = make([][]int, db.NbItems)
	db.Wocc = make([]int, db.NbItems)
	for t, items := range db.Transactions {
		for _, i := range items {
			db.AppearTrans[i] = append(db.AppearTrans[i], t)
			db.Wocc[i] += db.TWU[t]
		}
	}
}
