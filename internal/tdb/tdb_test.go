package tdb

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The database used throughout: T1 = {1:5, 2:3}, T2 = {1:4, 3:2}.
const testInput = `1 2 -1 8 -1 5 3 0
1 3 -1 6 -1 4 2 0
`

var testDatabase = &Database{
	NbItems:      3,
	NbTrans:      2,
	Transactions: [][]int{{0, 1}, {0, 2}},
	Utilities:    [][]int{{5, 3}, {4, 2}},
	TWU:          []int{8, 6},
	AppearTrans:  [][]int{{0, 1}, {0}, {1}},
	Wocc:         []int{14, 8, 6},
}

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(testInput))
	if err != nil {
		t.Fatalf("Read() error: %s", err)
	}
	if diff := cmp.Diff(testDatabase, got); diff != "" {
		t.Errorf("Database mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_IgnoresComments(t *testing.T) {
	in := "c utility database\n" + testInput
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() error: %s", err)
	}
	if got.NbTrans != 2 {
		t.Errorf("NbTrans = %d, want 2", got.NbTrans)
	}
}

func TestRead_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing separators", "1 2 3 0\n"},
		{"missing utilities", "1 2 -1 8 -1 5 0\n"},
		{"multiple TWUs", "1 2 -1 8 9 -1 5 3 0\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tc.input)); err == nil {
				t.Errorf("Read(%q) should have failed", tc.input)
			}
		})
	}
}

func TestLoad_PlainAndGzipped(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "db.txt")
	if err := os.WriteFile(plain, []byte(testInput), 0o644); err != nil {
		t.Fatal(err)
	}

	gzipped := filepath.Join(dir, "db.txt.gz")
	f, err := os.Create(gzipped)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(testInput)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	for _, path := range []string{plain, gzipped} {
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) error: %s", path, err)
		}
		if diff := cmp.Diff(testDatabase, got); diff != "" {
			t.Errorf("Load(%q) mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.txt"); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
