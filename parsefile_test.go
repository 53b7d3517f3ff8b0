package vectorcsv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n3,4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := ParseFile(path, Options{Separator: ',', NHeaderRows: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if string(res.Headers[0]) != "a" || string(res.Headers[1]) != "b" {
		t.Fatalf("headers = %v", res.Headers)
	}
	if !int64SliceEqual(res.Columns[0].Ints, []int64{1, 3}) {
		t.Fatalf("col0 = %v", res.Columns[0].Ints)
	}
	if !int64SliceEqual(res.Columns[1].Ints, []int64{2, 4}) {
		t.Fatalf("col1 = %v", res.Columns[1].Ints)
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.csv"), Options{Separator: ','})
	var verr *Error
	if !asError(err, &verr) || verr.Kind != IoError {
		t.Fatalf("got %v, want IoError", err)
	}
}

func TestExcelModeQuotedCR(t *testing.T) {
	// Excel mode drops a bare '\r' inside a quoted field.
	res, err := ParseBytes([]byte("\"a\rb\",1\n"), Options{Separator: ',', Flags: ExcelQuotes})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Columns[0].Strings[0]) != "ab" {
		t.Fatalf("col0[0] = %q, want %q", res.Columns[0].Strings[0], "ab")
	}
}
