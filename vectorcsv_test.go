package vectorcsv

import (
	"math"
	"testing"
)

func TestScenarioHeaderAndInts(t *testing.T) {
	// header row plus three INT64 columns.
	res, err := ParseBytes([]byte("abc,def,ghi\n123,456,789\n"), Options{Separator: ',', NHeaderRows: 1})
	if err != nil {
		t.Fatal(err)
	}
	wantHeaders := []string{"abc", "def", "ghi"}
	for i, h := range wantHeaders {
		if string(res.Headers[i]) != h {
			t.Fatalf("header %d = %q, want %q", i, res.Headers[i], h)
		}
	}
	if len(res.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(res.Columns))
	}
	for i, want := range [][]int64{{123}, {456}, {789}} {
		c := res.Columns[i]
		if c.Type != Int64 || !int64SliceEqual(c.Ints, want) {
			t.Fatalf("column %d = %+v, want INT64 %v", i, c, want)
		}
	}
}

func TestScenarioMixedTypes(t *testing.T) {
	// mixed-type columns: a non-numeric value anywhere in a column forces STRING.
	input := "123,456.234,blah\nabc,456.0,foo\n456.0,789.0,bar\n"
	res, err := ParseBytes([]byte(input), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != String || res.Columns[1].Type != Double || res.Columns[2].Type != String {
		t.Fatalf("got types %v %v %v, want STRING DOUBLE STRING", res.Columns[0].Type, res.Columns[1].Type, res.Columns[2].Type)
	}
	wantCol0 := []string{"123", "abc", "456.0"}
	for i, s := range wantCol0 {
		if string(res.Columns[0].Strings[i]) != s {
			t.Fatalf("col0[%d] = %q, want %q", i, res.Columns[0].Strings[i], s)
		}
	}
	wantCol1 := []float64{456.234, 456.0, 789.0}
	for i, v := range wantCol1 {
		if res.Columns[1].Floats[i] != v {
			t.Fatalf("col1[%d] = %v, want %v", i, res.Columns[1].Floats[i], v)
		}
	}
	wantCol2 := []string{"blah", "foo", "bar"}
	for i, s := range wantCol2 {
		if string(res.Columns[2].Strings[i]) != s {
			t.Fatalf("col2[%d] = %q, want %q", i, res.Columns[2].Strings[i], s)
		}
	}
}

func TestScenarioBlankLineMidFile(t *testing.T) {
	// a blank line mid-file contributes a zero-value row, not a skipped one.
	res, err := ParseBytes([]byte(",\n\n,1\n"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(res.Columns))
	}
	if res.Columns[0].Type != Int64 || res.Columns[1].Type != Int64 {
		t.Fatalf("got types %v %v, want INT64 INT64", res.Columns[0].Type, res.Columns[1].Type)
	}
	if !int64SliceEqual(res.Columns[0].Ints, []int64{0, 0, 0}) {
		t.Fatalf("col0 = %v, want [0 0 0]", res.Columns[0].Ints)
	}
	if !int64SliceEqual(res.Columns[1].Ints, []int64{0, 0, 1}) {
		t.Fatalf("col1 = %v, want [0 0 1]", res.Columns[1].Ints)
	}
}

func TestScenarioHugeExponent(t *testing.T) {
	// an exponent too large to represent saturates to +/-Inf or 0 rather than erroring.
	res, err := ParseBytes([]byte("1e5999999999999\n"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != Double || !math.IsInf(res.Columns[0].Floats[0], 1) {
		t.Fatalf("got %+v, want DOUBLE [+Inf]", res.Columns[0])
	}

	res, err = ParseBytes([]byte("1e-5999999999999\n"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != Double || res.Columns[0].Floats[0] != 0 {
		t.Fatalf("got %+v, want DOUBLE [0.0]", res.Columns[0])
	}
}

func TestScenarioQuotedBoundaryReconciliation(t *testing.T) {
	// Output must be identical across nthreads, exercising boundary
	// reconciliation over a quoted region containing embedded commas and
	// newlines.
	input := "\"0,0,0,0,0,0,0,0,\n\",\"1,1,1,1,1,1,1\n\"\n\n1\n2\n3\n4\n9,9\n"

	res1, err := ParseBytes([]byte(input), Options{Separator: ',', NThreads: 1})
	if err != nil {
		t.Fatal(err)
	}
	res3, err := ParseBytes([]byte(input), Options{Separator: ',', NThreads: 3})
	if err != nil {
		t.Fatal(err)
	}

	wantCol0 := []string{"0,0,0,0,0,0,0,0,\n", "", "1", "2", "3", "4", "9"}
	wantCol1 := []string{"1,1,1,1,1,1,1\n", "", "", "", "", "", "9"}

	for _, res := range []*Result{res1, res3} {
		if len(res.Columns) != 2 || res.Columns[0].Type != String || res.Columns[1].Type != String {
			t.Fatalf("got %d columns %+v, want 2 STRING columns", len(res.Columns), res.Columns)
		}
		for i, s := range wantCol0 {
			if string(res.Columns[0].Strings[i]) != s {
				t.Fatalf("col0[%d] = %q, want %q", i, res.Columns[0].Strings[i], s)
			}
		}
		for i, s := range wantCol1 {
			if string(res.Columns[1].Strings[i]) != s {
				t.Fatalf("col1[%d] = %q, want %q", i, res.Columns[1].Strings[i], s)
			}
		}
	}
}

func TestScenarioPlusSign(t *testing.T) {
	// a leading '+' is a valid integer sign; a bare '+' followed by non-digits is a string.
	res, err := ParseBytes([]byte("+123"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != Int64 || res.Columns[0].Ints[0] != 123 {
		t.Fatalf("got %+v, want INT64 [123]", res.Columns[0])
	}

	res, err = ParseBytes([]byte("+ "), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != String || string(res.Columns[0].Strings[0]) != "+ " {
		t.Fatalf("got %+v, want STRING [\"+ \"]", res.Columns[0])
	}
}

func TestScenarioNaN(t *testing.T) {
	// a bare "nan" token is DOUBLE NaN, not a STRING.
	res, err := ParseBytes([]byte("nan"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != Double || !math.IsNaN(res.Columns[0].Floats[0]) {
		t.Fatalf("got %+v, want DOUBLE [NaN]", res.Columns[0])
	}
}

func TestWhitespaceOnlyFile(t *testing.T) {
	res, err := ParseBytes([]byte("\n\n\n"), Options{Separator: ','})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Columns) != 1 || res.Rows != 0 {
		t.Fatalf("got %d columns, %d rows, want 1 column 0 rows", len(res.Columns), res.Rows)
	}
}

func TestColumnTypeOverrideByIndex(t *testing.T) {
	res, err := ParseBytes([]byte("1,2\n3,4\n"), Options{
		Separator:          ',',
		ColumnTypeOverride: map[any]ColumnType{1: String},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns[0].Type != Int64 {
		t.Fatalf("col0 type = %v, want INT64", res.Columns[0].Type)
	}
	if res.Columns[1].Type != String {
		t.Fatalf("col1 type = %v, want STRING (forced)", res.Columns[1].Type)
	}
	if string(res.Columns[1].Strings[0]) != "2" || string(res.Columns[1].Strings[1]) != "4" {
		t.Fatalf("col1 = %v, want raw bytes [2 4]", res.Columns[1].Strings)
	}
}

func TestColumnTypeOverrideConflict(t *testing.T) {
	_, err := ParseBytes([]byte("1,2\n3,4.5\n"), Options{
		Separator:          ',',
		ColumnTypeOverride: map[any]ColumnType{1: Int64},
	})
	if err == nil {
		t.Fatal("expected TypeOverrideConflict, got nil")
	}
	var verr *Error
	if !asError(err, &verr) || verr.Kind != TypeOverrideConflict {
		t.Fatalf("got %v, want TypeOverrideConflict", err)
	}
}

func TestInvalidArgument(t *testing.T) {
	_, err := ParseBytes([]byte("1,2\n"), Options{Separator: '"'})
	var verr *Error
	if !asError(err, &verr) || verr.Kind != InvalidArgument {
		t.Fatalf("got %v, want InvalidArgument", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
