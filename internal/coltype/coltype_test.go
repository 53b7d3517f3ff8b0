package coltype

import "testing"

func TestJoinNeverDemotes(t *testing.T) {
	cases := []struct {
		a, b, want Type
	}{
		{Int64, Int64, Int64},
		{Int64, Double, Double},
		{Double, Int64, Double},
		{Int64, String, String},
		{Double, String, String},
		{Unknown, Int64, Int64},
		{String, Unknown, String},
	}
	for _, c := range cases {
		if got := Join(c.a, c.b); got != c.want {
			t.Errorf("Join(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
