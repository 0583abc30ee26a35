package token

import (
	"reflect"
	"testing"
)

func TestRangesSeedScenario(t *testing.T) {
	var r Ranges
	inserts := [][2]int{
		{5, 10}, {15, 20}, {21, 22}, {4, 5}, {9, 11}, {10, 20}, {4, 22}, {30, 30},
	}
	for _, iv := range inserts {
		r.Add(iv[0], iv[1])
	}
	want := []int{4, 23, 30, 31}
	if got := r.Bounds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
}

func TestRangesHas(t *testing.T) {
	var r Ranges
	r.Add(5, 10)
	r.Add(15, 20)
	for _, p := range []int{5, 7, 10} {
		if !r.Has(p) {
			t.Errorf("Has(%d) = false, want true", p)
		}
	}
	for _, p := range []int{4, 11, 14, 21} {
		if r.Has(p) {
			t.Errorf("Has(%d) = true, want false", p)
		}
	}
}

func TestRangesEmptyPoint(t *testing.T) {
	var r Ranges
	r.Add(30, 30)
	if !r.Has(30) {
		t.Error("Has(30) = false after inserting the single-point interval (30,30)")
	}
	if r.Has(29) || r.Has(31) {
		t.Error("single-point interval (30,30) leaked into a neighboring offset")
	}
}
