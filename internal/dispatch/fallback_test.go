package dispatch

import (
	"reflect"
	"testing"
	"time"
)

func TestFallbackPriorityOrder(t *testing.T) {
	f := NewFallback("imagen-4", []string{"gemini-2.5-flash-image", "imagen-4", "imagen-3"})
	want := []string{"imagen-4", "gemini-2.5-flash-image", "imagen-3"}
	if got := f.Models(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Models = %v, want %v", got, want)
	}
}

func TestFallbackListEligiblePreservesOrder(t *testing.T) {
	now := time.Now()
	f := NewFallback("", []string{"a", "b", "c"})
	f.MarkFailed("b", time.Minute, now)

	if got := f.ListEligible(now); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("ListEligible = %v, want [a c]", got)
	}
	if got := f.ListEligible(now.Add(time.Minute)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("ListEligible after expiry = %v, want all", got)
	}
}

func TestFallbackNoPreferred(t *testing.T) {
	f := NewFallback("", []string{"x", "y"})
	if got := f.Models(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("Models = %v, want declaration order", got)
	}
}
