package dispatch

import (
	"reflect"
	"testing"
	"time"
)

func TestKeyPoolListEligibleExcludesCoolingKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewKeyPool([]string{"a", "b", "c"})
	pool.MarkFailed("b", time.Minute, now)

	eligible := pool.ListEligible(now)
	for _, key := range eligible {
		if key == "b" {
			t.Fatalf("ListEligible returned cooling key %q", key)
		}
	}
	if len(eligible) != 2 {
		t.Fatalf("eligible = %v, want 2 keys", eligible)
	}
}

func TestKeyPoolCooldownExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewKeyPool([]string{"a", "b"})
	pool.MarkFailed("a", time.Minute, now)

	if got := pool.ListEligible(now.Add(59 * time.Second)); len(got) != 1 || got[0] != "b" {
		t.Fatalf("before expiry = %v, want [b]", got)
	}
	if got := pool.ListEligible(now.Add(time.Minute)); len(got) != 2 {
		t.Fatalf("at expiry = %v, want both keys", got)
	}
}

func TestKeyPoolMarkFailedOverwritesExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewKeyPool([]string{"a"})
	pool.MarkFailed("a", time.Minute, now)
	pool.MarkFailed("a", time.Minute, now.Add(30*time.Second))

	if got := pool.ListEligible(now.Add(time.Minute)); len(got) != 0 {
		t.Fatalf("expected key still cooling after second failure, got %v", got)
	}
	if got := pool.ListEligible(now.Add(90 * time.Second)); len(got) != 1 {
		t.Fatalf("expected key eligible after reset expiry, got %v", got)
	}
}

func TestKeyPoolNextRotates(t *testing.T) {
	now := time.Now()
	pool := NewKeyPool([]string{"a", "b", "c"})

	var got []string
	for i := 0; i < 4; i++ {
		key, ok := pool.Next(now)
		if !ok {
			t.Fatalf("Next returned no key on iteration %d", i)
		}
		got = append(got, key)
	}
	want := []string{"a", "b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rotation = %v, want %v", got, want)
	}
}

func TestKeyPoolNextSkipsCoolingKeys(t *testing.T) {
	now := time.Now()
	pool := NewKeyPool([]string{"a", "b"})
	pool.MarkFailed("a", time.Minute, now)

	key, ok := pool.Next(now)
	if !ok || key != "b" {
		t.Fatalf("Next = %q, %v, want b", key, ok)
	}
	pool.MarkFailed("b", time.Minute, now)
	if _, ok := pool.Next(now); ok {
		t.Fatal("Next returned a key with the whole pool cooling down")
	}
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool(nil)
	if got := pool.ListEligible(time.Now()); len(got) != 0 {
		t.Fatalf("ListEligible on empty pool = %v", got)
	}
	if _, ok := pool.Next(time.Now()); ok {
		t.Fatal("Next on empty pool reported a key")
	}
}

func TestKeyPoolRemoveDropsCooldownAndClampsCursor(t *testing.T) {
	now := time.Now()
	pool := NewKeyPool([]string{"a", "b", "c"})
	// Advance cursor to b.
	if _, ok := pool.Next(now); !ok {
		t.Fatal("Next failed")
	}
	pool.MarkFailed("c", time.Minute, now)
	pool.Remove("c")
	pool.Add("c")

	if got := pool.ListEligible(now); len(got) != 3 {
		t.Fatalf("cooldown survived remove/add: %v", got)
	}

	pool.Remove("a")
	pool.Remove("b")
	pool.Remove("c")
	if pool.Len() != 0 {
		t.Fatalf("Len = %d after removing everything", pool.Len())
	}
	if _, ok := pool.Next(now); ok {
		t.Fatal("Next succeeded on emptied pool")
	}
}

func TestKeyPoolRoundTrip(t *testing.T) {
	keys := []string{"k1", "k2", "k3"}
	pool := NewKeyPool(keys)
	pool.MarkFailed("k2", time.Minute, time.Now())

	// Cooldown state is transient: rebuilding from the visible list yields
	// the same ordered values.
	rebuilt := NewKeyPool(pool.Keys())
	if !reflect.DeepEqual(rebuilt.Keys(), keys) {
		t.Fatalf("round trip = %v, want %v", rebuilt.Keys(), keys)
	}
}
