package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	interval := 20 * time.Millisecond
	r := NewLimiter(1, time.Hour, Every(interval))
	defer r.Close()

	client := "test@test.com"
	expected := []bool{true, false, true}
	waits := []time.Duration{time.Millisecond, 2 * interval, 0}
	for i, exp := range expected {
		if got := r.Check(client); got != exp {
			t.Fatalf("iteration %d: expected %v, but got %v", i, exp, got)
		}
		time.Sleep(waits[i])
	}
}

func TestLimiterWithBurst(t *testing.T) {
	burst := 5
	r := NewLimiter(burst, time.Hour, Every(time.Hour))
	defer r.Close()

	for i := 0; i < burst; i++ {
		if !r.Check("a@test.com") {
			t.Fatalf("attempt %d within burst was refused", i)
		}
	}
	if r.Check("a@test.com") {
		t.Fatal("attempt beyond burst was allowed")
	}
	if !r.Check("b@test.com") {
		t.Fatal("a different key must have its own bucket")
	}
}

func TestLimiterEvict(t *testing.T) {
	r := NewLimiter(1, time.Minute, Every(time.Hour))
	defer r.Close()

	r.Check("a@test.com")
	r.Check("b@test.com")

	r.evict(time.Now())
	if got := r.size(); got != 2 {
		t.Fatalf("expected 2 fresh clients, got %d", got)
	}

	r.evict(time.Now().Add(2 * time.Minute))
	if got := r.size(); got != 0 {
		t.Fatalf("expected idle clients to be evicted, got %d", got)
	}

	if !r.Check("a@test.com") {
		t.Fatal("an evicted key must start with a full bucket")
	}
}
