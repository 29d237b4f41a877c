package loadbalance

import (
	"fmt"
	"mini-feign/registry"
	"testing"
)

var testInstances = []registry.ServiceInstance{
	{Addr: ":8001", Weight: 10, Version: "1.0"},
	{Addr: ":8002", Weight: 5, Version: "1.0"},
	{Addr: ":8003", Weight: 10, Version: "1.0"},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	// Pick 3 times, should cycle through all instances in order
	for i := 0; i < 3; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		if inst.Addr != testInstances[i].Addr {
			t.Fatalf("pick %d: expect %s, got %s", i, testInstances[i].Addr, inst.Addr)
		}
	}

	// Pick again, should wrap around to first
	inst, _ := b.Pick(testInstances)
	if inst.Addr != testInstances[0].Addr {
		t.Fatalf("expect wrap around to %s, got %s", testInstances[0].Addr, inst.Addr)
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	b := &RoundRobinBalancer{}
	_, err := b.Pick([]registry.ServiceInstance{})
	if err == nil {
		t.Fatal("expect error for empty instances")
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		counts[inst.Addr]++
	}

	// Weight ratio is 10:5:10, so :8001 and :8003 should be ~2x of :8002
	ratio := float64(counts[":8001"]) / float64(counts[":8002"])
	if ratio < 1.5 || ratio > 2.5 {
		t.Fatalf("weight ratio :8001/:8002 = %.2f, expect ~2.0", ratio)
	}
}

func TestWeightedRandomZeroWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	instances := []registry.ServiceInstance{{Addr: ":1"}, {Addr: ":2"}}

	for i := 0; i < 100; i++ {
		if _, err := b.Pick(instances); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConsistentHash(t *testing.T) {
	b := NewConsistentHashBalancer()
	for i := range testInstances {
		b.Add(testInstances[i])
	}

	// Same key should always map to the same instance
	inst1, _ := b.Get("user-123")
	inst2, _ := b.Get("user-123")
	if inst1.Addr != inst2.Addr {
		t.Fatalf("same key mapped to different instances: %s vs %s", inst1.Addr, inst2.Addr)
	}

	// Different keys should (likely) map to different instances
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		inst, _ := b.Get(fmt.Sprintf("key-%d", i))
		seen[inst.Addr] = true
	}

	// With 100 different keys and 3 nodes, we should hit at least 2
	if len(seen) < 2 {
		t.Fatalf("expect at least 2 different instances, got %d", len(seen))
	}
}

func TestConsistentHashPickKeyRebuildsRing(t *testing.T) {
	b := NewConsistentHashBalancer()

	first, err := b.PickKey("user-42", testInstances)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := b.PickKey("user-42", testInstances)
	if first.Addr != again.Addr {
		t.Fatalf("unstable routing: %s vs %s", first.Addr, again.Addr)
	}

	// Remove the chosen instance: the key must move to a surviving one.
	var remaining []registry.ServiceInstance
	for _, inst := range testInstances {
		if inst.Addr != first.Addr {
			remaining = append(remaining, inst)
		}
	}
	moved, err := b.PickKey("user-42", remaining)
	if err != nil {
		t.Fatal(err)
	}
	if moved.Addr == first.Addr {
		t.Fatalf("key still routed to removed instance %s", first.Addr)
	}

	if _, err := b.PickKey("user-42", nil); err == nil {
		t.Fatal("expect error for empty instances")
	}
}

func TestNew(t *testing.T) {
	cases := map[string]string{
		"":               "RoundRobin",
		"weighted":       "WeightedRandom",
		"ConsistentHash": "ConsistentHash",
	}
	for name, want := range cases {
		if got := New(name).Name(); got != want {
			t.Errorf("New(%q) = %s, want %s", name, got, want)
		}
	}
}
