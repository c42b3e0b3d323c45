package credential

import (
	"sync"
	"testing"
)

func TestNewRotator_NoKeys(t *testing.T) {
	_, err := NewRotator(nil)
	if err == nil {
		t.Fatal("Expected error for empty key set")
	}
}

func TestNext_RoundRobin(t *testing.T) {
	r, err := NewRotator([]string{"key-a", "key-b", "key-c"})
	if err != nil {
		t.Fatalf("NewRotator failed: %v", err)
	}

	want := []string{"key-a", "key-b", "key-c", "key-a", "key-b"}
	for i, w := range want {
		c := r.Next()
		if c.Key != w {
			t.Errorf("call %d: expected %s, got %s", i, w, c.Key)
		}
	}
}

func TestNext_Fairness(t *testing.T) {
	// After K calls with M keys, each key must have been returned
	// floor(K/M) or ceil(K/M) times.
	const k, m = 103, 4
	keys := []string{"k0", "k1", "k2", "k3"}
	r, err := NewRotator(keys)
	if err != nil {
		t.Fatalf("NewRotator failed: %v", err)
	}

	counts := make(map[string]int)
	for i := 0; i < k; i++ {
		counts[r.Next().Key]++
	}

	lo, hi := k/m, (k+m-1)/m
	for _, key := range keys {
		if counts[key] < lo || counts[key] > hi {
			t.Errorf("key %s returned %d times, expected %d or %d", key, counts[key], lo, hi)
		}
	}
}

func TestNext_ConcurrentFairness(t *testing.T) {
	const workers, callsPerWorker = 8, 25
	keys := []string{"k0", "k1", "k2", "k3", "k4"}
	r, err := NewRotator(keys)
	if err != nil {
		t.Fatalf("NewRotator failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerWorker; j++ {
				c := r.Next()
				if c.Key == "" {
					t.Error("Next returned empty credential")
					return
				}
			}
		}()
	}
	wg.Wait()

	st := r.Status()
	total := 0
	k := workers * callsPerWorker
	lo, hi := k/len(keys), (k+len(keys)-1)/len(keys)
	for i, n := range st.Usage {
		total += n
		if n < lo || n > hi {
			t.Errorf("key %d used %d times, expected between %d and %d", i, n, lo, hi)
		}
	}
	if total != k {
		t.Errorf("total usage %d, expected %d", total, k)
	}
}

func TestReportError(t *testing.T) {
	r, err := NewRotator([]string{"key-a", "key-b"})
	if err != nil {
		t.Fatalf("NewRotator failed: %v", err)
	}

	c := r.Next()
	r.ReportError(c)
	r.ReportError(c)

	st := r.Status()
	if st.Errors[c.Index] != 2 {
		t.Errorf("expected 2 errors for key %d, got %d", c.Index, st.Errors[c.Index])
	}
	other := (c.Index + 1) % 2
	if st.Errors[other] != 0 {
		t.Errorf("expected 0 errors for key %d, got %d", other, st.Errors[other])
	}
}

func TestMasked(t *testing.T) {
	c := Credential{Key: "sk-abcdef1234567890wxyz", Index: 0}
	m := c.Masked()
	if m != "sk-abcde...wxyz" {
		t.Errorf("unexpected masked form: %s", m)
	}

	short := Credential{Key: "short", Index: 3}
	if short.Masked() != "key-3" {
		t.Errorf("short keys should mask to an index form, got %s", short.Masked())
	}
}
